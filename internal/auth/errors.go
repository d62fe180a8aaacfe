package auth

import "errors"

var (
	// ErrMissingToken indicates the request carried no usable bearer credential.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrUnauthorized represents a credential the identity provider does not accept.
	ErrUnauthorized = errors.New("unauthorized")
)
