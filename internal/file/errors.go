package file

import "errors"

var (
	// ErrInvalidRequest indicates a missing or malformed required field.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrFileNotFound signals that the file could not be located for the caller.
	ErrFileNotFound = errors.New("file not found")
	// ErrForbidden is returned when the caller does not own the record.
	ErrForbidden = errors.New("forbidden")
	// ErrInconsistentRecord marks a stored record missing a field it must carry.
	ErrInconsistentRecord = errors.New("inconsistent file record")
	// ErrObjectKeyExists is returned when metadata for the object key was already registered.
	ErrObjectKeyExists = errors.New("object key already registered")
	// ErrStoreUnavailable wraps any metadata store I/O failure.
	ErrStoreUnavailable = errors.New("metadata store unavailable")
)
