package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abduss/filegate/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const clockSkew = 30 * time.Second

// Identity is the verified principal behind a bearer token.
type Identity struct {
	UID       string
	Email     string
	ExpiresAt time.Time
}

// Verifier checks a bearer credential with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type providerClaims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates JWTs signed by the identity provider, either with a
// shared HMAC secret (HS256) or an RSA key pair (RS256).
type TokenVerifier struct {
	hmacSecret []byte
	publicKey  *rsa.PublicKey
	parser     *jwt.Parser
}

// NewTokenVerifier builds a verifier from configuration, loading the RSA public key when configured.
func NewTokenVerifier(cfg config.IdentityConfig) (*TokenVerifier, error) {
	var publicKey *rsa.PublicKey
	if cfg.PublicKeyFile != "" {
		raw, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read identity public key: %w", err)
		}
		publicKey, err = jwt.ParseRSAPublicKeyFromPEM(raw)
		if err != nil {
			return nil, fmt.Errorf("parse identity public key: %w", err)
		}
	}
	return newTokenVerifier([]byte(cfg.HMACSecret), publicKey, cfg.Issuer, cfg.Audience)
}

func newTokenVerifier(secret []byte, publicKey *rsa.PublicKey, issuer, audience string) (*TokenVerifier, error) {
	var methods []string
	if len(secret) > 0 {
		methods = append(methods, jwt.SigningMethodHS256.Name)
	}
	if publicKey != nil {
		methods = append(methods, jwt.SigningMethodRS256.Name)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("identity verifier needs an HMAC secret or an RSA public key")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &TokenVerifier{
		hmacSecret: secret,
		publicKey:  publicKey,
		parser:     jwt.NewParser(opts...),
	}, nil
}

// Verify validates the token signature and registered claims and extracts the stable user id.
func (v *TokenVerifier) Verify(_ context.Context, tokenString string) (Identity, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Identity{}, ErrMissingToken
	}

	var claims providerClaims
	parsed, err := v.parser.ParseWithClaims(tokenString, &claims, v.keyFunc)
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	uid := claims.Subject
	if uid == "" {
		uid = claims.UserID
	}
	if strings.TrimSpace(uid) == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}

	identity := Identity{UID: uid, Email: claims.Email}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func (v *TokenVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.hmacSecret) == 0 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.hmacSecret, nil
	case *jwt.SigningMethodRSA:
		if v.publicKey == nil {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}
