package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const credentialContextKey contextKey = "credential"

// Claims is the subset of the API's token claims the console looks at.
// The console never verifies signatures; the API remains the authority.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// WithCredential stores the admin's bearer credential in ctx
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialContextKey, token)
}

// CredentialFromContext returns the bearer credential or "" if none is set
func CredentialFromContext(ctx context.Context) string {
	token, _ := ctx.Value(credentialContextKey).(string)
	return token
}

// InspectToken decodes the claims of a JWT credential without verifying it.
// ok is false for opaque (non-JWT) credentials.
func InspectToken(token string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Expired reports whether token is a JWT whose exp claim is not after now.
// Opaque credentials and tokens without exp never count as expired here;
// the API answers 401 for those when they are no longer valid.
func Expired(token string, now time.Time) bool {
	claims, ok := InspectToken(token)
	if !ok || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}

// Fingerprint returns a short stable digest of token, safe for logs and keys
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
