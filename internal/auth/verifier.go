// Package auth verifies Supabase access tokens for the admin surface.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"library/internal/domain"
)

// Verifier validates bearer tokens
type Verifier interface {
	// VerifyToken returns the claims of a valid token, domain.ErrUnauthorized otherwise
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases resources held by the verifier
	Close() error
}

// SupabaseVerifier checks tokens against keys published on a JWKS endpoint
type SupabaseVerifier struct {
	keyfunc jwt.Keyfunc
	logger  *slog.Logger
}

// NewJWKSVerifier fetches public keys from jwksURL. keyfunc refreshes them in the
// background according to the endpoint's cache headers.
func NewJWKSVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*SupabaseVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)
	return NewVerifier(jwks.Keyfunc, logger), nil
}

// NewVerifier creates a verifier over an arbitrary key lookup
func NewVerifier(kf jwt.Keyfunc, logger *slog.Logger) *SupabaseVerifier {
	return &SupabaseVerifier{keyfunc: kf, logger: logger}
}

// VerifyToken parses and validates tokenString. Only RS256 and ES256 signatures from
// non-anonymous, authenticated users are accepted.
func (v *SupabaseVerifier) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Reject anonymous sessions
	if claims.Role != "authenticated" || claims.IsAnonymous {
		v.logger.Warn("token has invalid role",
			"role", claims.Role,
			"anonymous", claims.IsAnonymous,
			"user_id", claims.Subject,
		)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op; keyfunc's refresh goroutine ends with the context it was given
func (v *SupabaseVerifier) Close() error {
	return nil
}
