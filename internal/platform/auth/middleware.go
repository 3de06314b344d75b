package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthreach/healthreach/internal/platform/apperrors"
)

type contextKey string

const (
	identityContextKey contextKey = "auth_identity"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	AccountID      uuid.UUID
	Email          string
	IsStaff        bool
	HealthCenterID *uuid.UUID
}

// IdentityResolver loads the caller's current account state. The token only
// authenticates the account id; role and center link come from the store on
// every request, so a delinked or deactivated account loses access
// immediately rather than at token expiry.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accountID uuid.UUID) (*Identity, error)
}

// Middleware validates the Authorization bearer token, re-resolves the
// account through the resolver and attaches the resulting identity to the
// request context. Requests without a valid token are rejected.
func Middleware(issuer *TokenIssuer, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return apperrors.Unauthenticated("missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return apperrors.Unauthenticated("invalid authorization header")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return apperrors.Unauthenticated("invalid or expired token")
			}

			accountID, err := uuid.Parse(claims.AccountID)
			if err != nil {
				return apperrors.Unauthenticated("invalid token subject")
			}

			identity, err := resolver.ResolveIdentity(c.Request().Context(), accountID)
			if err != nil {
				return err
			}

			ctx := context.WithValue(c.Request().Context(), identityContextKey, identity)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}

// MustIdentity extracts the authenticated identity or returns an
// Unauthenticated error. Handlers behind the auth middleware use this.
func MustIdentity(ctx context.Context) (*Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, apperrors.Unauthenticated("not authenticated")
	}
	return identity, nil
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and internal callers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
