package accounts

import (
	"strings"

	"github.com/goliatone/go-router"
)

// DefaultAuthScheme is the bearer scheme expected on protected routes.
const DefaultAuthScheme = "Bearer"

// SessionFromBearer extracts the bearer token from the Authorization
// header and validates it into a session.
func SessionFromBearer(ctx router.Context, auther Authenticator) (Session, error) {
	raw := ctx.Header("Authorization")
	if raw == "" {
		return nil, ErrUnableToFindSession
	}

	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], DefaultAuthScheme) {
		return nil, ErrUnableToFindSession
	}

	return auther.SessionFromToken(strings.TrimSpace(parts[1]))
}

// ProtectedRoute rejects requests without a valid bearer token and stores
// the session in locals for downstream handlers.
func ProtectedRoute(auther Authenticator, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			session, err := SessionFromBearer(ctx, auther)
			if err != nil {
				return errorHandler(ctx, err)
			}

			ctx.Locals("session", session)

			return next(ctx)
		}
	}
}

// SessionFromLocals retrieves the session stored by ProtectedRoute.
func SessionFromLocals(ctx router.Context) (Session, error) {
	raw := ctx.Locals("session")
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	session, ok := raw.(Session)
	if !ok {
		return nil, ErrUnableToFindSession
	}

	return session, nil
}
