package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/todo_auth/pkg/logging"
	"github.com/Skotchmaster/todo_auth/pkg/tokens"
)

// UserKey is the echo context key holding the caller's *tokens.Identity.
const UserKey = "user"

const unauthorizedMessage = "could not validate user"

type ctxKey struct{}

type IdentityResolver interface {
	Resolve(token string) (*tokens.Identity, error)
}

type BearerAuth struct {
	resolver IdentityResolver
}

func NewBearerAuth(r IdentityResolver) *BearerAuth {
	return &BearerAuth{resolver: r}
}

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "require_auth")

		token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_rejected", "reason", "missing bearer token")
			return unauthorized(c)
		}

		identity, err := m.resolver.Resolve(token)
		if err != nil {
			l.Warn("auth_rejected", "reason", "invalid token", "error", err)
			return unauthorized(c)
		}

		c.Set(UserKey, identity)
		ctx := IntoContext(c.Request().Context(), identity)
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", identity.ID))
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// BearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, unauthorizedMessage)
}

func IntoContext(ctx context.Context, id *tokens.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (*tokens.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*tokens.Identity)
	return id, ok && id != nil
}

func CurrentUser(c echo.Context) (*tokens.Identity, bool) {
	id, ok := c.Get(UserKey).(*tokens.Identity)
	return id, ok && id != nil
}
