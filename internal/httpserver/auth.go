package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/todo_auth/internal/service"
	"github.com/Skotchmaster/todo_auth/internal/transport"
	"github.com/Skotchmaster/todo_auth/pkg/logging"
	"github.com/Skotchmaster/todo_auth/pkg/middleware/auth"
)

const (
	grantTypePassword = "password"
	tokenTypeBearer   = "bearer"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if _, err := h.Svc.Register(ctx, req); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
		}
	}

	return c.NoContent(http.StatusCreated)
}

// Login implements the OAuth2 password grant over a form-encoded body.
func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.GrantType != "" && req.GrantType != grantTypePassword {
		l.Warn("login_error", "status", 400, "grant_type", req.GrantType)
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"error":   "unsupported_grant_type",
			"message": "grant_type must be password",
		})
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, service.ErrVerificationFailed):
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, service.ErrVerificationFailed.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
		}
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   tokenTypeBearer,
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	id, ok := auth.CurrentUser(c)
	if !ok {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, service.ErrUnauthorized.Error())
	}
	return c.JSON(http.StatusOK, transport.MeResponse{Username: id.Username, ID: id.ID})
}
