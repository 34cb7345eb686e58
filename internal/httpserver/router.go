package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_auth/pkg/db"
	"github.com/Skotchmaster/todo_auth/pkg/logging"
	"github.com/Skotchmaster/todo_auth/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/todo_auth/pkg/middleware/logging"
)

const bodyLimit = "64K"

type Deps struct {
	AuthHandler *AuthHTTP
	AuthMW      *auth.BearerAuth
	DB          *gorm.DB
	Gatherer    prometheus.Gatherer
}

// Common is the middleware chain every route runs behind.
func Common(logger *slog.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLoggerWithConfig(loggingmw.Config{
			Logger:  logger,
			Skipper: loggingmw.SkipPaths("/health/live", "/health/ready", "/metrics"),
		}),
		ecM.Secure(),
		ecM.BodyLimit(bodyLimit),
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	g := e.Group("/auth")
	g.POST("/", d.AuthHandler.Register)
	g.POST("/token", d.AuthHandler.Login)
	g.GET("/me", d.AuthHandler.Me, d.AuthMW.RequireAuth)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	if err := db.Ping(c.Request().Context(), d.DB); err != nil {
		logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
