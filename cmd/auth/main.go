package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/todo_auth/internal/httpserver"
	"github.com/Skotchmaster/todo_auth/internal/metrics"
	"github.com/Skotchmaster/todo_auth/internal/mykafka"
	"github.com/Skotchmaster/todo_auth/internal/repo"
	"github.com/Skotchmaster/todo_auth/internal/service"
	"github.com/Skotchmaster/todo_auth/pkg/config"
	"github.com/Skotchmaster/todo_auth/pkg/db"
	"github.com/Skotchmaster/todo_auth/pkg/hash"
	"github.com/Skotchmaster/todo_auth/pkg/logging"
	"github.com/Skotchmaster/todo_auth/pkg/middleware/auth"
	"github.com/Skotchmaster/todo_auth/pkg/tokens"
)

func main() {
	if err := run(); err != nil {
		slog.Error("auth_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if err := repo.Migrate(gdb); err != nil {
		return err
	}

	codec, err := tokens.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return err
	}
	hasher, err := hash.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	events := mykafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer events.Close()
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	rp := &repo.GormRepo{DB: gdb}
	svc, err := service.NewAuthService(rp, hasher, codec, cfg.AccessTokenTTL, events, m)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(httpserver.Common(logger)...)

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		AuthMW:      auth.NewBearerAuth(service.NewResolver(codec, m)),
		DB:          gdb,
		Gatherer:    reg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("auth_started", "addr", cfg.Addr(), "jwt_alg", codec.Algorithm())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown", "error", err)
	}
	logger.Info("auth_stopped")
	return nil
}
