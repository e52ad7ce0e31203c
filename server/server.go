// Package server wires the HTTP surface around the show manager and store.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/duetcast/duetcast/internal/profile"
	"github.com/duetcast/duetcast/internal/version"
	"github.com/duetcast/duetcast/server/router/apiv1"
	"github.com/duetcast/duetcast/server/show"
	"github.com/duetcast/duetcast/store"
)

// Server is the duetcast HTTP server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Manager *show.Manager

	echoServer *echo.Echo
}

// NewServer builds the echo instance and mounts the v1 API.
func NewServer(ctx context.Context, p *profile.Profile, s *store.Store, m *show.Manager) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version.GetCurrentVersion(p.Mode),
		})
	})

	apiService, err := apiv1.NewAPIV1Service(p, s, m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create API v1 service")
	}
	apiService.RegisterRoutes(e)

	return &Server{
		Profile:    p,
		Store:      s,
		Manager:    m,
		echoServer: e,
	}, nil
}

// Start begins serving and blocks until the listener fails.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// Shutdown stops the listener, cancels live shows and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	s.Manager.Shutdown()

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown")
}

func requestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	})
}
