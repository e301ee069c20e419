package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stopperw/modsync/internal/db"
)

type Server struct {
	config   *Config
	db       *sqlx.DB
	services *Services
	server   *http.Server
}

func New(config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	database, err := db.NewSqliteDB(db.WithPath(config.DBPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	services, err := NewServices(config, database)
	if err != nil {
		database.Close()
		return nil, err
	}

	handler := SetupRoutes(config, services)

	return &Server{
		config:   config,
		db:       database,
		services: services,
		server: &http.Server{
			Addr:         config.HTTP.Addr,
			Handler:      handler,
			ReadTimeout:  config.RequestTimeout,
			WriteTimeout: config.RequestTimeout,
		},
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	slog.Info("modsync server start")
	defer slog.Info("modsync server stop")

	errCh := make(chan error, 1)
	go func() {
		if err := s.runHTTPServer(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		slog.Info("http server stopped")
	}()

	select {
	case err := <-errCh:
		slog.Error("server start error", "error", err)
		return err
	case <-ctx.Done():
	}

	slog.Info("modsync shutdown signal")
	// The parent context is already canceled; give shutdown its own deadline.
	if err := s.Stop(context.Background()); err != nil {
		slog.Error("modsync shutdown error", "error", err)
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.db.Close()
}

func (s *Server) runHTTPServer() error {
	if s.config.HTTP.CertFile != "" && s.config.HTTP.KeyFile != "" {
		slog.Info("server start tls", "addr", s.config.HTTP.Addr)
		return s.server.ListenAndServeTLS(s.config.HTTP.CertFile, s.config.HTTP.KeyFile)
	}
	slog.Info("server start http", "addr", s.config.HTTP.Addr)
	return s.server.ListenAndServe()
}
