package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"codefossils/config"
	"codefossils/db"
	"codefossils/fetcher"
	"codefossils/github"
	"codefossils/handlers"
	"codefossils/logger"
)

// Service errors
var (
	ErrServiceInit     = fmt.Errorf("service initialization error")
	ErrServiceShutdown = fmt.Errorf("service shutdown error")
)

const shutdownTimeout = 10 * time.Second

// Service represents the main application service
type Service struct {
	config    *config.Config
	database  *db.DB
	server    *http.Server
	refresher *fetcher.Refresher
	scheduler *Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewService connects to the database, applies migrations and wires the API,
// the refresher and the scheduler.
func NewService(cfg *config.Config) (*Service, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceInit, err)
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize database: %v", ErrServiceInit, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := database.Migrate(ctx); err != nil {
		cancel()
		database.Close()
		return nil, fmt.Errorf("%w: %v", ErrServiceInit, err)
	}

	client := github.NewClient(cfg.GitHubToken)
	refresher := fetcher.NewStoreRefresher(ctx, database, client, cfg.RefreshCooldown)
	scheduler := NewScheduler(database, refresher, cfg.RefreshInterval)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.NewRepoHandler(database, refresher, database))

	logger.Info("Service initialized successfully",
		zap.String("addr", cfg.Addr()),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.Duration("refresh_cooldown", cfg.RefreshCooldown),
		zap.Bool("github_token", cfg.GitHubToken != ""))

	return &Service{
		config:    cfg,
		database:  database,
		server:    newServer(cfg.Addr(), router),
		refresher: refresher,
		scheduler: scheduler,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Start runs the scheduler and the HTTP server until an interrupt or
// SIGTERM arrives, then shuts both down.
func (s *Service) Start() error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.scheduler.Run(s.ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.cancel()
			s.wg.Wait()
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-s.waitForShutdown():
	}

	return s.shutdown()
}

// waitForShutdown returns a channel closed on the shutdown signal or when the
// service context ends.
func (s *Service) waitForShutdown() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case <-sigChan:
			logger.Info("Shutdown signal received, initiating graceful shutdown")
		case <-s.ctx.Done():
		}
	}()
	return done
}

func (s *Service) shutdown() error {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)

	// Scheduled and manual passes must finish before Close releases the database.
	s.wg.Wait()
	s.refresher.Wait()
	if err != nil {
		return fmt.Errorf("%w: failed to stop http server: %v", ErrServiceShutdown, err)
	}
	return nil
}

// Close performs cleanup operations
func (s *Service) Close() error {
	logger.Info("Closing service")
	s.cancel()
	if err := s.database.Close(); err != nil {
		return fmt.Errorf("%w: failed to close database: %v", ErrServiceShutdown, err)
	}
	return nil
}
