// Package server exposes the compiler and the recording store over HTTP for the
// browser capture agent.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/v0xg/puppetrec/internal/config"
	"github.com/v0xg/puppetrec/internal/recording"
	"github.com/v0xg/puppetrec/internal/store"
	"go.uber.org/zap"
)

// Recordings is the storage the server needs.
type Recordings interface {
	Save(ctx context.Context, name string, events []recording.Event) (store.Recording, error)
	Get(ctx context.Context, id string) (store.Recording, error)
	List(ctx context.Context) ([]store.Summary, error)
	Delete(ctx context.Context, id string) error
}

// Server wraps the HTTP router and its dependencies.
type Server struct {
	router  *gin.Engine
	store   Recordings
	cfg     *config.Config
	logger  *zap.Logger
	address string
}

// NewServer creates a server listening on cfg.Address.
func NewServer(cfg *config.Config, recordings Recordings, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:  gin.New(),
		store:   recordings,
		cfg:     cfg,
		logger:  logger,
		address: cfg.Address,
	}

	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealthz)

	s.router.GET("/options", s.handleOptions)
	s.router.GET("/options/match", s.handleMatchAttribute)
	s.router.POST("/compile", s.handleCompile)

	s.router.POST("/recordings", s.handleSaveRecording)
	s.router.GET("/recordings", s.handleListRecordings)
	s.router.GET("/recordings/:id", s.handleGetRecording)
	s.router.DELETE("/recordings/:id", s.handleDeleteRecording)
	s.router.GET("/recordings/:id/script", s.handleRecordingScript)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("address", s.address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
