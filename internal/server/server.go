// Package server wires the gin engine and runs it until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/vacancy-parser/internal/handlers"
	"github.com/justsurfingit/vacancy-parser/internal/logger"
	"github.com/justsurfingit/vacancy-parser/internal/middleware"
)

// ShutdownTimeout bounds how long in-flight requests may drain.
const ShutdownTimeout = 10 * time.Second

// Deps are the collaborators the routes are built from.
type Deps struct {
	Log            logger.Logger
	Validator      middleware.Validator
	Limiter        middleware.Checker
	Vacancies      *handlers.VacancyHandler
	Health         *handlers.HealthHandler
	Metrics        http.Handler
	AllowedOrigins []string
}

// NewRouter builds the engine. The ingest route answers POST on "/" and on
// "/api/v1/vacancies"; OPTIONS is a CORS preflight and any other method is 405.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestID(d.Log))
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.NoMethod(handlers.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	if d.Health != nil {
		r.GET("/health", d.Health.Health)
	}
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	ingest := []gin.HandlerFunc{
		middleware.Auth(d.Validator),
		middleware.RateLimit(d.Limiter),
		d.Vacancies.Ingest,
	}
	r.POST("/", ingest...)
	r.POST("/api/v1/vacancies", ingest...)

	// Preflight is answered by the CORS middleware; these routes keep OPTIONS
	// out of the 405 handler.
	preflight := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.OPTIONS("/", preflight)
	r.OPTIONS("/api/v1/vacancies", preflight)

	return r
}

type Server struct {
	http *http.Server
	log  logger.Logger
}

func New(addr string, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Classification may take a minute with retries.
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is done, then drains in-flight requests for at most
// ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", logger.String("address", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server", logger.Duration("timeout", ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server stopped gracefully")
	return nil
}
