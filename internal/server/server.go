// Package server exposes the analysis API over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/common/config"
	apperrors "resume-analyzer/internal/common/errors"
	"resume-analyzer/internal/common/logger"
)

type Server struct {
	engine          *gin.Engine
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          logger.Logger
}

func New(cfg *config.Config, analyze *analyzer.Handler, log logger.Logger) *Server {
	log = log.With(map[string]interface{}{"component": "server"})

	engine := gin.New()
	engine.Use(
		apperrors.NewErrorHandler(log).Recovery(),
		requestID(),
		accessLog(log),
		httpMetrics(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
			ExposeHeaders:   []string{requestIDHeader},
			MaxAge:          12 * time.Hour,
		}),
	)

	analyze.RegisterRoutes(engine)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	engine.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"provider": cfg.Provider.Kind,
			"time":     time.Now().Format(time.RFC3339),
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apperrors.ErrorResponse{Error: "Not found"})
	})

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       config.GetDuration(cfg.Server.ReadTimeout),
			WriteTimeout:      config.GetDuration(cfg.Server.WriteTimeout),
		},
		shutdownTimeout: config.GetDuration(cfg.Server.ShutdownTimeout),
		logger:          log,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled, then drains
// in-flight requests for at most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", map[string]interface{}{"addr": ln.Addr().String()})
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutdown signal received, draining requests", map[string]interface{}{
		"timeoutMs": s.shutdownTimeout.Milliseconds(),
	})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("HTTP server stopped", nil)
	return nil
}
