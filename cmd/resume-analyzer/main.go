// cmd/resume-analyzer/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resume-analyzer/internal/analyzer"
	"resume-analyzer/internal/common/config"
	"resume-analyzer/internal/common/logger"
	"resume-analyzer/internal/common/observability"
	"resume-analyzer/internal/provider"
	"resume-analyzer/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting resume analyzer...",
		zap.String("environment", cfg.App.Environment),
		zap.String("provider", cfg.Provider.Kind),
		zap.String("model", cfg.Provider.Model),
		zap.Int("port", cfg.Server.Port),
	)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New(cfg.App.Name, cfg.Tracing.JaegerEndpoint, log)
	defer obs.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// no client timeout; provider.timeout bounds each call through the context
	p, err := provider.New(ctx, cfg.Provider, &http.Client{})
	if err != nil {
		zapLog.Fatal("provider init failed", zap.Error(err))
	}

	acfg := analyzer.ConfigFrom(cfg)
	service := analyzer.NewService(acfg, p, log, obs)
	handler := analyzer.NewHandler(acfg, service, log, obs)

	srv := server.New(cfg, handler, log)
	if err := srv.Run(ctx); err != nil {
		zapLog.Error("HTTP server failed", zap.Error(err))
		return
	}

	zapLog.Info("Resume analyzer stopped gracefully")
}
