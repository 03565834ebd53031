package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arcanna-ai/arcanna-mcp/internal/arcanna"
	"github.com/arcanna-ai/arcanna-mcp/internal/config"
	"github.com/arcanna-ai/arcanna-mcp/internal/resource"
	"github.com/arcanna-ai/arcanna-mcp/internal/server"
)

const version = "1.0.0"

func main() {
	// Optional .env next to the binary; real env always wins.
	_ = godotenv.Load()

	cfg := config.FromEnv()

	logger := mustBuildLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck // best-effort flush

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("starting arcanna mcp server",
		zap.String("host", cfg.Host),
		zap.String("transport", cfg.TransportMode),
		zap.String("user", cfg.User),
	)

	client := arcanna.NewClient(cfg.Host, cfg.ManagementAPIKey, cfg.InputAPIKey, logger, arcanna.Options{})
	resources := resource.NewClient(client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(client, resources, cfg, logger).Build(ctx, version)
	if err != nil {
		logger.Fatal("building mcp server", zap.Error(err))
	}

	switch cfg.TransportMode {
	case config.TransportSSE:
		sse := mcpserver.NewSSEServer(srv)
		go func() {
			<-ctx.Done()
			logger.Info("shutting down")
			_ = sse.Shutdown(context.Background())
		}()
		addr := ":" + cfg.SSEPort
		logger.Info("sse server listening", zap.String("addr", addr))
		if err := sse.Start(addr); err != nil {
			logger.Fatal("sse server failed", zap.Error(err))
		}
	default:
		if err := mcpserver.ServeStdio(srv); err != nil && ctx.Err() == nil {
			logger.Fatal("stdio server failed", zap.Error(err))
		}
	}
}

// mustBuildLogger builds a JSON logger writing to stderr; stdout belongs
// to the stdio transport.
func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
