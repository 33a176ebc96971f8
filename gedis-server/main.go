package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/AAVision/learn-redis/config"
	"github.com/AAVision/learn-redis/internal/logger"
	"github.com/AAVision/learn-redis/internal/server"
)

func main() {
	addr := pflag.String("addr", config.DefaultAddr, "address to listen on")
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn or error")
	logFormat := pflag.String("log-format", "text", "log format: text or json")
	pflag.Parse()

	if err := logger.Init(logger.Config{Level: *logLevel, Format: *logFormat}); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to configure logging:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New()
	if err := srv.Listen(*addr); err != nil {
		logger.L().Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	if err := srv.Serve(ctx); err != nil {
		logger.L().Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
