package main

import (
	"context"
	"os"

	"github.com/aws/aws-xray-sdk-go/xray"
	adapterlogger "penalty-console/internal/adapters/logger"
	"penalty-console/internal/platform/app"
)

func main() {
	cfg, err := app.LoadConfig()
	logger := adapterlogger.New(cfg.LogLevel)
	if err != nil {
		logger.Error(context.Background(), "configuration error", "error", err)
		os.Exit(1)
	}
	xray.Configure(xray.Config{LogLevel: "error"})

	console, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error(context.Background(), "failed to initialize console", "error", err)
		os.Exit(1)
	}
	defer console.Close()

	logger.Info(context.Background(), "starting http server", "port", cfg.Port, "session_backend", cfg.SessionBackend)
	console.Echo.Logger.Fatal(console.Echo.Start(":" + cfg.Port))
}
