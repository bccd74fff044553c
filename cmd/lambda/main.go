package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-xray-sdk-go/xray"
	adapterlogger "penalty-console/internal/adapters/logger"
	"penalty-console/internal/platform/app"
	platformlambda "penalty-console/internal/platform/lambda"
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
	lambda.Start(platformlambda.NewLambdaHandler(console.Echo, logger))
}
