package main

import (
	"autoapprove/internal/app"
	"autoapprove/internal/logging"
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var application *app.App

func init() {
	var err error
	application, err = app.Bootstrap(context.Background())
	if err != nil {
		panic(fmt.Sprintf("Unable to initialize subscription sweep: %v", err))
	}
}

// handler runs one polling pass per scheduled event, picking up requests whose
// creation events were missed or whose earlier attempts failed transiently.
func handler(ctx context.Context, event events.CloudWatchEvent) error {
	logger := logging.WithLambdaContext(ctx, application.Logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic during sweep", zap.Any("panic", r))
		}
	}()

	logger.Info("Starting scheduled sweep",
		zap.String("event_id", event.ID),
		zap.Time("scheduled_at", event.Time),
	)

	summary := application.Sweep(ctx)
	if summary.Failed() {
		logger.Warn("Sweep finished with failures", zap.String("run_id", summary.RunID))
	}

	return nil
}

func main() {
	lambda.Start(handler)
}
