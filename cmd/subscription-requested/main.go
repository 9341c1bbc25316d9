package main

import (
	"autoapprove/internal/app"
	"autoapprove/internal/listener"
	"autoapprove/internal/logging"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var (
	application *app.App
	eventsIn    *listener.Listener
)

func init() {
	var err error
	application, err = app.Bootstrap(context.Background())
	if err != nil {
		panic(fmt.Sprintf("Unable to initialize subscription auto-approver: %v", err))
	}

	eventsIn = application.Listener()
}

// handler always returns nil; failures are logged by the relay.
func handler(ctx context.Context, event json.RawMessage) error {
	logger := logging.WithLambdaContext(ctx, application.Logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic while handling event", zap.Any("panic", r))
		}
	}()

	if !eventsIn.Handle(ctx, event) {
		logger.Debug("Event did not trigger a processing pass")
	}

	return nil
}

func main() {
	lambda.Start(handler)
}
