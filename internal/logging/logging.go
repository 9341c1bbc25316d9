package logging

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger at the given level ("debug", "info", ...).
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// WithLambdaContext tags logger with the invocation's request ID and function ARN when present.
func WithLambdaContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	lc, ok := lambdacontext.FromContext(ctx)
	if !ok {
		return logger
	}
	return logger.With(
		zap.String("aws_request_id", lc.AwsRequestID),
		zap.String("function_arn", lc.InvokedFunctionArn),
	)
}
