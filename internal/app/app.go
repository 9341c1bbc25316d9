package app

import (
	"autoapprove/internal/accounts"
	"autoapprove/internal/config"
	"autoapprove/internal/governance"
	"autoapprove/internal/listener"
	"autoapprove/internal/logging"
	"autoapprove/internal/metrics"
	"autoapprove/internal/notifications"
	"autoapprove/internal/policy"
	"autoapprove/internal/relay"
	"autoapprove/internal/reports"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/datazone"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"
)

// serviceMaxAttempts bounds SDK retries for the clients whose calls are not retried by
// the governance retrier.
const serviceMaxAttempts = 3

// Clients holds the AWS APIs the application talks to.
type Clients struct {
	DataZone   governance.DataZoneAPI
	SNS        notifications.SNSPublisher
	CloudWatch metrics.CloudWatchAPI
	S3         reports.S3API
	STS        accounts.STSAPI
}

// App is a fully wired relay plus the configuration it was built from.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	AccountID string
	Relay     *relay.Relay
}

// Bootstrap reads the environment, builds the logger and AWS clients, and wires the relay.
// Any configuration problem is returned; callers must not start handling events.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg, cfgErr := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, ErrorInitializing("logger", err)
	}

	if cfgErr != nil {
		logger.Error("Invalid configuration", zap.Error(cfgErr))
		return nil, ErrorInitializing("config", cfgErr)
	}

	clients, err := NewClients(ctx)
	if err != nil {
		return nil, err
	}

	return Build(ctx, cfg, clients, logger)
}

// NewClients loads the default AWS configuration and creates every client. DataZone retries
// are disabled at the SDK level because the governance retrier owns them.
func NewClients(ctx context.Context) (Clients, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.NewStandard(), serviceMaxAttempts)
		}),
	)
	if err != nil {
		return Clients{}, ErrorInitializing("aws config", err)
	}

	return Clients{
		DataZone: datazone.NewFromConfig(awsConfig, func(o *datazone.Options) {
			o.Retryer = aws.NopRetryer{}
		}),
		SNS:        sns.NewFromConfig(awsConfig),
		CloudWatch: cloudwatch.NewFromConfig(awsConfig),
		S3:         s3.NewFromConfig(awsConfig),
		STS:        sts.NewFromConfig(awsConfig),
	}, nil
}

// Build wires the relay from already constructed clients.
func Build(ctx context.Context, cfg config.Config, clients Clients, logger *zap.Logger) (*App, error) {
	accountID, err := accounts.GetAccountID(ctx, clients.STS)
	if err != nil {
		return nil, ErrorInitializing("account id", err)
	}

	notificationTmpl, err := notifications.DefaultTemplate()
	if err != nil {
		return nil, ErrorInitializing("notification template", err)
	}

	var recorders []relay.Recorder
	if cfg.MetricsNamespace != "" {
		recorders = append(recorders, metrics.NewPublisher(clients.CloudWatch, cfg.MetricsNamespace, logger))
	}
	if cfg.ReportBucket != "" {
		reportTmpl, err := reports.DefaultTemplate()
		if err != nil {
			return nil, ErrorInitializing("report template", err)
		}
		recorders = append(recorders, reports.NewWriter(clients.S3, cfg.ReportBucket, reportTmpl, logger))
	}

	retrier := governance.NewRetrier(cfg.MaxAttempts, cfg.MaxBackoff, cfg.CallTimeout, logger)
	notifier := notifications.NewNotifier(clients.SNS, cfg.TopicArn, accountID, cfg.StackName, notificationTmpl, cfg.CallTimeout, logger)

	r := relay.New(
		governance.NewClient(clients.DataZone, retrier, logger),
		policy.FromConfig(cfg.Policy, cfg.DecisionComment),
		notifier,
		logger,
		recorders...,
	)

	logger.Info("Initialized subscription auto-approver",
		zap.String("domain_id", cfg.DomainID),
		zap.String("project_id", cfg.ProjectID),
		zap.String("policy_mode", cfg.Policy.Mode),
		zap.Int("max_attempts", cfg.MaxAttempts),
		zap.Bool("metrics", cfg.MetricsNamespace != ""),
		zap.Bool("reports", cfg.ReportBucket != ""),
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		AccountID: accountID,
		Relay:     r,
	}, nil
}

// Listener returns an event listener bound to the configured domain and project.
func (a *App) Listener() *listener.Listener {
	return listener.New(a.Config.DomainID, a.Config.ProjectID, a.Relay, a.Logger)
}

// Sweep runs one polling pass over the configured project.
func (a *App) Sweep(ctx context.Context) relay.Summary {
	return a.Relay.ProcessPending(ctx, a.Config.DomainID, a.Config.ProjectID)
}
