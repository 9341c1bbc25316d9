package metrics

import (
	"autoapprove/internal/relay"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const (
	ApprovedMetric        = "Approved"
	AlreadyApprovedMetric = "AlreadyApproved"
	DeferredMetric        = "Deferred"
	FailedMetric          = "Failed"
	DomainDimension       = "DomainId"
	ProjectDimension      = "ProjectId"
)

// CloudWatchAPI is the subset of the CloudWatch client used to publish counts.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Publisher sends one batch of counts per pass to a custom namespace.
type Publisher struct {
	client    CloudWatchAPI
	namespace string
	logger    *zap.Logger
}

func NewPublisher(client CloudWatchAPI, namespace string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

func (p *Publisher) Record(ctx context.Context, summary relay.Summary) error {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: MetricData(summary),
	}

	if _, err := p.client.PutMetricData(ctx, input); err != nil {
		return ErrorPublishingMetrics(p.namespace, err)
	}

	p.logger.Debug("Published run metrics",
		zap.String("namespace", p.namespace),
		zap.String("run_id", summary.RunID),
	)
	return nil
}

// MetricData converts a summary into datums dimensioned by domain and project. A pass
// whose listing failed counts as one extra failure.
func MetricData(summary relay.Summary) []cwTypes.MetricDatum {
	failed := summary.Count(relay.OutcomeFailed)
	if summary.ListErr != nil {
		failed++
	}

	counts := []struct {
		name  string
		value int
	}{
		{ApprovedMetric, summary.Count(relay.OutcomeApproved)},
		{AlreadyApprovedMetric, summary.Count(relay.OutcomeAlreadyApproved)},
		{DeferredMetric, summary.Count(relay.OutcomeDeferred)},
		{FailedMetric, failed},
	}

	dimensions := []cwTypes.Dimension{
		{
			Name:  aws.String(DomainDimension),
			Value: aws.String(summary.DomainID),
		},
		{
			Name:  aws.String(ProjectDimension),
			Value: aws.String(summary.ProjectID),
		},
	}

	timestamp := summary.FinishedAt
	data := make([]cwTypes.MetricDatum, 0, len(counts))
	for _, c := range counts {
		data = append(data, cwTypes.MetricDatum{
			MetricName: aws.String(c.name),
			Dimensions: dimensions,
			Unit:       cwTypes.StandardUnitCount,
			Value:      aws.Float64(float64(c.value)),
			Timestamp:  aws.Time(timestamp),
		})
	}

	return data
}
