package governance

import (
	"autoapprove/internal/subscriptions"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/datazone"
	"github.com/aws/aws-sdk-go-v2/service/datazone/types"
	"go.uber.org/zap"
)

const (
	// PageSize is the largest page ListSubscriptionRequests accepts.
	PageSize = 50

	MaxDecisionCommentLength = 4096
)

// DataZoneAPI defines the DataZone operations required to decide subscription requests.
type DataZoneAPI interface {
	datazone.ListSubscriptionRequestsAPIClient
	AcceptSubscriptionRequest(ctx context.Context, params *datazone.AcceptSubscriptionRequestInput, optFns ...func(*datazone.Options)) (*datazone.AcceptSubscriptionRequestOutput, error)
	GetSubscriptionRequestDetails(ctx context.Context, params *datazone.GetSubscriptionRequestDetailsInput, optFns ...func(*datazone.Options)) (*datazone.GetSubscriptionRequestDetailsOutput, error)
}

// GrantResult tells a caller whether this call made the approval or found it already made.
type GrantResult int

const (
	GrantAccepted GrantResult = iota + 1
	GrantAlreadyApproved
)

func (g GrantResult) String() string {
	switch g {
	case GrantAccepted:
		return "accepted"
	case GrantAlreadyApproved:
		return "already-approved"
	default:
		return "unknown"
	}
}

// Client wraps the DataZone subscription request API with retries and idempotent grants.
type Client struct {
	api     DataZoneAPI
	retrier *Retrier
	logger  *zap.Logger
}

func NewClient(api DataZoneAPI, retrier *Retrier, logger *zap.Logger) *Client {
	return &Client{
		api:     api,
		retrier: retrier,
		logger:  logger,
	}
}

// ListPending returns every PENDING request the approver project can decide, following
// continuation tokens until exhausted and keeping upstream order. On failure it returns
// the requests gathered so far together with the error.
func (c *Client) ListPending(ctx context.Context, domainID, projectID string) ([]subscriptions.Request, error) {
	paginator := datazone.NewListSubscriptionRequestsPaginator(c.api, &datazone.ListSubscriptionRequestsInput{
		DomainIdentifier:  aws.String(domainID),
		ApproverProjectId: aws.String(projectID),
		Status:            types.SubscriptionRequestStatusPending,
		MaxResults:        aws.Int32(PageSize),
	}, func(o *datazone.ListSubscriptionRequestsPaginatorOptions) {
		o.StopOnDuplicateToken = true
	})

	var requests []subscriptions.Request
	pages := 0

	for paginator.HasMorePages() {
		var page *datazone.ListSubscriptionRequestsOutput
		err := c.retrier.Do(ctx, "ListSubscriptionRequests", func(ctx context.Context) error {
			var err error
			page, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return requests, ErrorListingRequests(domainID, projectID, err)
		}

		pages++
		for _, item := range page.Items {
			requests = append(requests, RequestFromSummary(item))
		}
	}

	c.logger.Info("Listed pending subscription requests",
		zap.String("domain_id", domainID),
		zap.String("project_id", projectID),
		zap.Int("pages", pages),
		zap.Int("requests", len(requests)),
	)

	return requests, nil
}

// Grant accepts a request. A request that is already approved counts as success, so
// duplicate deliveries and concurrent invocations converge on the same end state.
func (c *Client) Grant(ctx context.Context, domainID, requestID, justification string) (GrantResult, error) {
	if requestID == "" {
		return 0, ErrorMissingIdentifier()
	}

	acceptErr := c.retrier.Do(ctx, "AcceptSubscriptionRequest", func(ctx context.Context) error {
		_, err := c.api.AcceptSubscriptionRequest(ctx, &datazone.AcceptSubscriptionRequestInput{
			DomainIdentifier: aws.String(domainID),
			Identifier:       aws.String(requestID),
			DecisionComment:  aws.String(truncate(justification, MaxDecisionCommentLength)),
		})
		return err
	})
	if acceptErr == nil {
		return GrantAccepted, nil
	}

	if IsTransient(acceptErr) {
		return 0, ErrorAcceptingRequest(requestID, acceptErr)
	}

	// The request may already be decided; read it back before calling this a failure.
	status, err := c.Status(ctx, domainID, requestID)
	if err != nil {
		c.logger.Warn("Unable to read subscription request after failed accept",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return 0, ErrorAcceptingRequest(requestID, acceptErr)
	}

	switch status {
	case subscriptions.StatusApproved:
		c.logger.Info("Subscription request already approved",
			zap.String("request_id", requestID),
		)
		return GrantAlreadyApproved, nil
	case subscriptions.StatusRejected:
		return 0, ErrorAlreadyRejected(requestID)
	}

	if isConflict(acceptErr) {
		return 0, ErrorUndecidedConflict(requestID, string(status), acceptErr)
	}
	return 0, ErrorAcceptingRequest(requestID, acceptErr)
}

// Status reads the current status of a single request.
func (c *Client) Status(ctx context.Context, domainID, requestID string) (subscriptions.Status, error) {
	var out *datazone.GetSubscriptionRequestDetailsOutput
	err := c.retrier.Do(ctx, "GetSubscriptionRequestDetails", func(ctx context.Context) error {
		var err error
		out, err = c.api.GetSubscriptionRequestDetails(ctx, &datazone.GetSubscriptionRequestDetailsInput{
			DomainIdentifier: aws.String(domainID),
			Identifier:       aws.String(requestID),
		})
		return err
	})
	if err != nil {
		return "", ErrorReadingRequest(requestID, err)
	}
	return StatusFromDataZone(out.Status), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
