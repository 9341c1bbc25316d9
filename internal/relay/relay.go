package relay

import (
	"autoapprove/internal/governance"
	"autoapprove/internal/policy"
	"autoapprove/internal/subscriptions"
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Governance lists and grants subscription requests.
type Governance interface {
	ListPending(ctx context.Context, domainID, projectID string) ([]subscriptions.Request, error)
	Grant(ctx context.Context, domainID, requestID, justification string) (governance.GrantResult, error)
}

// Notifier confirms an approval to interested parties.
type Notifier interface {
	Notify(ctx context.Context, decision subscriptions.Decision, req subscriptions.Request) error
}

// Recorder receives the summary of every pass. Failures are logged and never affect the pass.
type Recorder interface {
	Record(ctx context.Context, summary Summary) error
}

type Relay struct {
	governance Governance
	policy     policy.Policy
	notifier   Notifier
	recorders  []Recorder
	logger     *zap.Logger
	now        func() time.Time
}

func New(gov Governance, p policy.Policy, notifier Notifier, logger *zap.Logger, recorders ...Recorder) *Relay {
	return &Relay{
		governance: gov,
		policy:     p,
		notifier:   notifier,
		recorders:  recorders,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessPending runs one pass: it lists the project's pending requests and decides them one
// at a time in listing order. A failure on one request is recorded and the pass moves on.
// If listing fails part way, the requests already listed are still processed.
func (r *Relay) ProcessPending(ctx context.Context, domainID, projectID string) Summary {
	summary := Summary{
		RunID:     runID(ctx),
		DomainID:  domainID,
		ProjectID: projectID,
		StartedAt: r.now(),
	}

	logger := r.logger.With(
		zap.String("run_id", summary.RunID),
		zap.String("domain_id", domainID),
		zap.String("project_id", projectID),
	)

	requests, err := r.governance.ListPending(ctx, domainID, projectID)
	if err != nil {
		summary.ListErr = err
		logger.Error("Failed to list pending subscription requests",
			zap.Stringer("class", governance.Classify(err)),
			zap.Int("listed", len(requests)),
			zap.Error(err),
		)
	}

	if len(requests) == 0 && err == nil {
		logger.Info("No pending subscription requests found")
	}

	for _, req := range requests {
		summary.Results = append(summary.Results, r.process(ctx, logger, domainID, req))
	}

	summary.FinishedAt = r.now()

	logger.Info("Finished processing subscription requests",
		zap.Int("approved", summary.Count(OutcomeApproved)),
		zap.Int("already_approved", summary.Count(OutcomeAlreadyApproved)),
		zap.Int("deferred", summary.Count(OutcomeDeferred)),
		zap.Int("skipped", summary.Count(OutcomeSkipped)),
		zap.Int("failed", summary.Count(OutcomeFailed)),
		zap.Duration("duration", summary.Duration()),
	)

	for _, recorder := range r.recorders {
		if err := recorder.Record(ctx, summary); err != nil {
			logger.Warn("Failed to record run summary", zap.Error(err))
		}
	}

	return summary
}

func (r *Relay) process(ctx context.Context, logger *zap.Logger, domainID string, req subscriptions.Request) Result {
	result := Result{
		RequestID: req.ID,
		AssetName: req.AssetName(),
	}
	logger = logger.With(zap.String("request_id", req.ID))

	if req.ID == "" {
		result.Outcome = OutcomeSkipped
		result.Err = governance.ErrorMissingIdentifier()
		result.Class = governance.ClassPermanent
		logger.Warn("Skipping subscription request without an identifier")
		return result
	}

	if !req.IsPending() {
		result.Outcome = OutcomeSkipped
		result.Justification = "status is " + string(req.Status)
		logger.Info("Skipping subscription request that is no longer pending",
			zap.String("status", string(req.Status)),
		)
		return result
	}

	decision := r.policy.Evaluate(req)
	result.Justification = decision.Justification

	if !decision.IsApprove() {
		result.Outcome = OutcomeDeferred
		logger.Info("Subscription request deferred",
			zap.String("asset", result.AssetName),
			zap.String("reason", decision.Justification),
		)
		return result
	}

	grant, err := r.governance.Grant(ctx, domainID, req.ID, decision.Justification)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		result.Class = governance.Classify(err)
		logger.Error("Error processing subscription request",
			zap.String("asset", result.AssetName),
			zap.Stringer("class", result.Class),
			zap.Error(err),
		)
		return result
	}

	if grant == governance.GrantAlreadyApproved {
		result.Outcome = OutcomeAlreadyApproved
		return result
	}

	result.Outcome = OutcomeApproved
	logger.Info("Approved subscription request",
		zap.String("asset", result.AssetName),
		zap.String("requester", req.RequesterName()),
	)

	if err := r.notifier.Notify(ctx, decision, req); err != nil {
		logger.Warn("Failed to send approval notification", zap.Error(err))
		return result
	}
	result.Notified = true

	return result
}

func runID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
