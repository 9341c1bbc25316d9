package listener

import (
	"autoapprove/internal/events"
	"autoapprove/internal/relay"
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Processor runs one processing pass for a domain and approver project.
type Processor interface {
	ProcessPending(ctx context.Context, domainID, projectID string) relay.Summary
}

// Listener filters inbound EventBridge events and starts a pass for the ones that matter.
type Listener struct {
	domainID  string
	projectID string
	processor Processor
	logger    *zap.Logger
}

func New(domainID, projectID string, processor Processor, logger *zap.Logger) *Listener {
	return &Listener{
		domainID:  domainID,
		projectID: projectID,
		processor: processor,
		logger:    logger,
	}
}

// Handle processes a raw event and reports whether it triggered a pass. Events that do not
// match are dropped without touching the processor.
func (l *Listener) Handle(ctx context.Context, raw json.RawMessage) bool {
	event, err := events.Parse(raw)
	if err != nil {
		l.logger.Debug("Discarding malformed event", zap.Error(err))
		return false
	}

	if !event.Matches() {
		l.logger.Debug("Discarding unrelated event",
			zap.String("source", event.Source),
			zap.String("detail_type", event.DetailType),
			zap.String("status", event.Status()),
		)
		return false
	}

	if !event.IsForDomain(l.domainID) {
		l.logger.Warn("Discarding event for another domain",
			zap.String("event_domain", event.DomainID()),
			zap.String("domain_id", l.domainID),
		)
		return false
	}

	l.logger.Info("Subscription request created",
		zap.String("event_id", event.ID),
		zap.String("request_id", event.RequestID()),
	)

	l.processor.ProcessPending(ctx, l.domainID, l.projectID)
	return true
}
