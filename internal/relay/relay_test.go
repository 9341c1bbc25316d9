package relay

import (
	"autoapprove/internal/governance"
	"autoapprove/internal/policy"
	"autoapprove/internal/subscriptions"
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type grantCall struct {
	domainID      string
	requestID     string
	justification string
}

// mockGovernance approves requests in memory. A request stays approved once granted.
type mockGovernance struct {
	requests  []subscriptions.Request
	listErr   error
	grantErrs map[string]error
	approved  map[string]bool
	grants    []grantCall
}

func newMockGovernance(requests ...subscriptions.Request) *mockGovernance {
	return &mockGovernance{
		requests:  requests,
		grantErrs: map[string]error{},
		approved:  map[string]bool{},
	}
}

func (m *mockGovernance) ListPending(ctx context.Context, domainID, projectID string) ([]subscriptions.Request, error) {
	var pending []subscriptions.Request
	for _, req := range m.requests {
		if m.approved[req.ID] {
			continue
		}
		pending = append(pending, req)
	}
	return pending, m.listErr
}

func (m *mockGovernance) Grant(ctx context.Context, domainID, requestID, justification string) (governance.GrantResult, error) {
	m.grants = append(m.grants, grantCall{domainID, requestID, justification})
	if err := m.grantErrs[requestID]; err != nil {
		return 0, err
	}
	if m.approved[requestID] {
		return governance.GrantAlreadyApproved, nil
	}
	m.approved[requestID] = true
	return governance.GrantAccepted, nil
}

type mockNotifier struct {
	err      error
	notified []string
}

func (m *mockNotifier) Notify(ctx context.Context, decision subscriptions.Decision, req subscriptions.Request) error {
	m.notified = append(m.notified, decision.RequestID)
	return m.err
}

type mockRecorder struct {
	summaries []Summary
	err       error
}

func (m *mockRecorder) Record(ctx context.Context, summary Summary) error {
	m.summaries = append(m.summaries, summary)
	return m.err
}

const (
	domainID  = "dzd_test"
	projectID = "prj_owner"
	comment   = "Subscription request is auto-approved by Lambda"
)

func pending(id string) subscriptions.Request {
	return subscriptions.Request{
		ID:       id,
		DomainID: domainID,
		Status:   subscriptions.StatusPending,
		Asset:    subscriptions.Asset{Name: "asset-" + id},
	}
}

func outcomes(s Summary) []Outcome {
	var out []Outcome
	for _, r := range s.Results {
		out = append(out, r.Outcome)
	}
	return out
}

func TestProcessPendingApprovesEveryRequest(t *testing.T) {
	gov := newMockGovernance(pending("req-1"), pending("req-2"), pending("req-3"))
	notifier := &mockNotifier{}
	r := New(gov, policy.ApproveAll{Comment: comment}, notifier, zap.NewNop())

	summary := r.ProcessPending(context.Background(), domainID, projectID)

	assert.Equal(t, 3, summary.Count(OutcomeApproved))
	assert.Equal(t, []string{"req-1", "req-2", "req-3"}, notifier.notified)
	require.Len(t, gov.grants, 3)
	for _, g := range gov.grants {
		assert.Equal(t, domainID, g.domainID)
		assert.Equal(t, comment, g.justification)
	}
	assert.False(t, summary.Failed())
}

func TestProcessPendingIsolatesFailures(t *testing.T) {
	gov := newMockGovernance(pending("req-1"), pending("req-2"), pending("req-3"), pending("req-4"), pending("req-5"))
	gov.grantErrs["req-3"] = governance.ErrorAcceptingRequest("req-3", &smithy.GenericAPIError{Code: "AccessDeniedException"})
	notifier := &mockNotifier{}
	r := New(gov, policy.ApproveAll{Comment: comment}, notifier, zap.NewNop())

	summary := r.ProcessPending(context.Background(), domainID, projectID)

	assert.Equal(t, []Outcome{OutcomeApproved, OutcomeApproved, OutcomeFailed, OutcomeApproved, OutcomeApproved}, outcomes(summary))
	assert.Equal(t, []string{"req-1", "req-2", "req-4", "req-5"}, notifier.notified)

	failed := summary.Results[2]
	assert.Equal(t, governance.ClassPermanent, failed.Class)
	assert.ErrorIs(t, failed.Err, governance.ErrAcceptingRequest)
	assert.False(t, failed.Notified)
	assert.True(t, summary.Failed())
}

func TestProcessPendingKeepsApprovalWhenNotificationFails(t *testing.T) {
	gov := newMockGovernance(pending("req-1"), pending("req-2"))
	notifier := &mockNotifier{err: errors.New("sns unavailable")}
	core, logs := observer.New(zap.WarnLevel)
	r := New(gov, policy.ApproveAll{Comment: comment}, notifier, zap.New(core))

	summary := r.ProcessPending(context.Background(), domainID, projectID)

	assert.Equal(t, 2, summary.Count(OutcomeApproved))
	assert.True(t, gov.approved["req-1"])
	assert.True(t, gov.approved["req-2"])
	assert.Len(t, gov.grants, 2, "a failed notification never triggers another grant")
	assert.Equal(t, []string{"req-1", "req-2"}, notifier.notified)
	assert.Equal(t, 2, logs.FilterMessage("Failed to send approval notification").Len())
	for _, result := range summary.Results {
		assert.False(t, result.Notified)
		assert.NoError(t, result.Err)
	}
}

func TestProcessPendingTwiceConverges(t *testing.T) {
	gov := newMockGovernance(pending("req-1"), pending("req-2"))
	notifier := &mockNotifier{}
	r := New(gov, policy.ApproveAll{Comment: comment}, notifier, zap.NewNop())

	first := r.ProcessPending(context.Background(), domainID, projectID)
	second := r.ProcessPending(context.Background(), domainID, projectID)

	assert.Equal(t, 2, first.Count(OutcomeApproved))
	assert.Empty(t, second.Results)
	assert.Len(t, notifier.notified, 2, "each approval is notified once")
}

func TestProcessPendingAlreadyApprovedIsNotNotified(t *testing.T) {
	gov := newMockGovernance(pending("req-1"))
	// Approved by a concurrent invocation after this pass listed it.
	gov.approved["req-1"] = true
	notifier := &mockNotifier{}
	r := New(&staleGovernance{gov}, policy.ApproveAll{Comment: comment}, notifier, zap.NewNop())

	summary := r.ProcessPending(context.Background(), domainID, projectID)

	assert.Equal(t, []Outcome{OutcomeAlreadyApproved}, outcomes(summary))
	assert.Empty(t, notifier.notified)
	assert.False(t, summary.Failed())
}

// staleGovernance lists requests as they were before any grant.
type staleGovernance struct {
	*mockGovernance
}

func (s *staleGovernance) ListPending(ctx context.Context, domainID, projectID string) ([]subscriptions.Request, error) {
	return s.requests, nil
}

func TestProcessPendingDefersAndSkips(t *testing.T) {
	approved := pending("req-2")
	approved.Status = subscriptions.StatusApproved
	noID := pending("")

	gov := newMockGovernance(pending("req-1"), approved, noID, pending("req-4"))
	notifier := &mockNotifier{}
	p := policy.Func(func(req subscriptions.Request) subscriptions.Decision {
		if req.ID == "req-4" {
			return subscriptions.Defer(req.ID, "needs review")
		}
		return subscriptions.Approve(req.ID, comment)
	})
	r := New(gov, p, notifier, zap.NewNop())

	summary := r.ProcessPending(context.Background(), domainID, projectID)

	assert.Equal(t, []Outcome{OutcomeApproved, OutcomeSkipped, OutcomeSkipped, OutcomeDeferred}, outcomes(summary))
	assert.Equal(t, "needs review", summary.Results[3].Justification)
	assert.ErrorIs(t, summary.Results[2].Err, governance.ErrMissingIdentifier)
	require.Len(t, gov.grants, 1, "only the approved pending request reaches governance")
	assert.Equal(t, "req-1", gov.grants[0].requestID)
	assert.Equal(t, []string{"req-1"}, notifier.notified)
}

func TestProcessPendingProcessesPartialListing(t *testing.T) {
	gov := newMockGovernance(pending("req-1"), pending("req-2"))
	gov.listErr = governance.ErrorListingRequests(domainID, projectID, &smithy.GenericAPIError{Code: "ThrottlingException"})
	core, logs := observer.New(zap.ErrorLevel)
	r := New(gov, policy.ApproveAll{Comment: comment}, &mockNotifier{}, zap.New(core))

	summary := r.ProcessPending(context.Background(), domainID, projectID)

	assert.ErrorIs(t, summary.ListErr, governance.ErrListingRequests)
	assert.Equal(t, 2, summary.Count(OutcomeApproved))
	assert.True(t, summary.Failed())
	assert.Equal(t, 1, logs.FilterMessage("Failed to list pending subscription requests").Len())
}

func TestProcessPendingEmpty(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gov := newMockGovernance()
	r := New(gov, policy.ApproveAll{Comment: comment}, &mockNotifier{}, zap.New(core))

	summary := r.ProcessPending(context.Background(), domainID, projectID)

	assert.Empty(t, summary.Results)
	assert.Empty(t, gov.grants)
	assert.Equal(t, 1, logs.FilterMessage("No pending subscription requests found").Len())
}

func TestProcessPendingRecordsSummary(t *testing.T) {
	gov := newMockGovernance(pending("req-1"))
	ok := &mockRecorder{}
	broken := &mockRecorder{err: errors.New("bucket missing")}
	r := New(gov, policy.ApproveAll{Comment: comment}, &mockNotifier{}, zap.NewNop(), broken, ok)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "lambda-req-1"})
	summary := r.ProcessPending(ctx, domainID, projectID)

	require.Len(t, broken.summaries, 1)
	require.Len(t, ok.summaries, 1, "a failing recorder does not stop the others")
	assert.Equal(t, "lambda-req-1", summary.RunID)
	assert.Equal(t, summary, ok.summaries[0])
}

func TestRunIDFallsBackToUUID(t *testing.T) {
	id := runID(context.Background())

	assert.Len(t, id, 36)
	assert.NotEqual(t, id, runID(context.Background()))
}
