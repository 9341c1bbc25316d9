package listener

import (
	"autoapprove/internal/relay"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type call struct {
	domainID  string
	projectID string
}

type mockProcessor struct {
	calls []call
}

func (m *mockProcessor) ProcessPending(ctx context.Context, domainID, projectID string) relay.Summary {
	m.calls = append(m.calls, call{domainID, projectID})
	return relay.Summary{DomainID: domainID, ProjectID: projectID}
}

func TestHandleTriggersPassForPendingRequest(t *testing.T) {
	processor := &mockProcessor{}
	l := New("dzd_test", "prj_owner", processor, zap.NewNop())

	raw := json.RawMessage(`{
		"source": "aws.datazone",
		"detail-type": "Subscription Request Created",
		"detail": {
			"metadata": {"id": "req-1", "domain": "dzd_test"},
			"data": {"status": "PENDING"}
		}
	}`)

	assert.True(t, l.Handle(context.Background(), raw))
	assert.Equal(t, []call{{"dzd_test", "prj_owner"}}, processor.calls)
}

func TestHandleDuplicateDeliveryTriggersAnotherPass(t *testing.T) {
	processor := &mockProcessor{}
	l := New("dzd_test", "prj_owner", processor, zap.NewNop())

	raw := json.RawMessage(`{"source": "aws.datazone", "detail-type": "Subscription Request Created", "detail": {"status": "PENDING"}}`)

	l.Handle(context.Background(), raw)
	l.Handle(context.Background(), raw)

	assert.Len(t, processor.calls, 2)
}

func TestHandleDiscardsNonMatchingEvents(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `{"source": `},
		{"not an object", `[]`},
		{"empty", `{}`},
		{"other source", `{"source": "aws.s3", "detail-type": "Subscription Request Created", "detail": {"status": "PENDING"}}`},
		{"other detail type", `{"source": "aws.datazone", "detail-type": "Subscription Request Accepted", "detail": {"status": "PENDING"}}`},
		{"accepted status", `{"source": "aws.datazone", "detail-type": "Subscription Request Created", "detail": {"data": {"status": "ACCEPTED"}}}`},
		{"other domain", `{"source": "aws.datazone", "detail-type": "Subscription Request Created", "detail": {"status": "PENDING", "metadata": {"domain": "dzd_other"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &mockProcessor{}
			core, logs := observer.New(zap.DebugLevel)
			l := New("dzd_test", "prj_owner", processor, zap.New(core))

			assert.False(t, l.Handle(context.Background(), json.RawMessage(tt.raw)))
			assert.Empty(t, processor.calls)
			assert.Equal(t, 1, logs.Len())
		})
	}
}
