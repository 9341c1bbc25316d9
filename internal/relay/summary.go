package relay

import (
	"autoapprove/internal/governance"
	"time"
)

type Outcome string

const (
	OutcomeApproved        Outcome = "approved"
	OutcomeAlreadyApproved Outcome = "already-approved"
	OutcomeDeferred        Outcome = "deferred"
	OutcomeSkipped         Outcome = "skipped"
	OutcomeFailed          Outcome = "failed"
)

// Result records what happened to one request during a pass.
type Result struct {
	RequestID     string
	AssetName     string
	Outcome       Outcome
	Justification string
	Class         governance.Class
	Err           error
	Notified      bool
}

// Summary describes one processing pass in listing order.
type Summary struct {
	RunID      string
	DomainID   string
	ProjectID  string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
	ListErr    error
}

func (s Summary) Count(outcome Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Failed reports whether anything in the pass, including listing, failed.
func (s Summary) Failed() bool {
	return s.ListErr != nil || s.Count(OutcomeFailed) > 0
}
