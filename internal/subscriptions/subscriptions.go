package subscriptions

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a subscription request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Outcome is what the approval policy decided for a request.
type Outcome string

const (
	OutcomeApprove Outcome = "APPROVE"
	OutcomeDefer   Outcome = "DEFER"
)

// Asset describes the governed listing a consumer asked to subscribe to.
type Asset struct {
	ListingID        string
	Name             string
	EntityID         string
	EntityType       string
	OwnerProjectID   string
	OwnerProjectName string
}

// Requester identifies who asked for access.
type Requester struct {
	ProjectID   string
	ProjectName string
	CreatedBy   string
}

// Request is a consumer's ask for access to a governed data asset.
type Request struct {
	ID                string
	DomainID          string
	Status            Status
	Asset             Asset
	Requester         Requester
	ApproverProjectID string
	Reason            string
	CreatedAt         time.Time
}

func (r Request) IsPending() bool {
	return r.Status == StatusPending
}

// AssetName returns a printable name for the requested asset.
func (r Request) AssetName() string {
	switch {
	case r.Asset.Name != "":
		return r.Asset.Name
	case r.Asset.ListingID != "":
		return r.Asset.ListingID
	default:
		return "Unknown asset"
	}
}

// RequesterName returns a printable name for the requesting principal.
func (r Request) RequesterName() string {
	switch {
	case r.Requester.ProjectName != "" && r.Requester.ProjectID != "":
		return fmt.Sprintf("%s (%s)", r.Requester.ProjectName, r.Requester.ProjectID)
	case r.Requester.ProjectID != "":
		return r.Requester.ProjectID
	case r.Requester.CreatedBy != "":
		return r.Requester.CreatedBy
	default:
		return "Unknown requester"
	}
}

// Decision is the transient result of evaluating one request. It is never persisted here.
type Decision struct {
	RequestID     string
	Outcome       Outcome
	Justification string
}

func Approve(requestID, justification string) Decision {
	return Decision{RequestID: requestID, Outcome: OutcomeApprove, Justification: justification}
}

func Defer(requestID, justification string) Decision {
	return Decision{RequestID: requestID, Outcome: OutcomeDefer, Justification: justification}
}

func (d Decision) IsApprove() bool {
	return d.Outcome == OutcomeApprove
}
