package events

import (
	"encoding/json"
	"strings"
)

const (
	DataZoneSource                 = "aws.datazone"
	SubscriptionRequestCreatedType = "Subscription Request Created"
	PendingStatus                  = "PENDING"
)

// SubscriptionRequestEvent is the EventBridge envelope DataZone emits when a consumer asks
// for access to a listing. Only the fields used for filtering are decoded.
type SubscriptionRequestEvent struct {
	ID         string `json:"id"`
	DetailType string `json:"detail-type"`
	Source     string `json:"source"`
	Detail     Detail `json:"detail"`
}

type Detail struct {
	Status    string   `json:"status"`
	RequestID string   `json:"requestId"`
	Metadata  Metadata `json:"metadata"`
	Data      Data     `json:"data"`
}

type Metadata struct {
	ID              string `json:"id"`
	Domain          string `json:"domain"`
	OwningProjectID string `json:"owningProjectId"`
}

type Data struct {
	Status string `json:"status"`
}

// Parse decodes a raw EventBridge payload.
func Parse(raw json.RawMessage) (SubscriptionRequestEvent, error) {
	var event SubscriptionRequestEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return SubscriptionRequestEvent{}, ErrorMalformedEvent(err)
	}
	return event, nil
}

// Status reads detail.status, falling back to detail.data.status where DataZone puts it.
func (e SubscriptionRequestEvent) Status() string {
	if e.Detail.Status != "" {
		return e.Detail.Status
	}
	return e.Detail.Data.Status
}

func (e SubscriptionRequestEvent) RequestID() string {
	if e.Detail.RequestID != "" {
		return e.Detail.RequestID
	}
	return e.Detail.Metadata.ID
}

func (e SubscriptionRequestEvent) DomainID() string {
	return e.Detail.Metadata.Domain
}

func (e SubscriptionRequestEvent) IsDataZone() bool {
	return e.Source == DataZoneSource
}

func (e SubscriptionRequestEvent) IsSubscriptionRequestCreated() bool {
	return e.DetailType == SubscriptionRequestCreatedType
}

func (e SubscriptionRequestEvent) IsPending() bool {
	return strings.EqualFold(e.Status(), PendingStatus)
}

// Matches reports whether the event should trigger a processing pass.
func (e SubscriptionRequestEvent) Matches() bool {
	return e.IsDataZone() && e.IsSubscriptionRequestCreated() && e.IsPending()
}

// IsForDomain reports whether the event belongs to domainID. An event without a domain
// is not rejected here.
func (e SubscriptionRequestEvent) IsForDomain(domainID string) bool {
	return e.DomainID() == "" || e.DomainID() == domainID
}
