package governance

import (
	"autoapprove/internal/subscriptions"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/datazone/types"
)

// StatusFromDataZone maps DataZone's request status onto the domain status.
// DataZone reports approval as ACCEPTED.
func StatusFromDataZone(status types.SubscriptionRequestStatus) subscriptions.Status {
	switch status {
	case types.SubscriptionRequestStatusPending:
		return subscriptions.StatusPending
	case types.SubscriptionRequestStatusAccepted:
		return subscriptions.StatusApproved
	case types.SubscriptionRequestStatusRejected:
		return subscriptions.StatusRejected
	default:
		return subscriptions.Status(status)
	}
}

// RequestFromSummary converts a DataZone list item into a domain request. Only the
// first subscribed listing and principal are used; DataZone creates one of each per request.
func RequestFromSummary(s types.SubscriptionRequestSummary) subscriptions.Request {
	req := subscriptions.Request{
		ID:        aws.ToString(s.Id),
		DomainID:  aws.ToString(s.DomainId),
		Status:    StatusFromDataZone(s.Status),
		Reason:    aws.ToString(s.RequestReason),
		CreatedAt: aws.ToTime(s.CreatedAt),
		Requester: subscriptions.Requester{
			CreatedBy: aws.ToString(s.CreatedBy),
		},
	}

	if len(s.SubscribedListings) > 0 {
		listing := s.SubscribedListings[0]
		req.Asset = subscriptions.Asset{
			ListingID:        aws.ToString(listing.Id),
			Name:             aws.ToString(listing.Name),
			OwnerProjectID:   aws.ToString(listing.OwnerProjectId),
			OwnerProjectName: aws.ToString(listing.OwnerProjectName),
		}
		if item, ok := listing.Item.(*types.SubscribedListingItemMemberAssetListing); ok {
			req.Asset.EntityID = aws.ToString(item.Value.EntityId)
			req.Asset.EntityType = aws.ToString(item.Value.EntityType)
		}
		req.ApproverProjectID = req.Asset.OwnerProjectID
	}

	for _, principal := range s.SubscribedPrincipals {
		if project, ok := principal.(*types.SubscribedPrincipalMemberProject); ok {
			req.Requester.ProjectID = aws.ToString(project.Value.Id)
			req.Requester.ProjectName = aws.ToString(project.Value.Name)
			break
		}
	}

	return req
}
