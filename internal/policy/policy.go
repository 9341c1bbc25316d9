package policy

import (
	"autoapprove/internal/config"
	"autoapprove/internal/subscriptions"
	"fmt"
	"slices"
	"strings"
)

// Policy decides whether a pending request is approved automatically. Implementations
// must be pure: no I/O and no mutation of the request.
type Policy interface {
	Evaluate(req subscriptions.Request) subscriptions.Decision
}

// Func adapts an ordinary function to the Policy interface.
type Func func(req subscriptions.Request) subscriptions.Decision

func (f Func) Evaluate(req subscriptions.Request) subscriptions.Decision {
	return f(req)
}

// ApproveAll approves every request it is given.
type ApproveAll struct {
	Comment string
}

func (p ApproveAll) Evaluate(req subscriptions.Request) subscriptions.Decision {
	return subscriptions.Approve(req.ID, p.Comment)
}

// Rules approves a request only when it passes the deny list and every non-empty allow list.
// Anything else is deferred to a human approver.
type Rules struct {
	Comment                  string
	AllowedRequesterProjects []string
	DeniedRequesterProjects  []string
	AllowedEntityTypes       []string
	AllowedOwnerProjects     []string
}

func (p Rules) Evaluate(req subscriptions.Request) subscriptions.Decision {
	project := req.Requester.ProjectID

	if slices.Contains(p.DeniedRequesterProjects, project) {
		return subscriptions.Defer(req.ID, fmt.Sprintf("requester project %q is denied", project))
	}

	if len(p.AllowedRequesterProjects) > 0 && !slices.Contains(p.AllowedRequesterProjects, project) {
		return subscriptions.Defer(req.ID, fmt.Sprintf("requester project %q is not allowed", project))
	}

	if len(p.AllowedEntityTypes) > 0 && !containsFold(p.AllowedEntityTypes, req.Asset.EntityType) {
		return subscriptions.Defer(req.ID, fmt.Sprintf("asset type %q is not allowed", req.Asset.EntityType))
	}

	if len(p.AllowedOwnerProjects) > 0 && !slices.Contains(p.AllowedOwnerProjects, req.Asset.OwnerProjectID) {
		return subscriptions.Defer(req.ID, fmt.Sprintf("owner project %q is not allowed", req.Asset.OwnerProjectID))
	}

	return subscriptions.Approve(req.ID, p.Comment)
}

// FromConfig builds the policy selected by the POLICY_MODE setting. Validation of the mode
// happens in config; an unknown mode here falls back to deferring everything.
func FromConfig(cfg config.Policy, comment string) Policy {
	switch cfg.Mode {
	case config.PolicyModeApproveAll:
		return ApproveAll{Comment: comment}
	case config.PolicyModeRules:
		return Rules{
			Comment:                  comment,
			AllowedRequesterProjects: cfg.AllowedRequesterProjects,
			DeniedRequesterProjects:  cfg.DeniedRequesterProjects,
			AllowedEntityTypes:       cfg.AllowedEntityTypes,
			AllowedOwnerProjects:     cfg.AllowedOwnerProjects,
		}
	default:
		mode := cfg.Mode
		return Func(func(req subscriptions.Request) subscriptions.Decision {
			return subscriptions.Defer(req.ID, fmt.Sprintf("unknown policy mode %q", mode))
		})
	}
}

func containsFold(values []string, s string) bool {
	return slices.ContainsFunc(values, func(v string) bool {
		return strings.EqualFold(v, s)
	})
}
