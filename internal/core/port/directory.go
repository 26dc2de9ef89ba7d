package port

import (
	"context"

	"mailburst/internal/core/domain"
)

// Directory is the read-only port to the CRM side of the product: templates,
// leads, groups and sender profiles. The dispatch core never writes through
// this port.
type Directory interface {
	// GetTemplate returns a template by id, or nil when absent or not owned
	// by the caller.
	GetTemplate(ctx context.Context, id int64, userID int64, orgID *int64) (*domain.Template, error)
	// GetLeadsByIDs returns the leads matching ids, preserving input order.
	// Unknown ids are silently skipped.
	GetLeadsByIDs(ctx context.Context, ids []int64) ([]domain.Lead, error)
	// GetLeadsByGroupIDs returns all leads that are members of any of the
	// groups.
	GetLeadsByGroupIDs(ctx context.Context, ids []int64) ([]domain.Lead, error)
	// GetLead returns a single lead or nil when absent.
	GetLead(ctx context.Context, id int64) (*domain.Lead, error)
	// GetSenderProfile returns the sending user's signature data, or nil
	// when the user has no profile.
	GetSenderProfile(ctx context.Context, userID int64) (*domain.SenderProfile, error)
	// GetOrgTier returns the subscription tier name for an organization.
	GetOrgTier(ctx context.Context, orgID int64) (string, error)
}
