package port

import (
	"context"

	"mailburst/internal/core/domain"
)

// Identity carries the authenticated caller. Authentication itself is
// handled upstream; the core only scopes queries by it.
type Identity struct {
	UserID int64
	OrgID  *int64
}

// CreateCampaignReq is the campaign creation input: a template plus explicit
// leads and/or groups to resolve into recipients.
type CreateCampaignReq struct {
	TemplateID int64
	LeadIDs    []int64
	GroupIDs   []int64
}

// CreateCampaignResp reports the created campaign and how many recipients
// were enqueued.
type CreateCampaignResp struct {
	CampaignID int64
	Name       string
	Recipients int
}

// BatchResult aggregates one dispatch invocation. Remaining is the pending
// count after the batch settled; the driving client polls until it reaches
// zero.
type BatchResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// CampaignDetails is the campaign detail view: the entity plus live
// recipient counts and per-recipient rows with their stored error strings.
type CampaignDetails struct {
	Campaign   domain.Campaign
	Stats      domain.RecipientCounts
	Recipients []domain.Recipient
}

// QuotaStatus is the quota guard snapshot for an organization.
type QuotaStatus struct {
	Tier                  string `json:"tier"`
	MaxCampaigns          int    `json:"max_campaigns"`
	MaxRecipientsPerDay   int    `json:"max_recipients_per_day"`
	CanCreateCampaign     bool   `json:"can_create_campaign"`
	CanSendEmails         bool   `json:"can_send_emails"`
	RemainingEmails       int    `json:"remaining_emails"`
	RemainingCampaigns    int    `json:"remaining_campaigns"`
	CampaignsCreatedToday int    `json:"campaigns_created_today"`
}

// CampaignUseCase is the primary port into the dispatch core.
type CampaignUseCase interface {
	// CreateCampaign resolves recipients, checks the quota guard and
	// persists the campaign with its queue in one transaction. Returns
	// ErrTemplateNotFound, ErrNoRecipients or ErrQuotaExceeded on the
	// corresponding precondition failures; in those cases no campaign row
	// is persisted.
	CreateCampaign(ctx context.Context, id Identity, req CreateCampaignReq) (*CreateCampaignResp, error)
	// ProcessBatch claims and sends one bounded batch of pending recipients
	// and recomputes campaign status when the queue drains. Safe to call on
	// a terminal campaign: it short-circuits with Remaining 0.
	ProcessBatch(ctx context.Context, id Identity, campaignID int64) (*BatchResult, error)
	// RetryFailed resets the campaign's failed recipients to pending and
	// reopens the campaign. Returns the number of rows reset.
	RetryFailed(ctx context.Context, id Identity, campaignID int64) (int, error)
	// GetCampaign returns the detail view with live stats.
	GetCampaign(ctx context.Context, id Identity, campaignID int64) (*CampaignDetails, error)
	// ListCampaigns returns a page of the caller's campaigns and the total
	// count.
	ListCampaigns(ctx context.Context, id Identity, page, pageSize int) ([]domain.Campaign, int, error)
	// GetQuota returns the quota guard snapshot for the caller's
	// organization.
	GetQuota(ctx context.Context, id Identity) (*QuotaStatus, error)
}
