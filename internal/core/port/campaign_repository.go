package port

import (
	"context"
	"time"

	"mailburst/internal/core/domain"
)

// NewRecipient is the input shape for bulk recipient enqueue. Email must
// already be lowercased and deduplicated by the caller.
type NewRecipient struct {
	LeadID       *int64
	Email        string
	Name         string
	MessageToken string
}

// RecipientOutcome records the result of one send attempt for a claimed
// recipient. Err is empty on success.
type RecipientOutcome struct {
	RecipientID int64
	Sent        bool
	Err         string
}

// CampaignRepository is the persistence port for campaigns and their
// recipient queue. It is an outbound port in hexagonal architecture.
// Implementations must be concurrency-safe; ClaimPending in particular must
// atomically move rows pending -> in_flight so that two concurrent dispatch
// invocations never claim the same row.
type CampaignRepository interface {
	// CreateCampaignWithRecipients inserts the campaign and its recipient
	// rows in one transaction. If any recipient insert fails the campaign
	// row is rolled back: a campaign with zero recipients must never be
	// observably persisted.
	CreateCampaignWithRecipients(ctx context.Context, c *domain.Campaign, recipients []NewRecipient) error
	// GetCampaign returns a campaign by id scoped to its owner, or nil when
	// absent.
	GetCampaign(ctx context.Context, id int64, userID int64, orgID *int64) (*domain.Campaign, error)
	// ListCampaigns returns a page of campaigns for the owner plus the total
	// count.
	ListCampaigns(ctx context.Context, userID int64, orgID *int64, offset, limit int) ([]domain.Campaign, int, error)
	// CountCampaigns returns the lifetime number of campaigns for quota
	// accounting. Organization-less users are counted by user id.
	CountCampaigns(ctx context.Context, userID int64, orgID *int64) (int, error)
	// SetStatus persists a campaign status transition. Idempotent: writing
	// the status a campaign already has is a no-op.
	SetStatus(ctx context.Context, campaignID int64, status string) error

	// ClaimPending atomically claims up to limit pending recipients of the
	// campaign by setting them in_flight, and returns the claimed rows.
	ClaimPending(ctx context.Context, campaignID int64, limit int) ([]domain.Recipient, error)
	// SettleOutcomes writes per-recipient send results. Each row is updated
	// independently; one failure does not roll back another row's update.
	SettleOutcomes(ctx context.Context, outcomes []RecipientOutcome, sentAt time.Time) error
	// RequeueStale moves in_flight rows older than the given age back to
	// pending, recovering claims abandoned by a dead invocation. Returns
	// the number of rows requeued.
	RequeueStale(ctx context.Context, campaignID int64, olderThan time.Duration) (int, error)
	// ResetFailed moves a campaign's failed recipients back to pending and
	// returns how many rows were reset.
	ResetFailed(ctx context.Context, campaignID int64) (int, error)
	// CountRecipients returns the campaign's recipient rows grouped by
	// status.
	CountRecipients(ctx context.Context, campaignID int64) (domain.RecipientCounts, error)
	// ListRecipients returns all recipient rows of a campaign for the detail
	// view.
	ListRecipients(ctx context.Context, campaignID int64) ([]domain.Recipient, error)
}
