package port

import (
	"context"
	"time"
)

// UsageRepository tracks per (organization, calendar day) counters used by
// the quota guard. Increments must be atomic upserts: dispatch invocations
// are stateless and can run concurrently for different campaigns.
type UsageRepository interface {
	// AddEmailsSent adds n to today's emails-sent counter for the
	// organization.
	AddEmailsSent(ctx context.Context, orgID int64, day time.Time, n int) error
	// AddCampaignCreated increments today's campaigns-created counter.
	AddCampaignCreated(ctx context.Context, orgID int64, day time.Time) error
	// EmailsSentOn returns the emails-sent counter for the given day.
	EmailsSentOn(ctx context.Context, orgID int64, day time.Time) (int, error)
	// CampaignsCreatedOn returns the campaigns-created counter for the
	// given day.
	CampaignsCreatedOn(ctx context.Context, orgID int64, day time.Time) (int, error)
}
