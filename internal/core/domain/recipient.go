package domain

import "time"

// Recipient statuses. A row is claimed by moving it pending -> in_flight
// before the send attempt, which makes concurrent dispatch invocations safe:
// two invocations can never claim the same row because the claim is a
// conditional update filtered on status = pending.
const (
	RecipientPending  = "pending"
	RecipientInFlight = "in_flight"
	RecipientSent     = "sent"
	RecipientFailed   = "failed"
)

// Recipient is one (campaign, email) queue entry with independent delivery
// status. Email is always stored lowercased; there is exactly one row per
// (campaign, email) pair. LeadID is a soft back-reference to the source lead
// and survives as nil after lead deletion.
type Recipient struct {
	ID           int64
	CampaignID   int64
	UserID       int64
	OrgID        *int64
	LeadID       *int64
	Email        string
	Name         string
	Status       string
	LastError    *string
	MessageToken string
	SentAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecipientCounts aggregates a campaign's recipient rows by status.
type RecipientCounts struct {
	Pending  int
	InFlight int
	Sent     int
	Failed   int
}

// Total returns the number of recipient rows in the campaign.
func (c RecipientCounts) Total() int {
	return c.Pending + c.InFlight + c.Sent + c.Failed
}

// Settled reports whether no work remains: nothing pending and nothing
// claimed by an in-flight batch.
func (c RecipientCounts) Settled() bool {
	return c.Pending == 0 && c.InFlight == 0
}
