package domain

import "time"

// DailyUsage is the per (organization, calendar day) counter of emails sent
// and campaigns created. Increments are atomic upserts in the store because
// dispatch invocations are stateless and may run concurrently.
type DailyUsage struct {
	OrgID            int64
	Day              time.Time
	EmailsSent       int
	CampaignsCreated int
}

// UsageDay truncates a timestamp to the UTC calendar day used as the
// counter key.
func UsageDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
