package domain

// Plan defines a subscription tier's sending limits. MaxCampaigns is a
// lifetime ceiling on campaigns created by the organization;
// MaxRecipientsPerDay caps emails sent per calendar day. Watermark marks
// tiers whose outgoing mail carries a service footer.
type Plan struct {
	Tier                string
	MaxCampaigns        int
	MaxRecipientsPerDay int
	Watermark           bool
}

// Tier names. Unknown tiers fall back to free.
const (
	TierFree    = "free"
	TierBasic   = "basic"
	TierRegular = "regular"
	TierPro     = "pro"
)

var plans = map[string]Plan{
	TierFree:    {Tier: TierFree, MaxCampaigns: 1, MaxRecipientsPerDay: 5, Watermark: true},
	TierBasic:   {Tier: TierBasic, MaxCampaigns: 3, MaxRecipientsPerDay: 50},
	TierRegular: {Tier: TierRegular, MaxCampaigns: 5, MaxRecipientsPerDay: 100},
	TierPro:     {Tier: TierPro, MaxCampaigns: 10, MaxRecipientsPerDay: 500},
}

// PlanForTier returns the plan for a tier name, defaulting to the free plan
// for unknown tiers.
func PlanForTier(tier string) Plan {
	if p, ok := plans[tier]; ok {
		return p
	}
	return plans[TierFree]
}
