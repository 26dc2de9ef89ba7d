package port

import "errors"

// Sentinel errors shared across ports. Adapters map these to transport
// status codes; the usecase wraps them with context via fmt.Errorf("%w").
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrNoRecipients     = errors.New("no recipients resolved")
	ErrQuotaExceeded    = errors.New("quota exceeded")
)
