package domain

import "time"

// Campaign statuses. A campaign starts in StatusRunning and converges to a
// terminal status (completed or failed) once no pending recipients remain.
// Terminal statuses are never left again except through an explicit
// retry-failed operation, which reopens the campaign as running.
const (
	StatusDraft     = "draft"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Campaign represents one send operation against a template and a resolved
// recipient set. TemplateID is nullable: deleting a template must not delete
// the campaigns sent with it, so the reference is severed instead.
type Campaign struct {
	ID         int64
	UserID     int64
	OrgID      *int64
	TemplateID *int64
	Name       string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Terminal reports whether the campaign reached a final status.
func (c *Campaign) Terminal() bool {
	return c.Status == StatusCompleted || c.Status == StatusFailed
}

// TerminalStatus computes the final status of a campaign from its recipient
// counts. A campaign where every attempted recipient failed is failed; any
// successful send makes it completed. The asymmetry (one success among many
// failures still reports completed) is deliberate product behaviour.
func TerminalStatus(sent, failed int) string {
	if sent == 0 && failed > 0 {
		return StatusFailed
	}
	return StatusCompleted
}
