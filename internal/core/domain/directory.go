package domain

import "time"

// Template is an HTML email template owned by a user or organization. The
// subject and body may contain {{placeholder}} tokens for recipient fields
// (name, company, email, phone) and sender fields (sender_name,
// sender_position, sender_company, sender_email, sender_phone).
type Template struct {
	ID        int64
	UserID    int64
	OrgID     *int64
	Name      string
	Subject   string
	HTMLBody  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Lead is a contact that can be targeted by a campaign, either directly or
// through group membership.
type Lead struct {
	ID      int64
	Name    string
	Email   string
	Company string
	Phone   string
}

// Group is a named collection of leads.
type Group struct {
	ID   int64
	Name string
}

// SenderProfile carries the sending user's signature data. All fields are
// optional; missing values render as empty strings.
type SenderProfile struct {
	Name     string
	Email    string
	Phone    string
	Position string
	Company  string
}
