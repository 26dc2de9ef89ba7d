package port

import "context"

// Message is a single outgoing email. MessageToken is threaded into the
// Message-ID header so delivery can be correlated with the recipient row.
type Message struct {
	From         string
	FromName     string
	To           string
	ToName       string
	ReplyTo      string
	Subject      string
	HTML         string
	MessageToken string
}

// Mailer is the SMTP transport collaborator. Send is a single call with its
// own error taxonomy; the dispatcher records any returned error verbatim on
// the recipient row and never retries inside the same invocation.
type Mailer interface {
	Send(ctx context.Context, orgID *int64, msg Message) error
}

// SMTPConfig is a resolved SMTP endpoint. SSL selects implicit TLS
// (typically port 465) as opposed to STARTTLS.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	SSL      bool
}

// SMTPConfigResolver decides which SMTP credentials to use for an
// organization. Implementations fall back to the globally configured
// endpoint when the organization has no stored settings; the policy lives
// behind this port, not in the dispatcher.
type SMTPConfigResolver interface {
	ResolveSMTPConfig(ctx context.Context, orgID *int64) (SMTPConfig, error)
}
