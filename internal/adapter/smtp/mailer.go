// Package smtp delivers campaign email over SMTP using gomail. SMTP
// credentials resolve per organization with a global fallback: an
// organization with stored settings sends through its own endpoint,
// everyone else through the endpoint configured in the environment.
package smtp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-gomail/gomail"

	"mailburst/internal/config/configs"
	"mailburst/internal/core/port"
)

// SettingsStore is the narrow read interface this adapter needs from the
// database: the organization's stored SMTP credentials, nil when it has
// none.
type SettingsStore interface {
	GetSMTPSettings(ctx context.Context, orgID int64) (*port.SMTPConfig, error)
}

const cacheTTL = time.Hour

type cachedConfig struct {
	cfg      port.SMTPConfig
	loadedAt time.Time
}

// Mailer implements port.Mailer and port.SMTPConfigResolver. Resolved
// per-organization configs are cached for an hour so the dispatcher does
// not hit the settings table for every recipient.
type Mailer struct {
	fallback port.SMTPConfig
	store    SettingsStore

	mu    sync.RWMutex
	cache map[int64]cachedConfig
}

// NewMailer builds the transport from the global fallback config and the
// per-organization settings store.
func NewMailer(cfg configs.SMTP, store SettingsStore) *Mailer {
	return &Mailer{
		fallback: port.SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
			FromName: cfg.FromName,
			SSL:      cfg.SSL,
		},
		store: store,
		cache: make(map[int64]cachedConfig),
	}
}

// ResolveSMTPConfig returns the SMTP endpoint for an organization: its
// stored settings when present, otherwise the global fallback. A nil orgID
// always resolves to the fallback.
func (m *Mailer) ResolveSMTPConfig(ctx context.Context, orgID *int64) (port.SMTPConfig, error) {
	if orgID == nil {
		return m.fallback, nil
	}

	m.mu.RLock()
	cached, ok := m.cache[*orgID]
	m.mu.RUnlock()
	if ok && time.Since(cached.loadedAt) < cacheTTL {
		return cached.cfg, nil
	}

	stored, err := m.store.GetSMTPSettings(ctx, *orgID)
	if err != nil {
		return port.SMTPConfig{}, err
	}
	cfg := m.fallback
	if stored != nil {
		cfg = *stored
		if cfg.FromName == "" {
			cfg.FromName = m.fallback.FromName
		}
	}

	m.mu.Lock()
	m.cache[*orgID] = cachedConfig{cfg: cfg, loadedAt: time.Now()}
	m.mu.Unlock()
	return cfg, nil
}

// Send delivers one message. Dial errors and rejection errors are returned
// as-is; the dispatcher records them verbatim on the recipient row.
func (m *Mailer) Send(ctx context.Context, orgID *int64, msg port.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg, err := m.ResolveSMTPConfig(ctx, orgID)
	if err != nil {
		return fmt.Errorf("resolve smtp config: %w", err)
	}

	from := msg.From
	if from == "" {
		from = cfg.From
	}
	fromName := msg.FromName
	if fromName == "" {
		fromName = cfg.FromName
	}

	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", from, fromName)
	gm.SetAddressHeader("To", msg.To, msg.ToName)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	if msg.MessageToken != "" {
		gm.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", msg.MessageToken, cfg.Host))
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.SSL
	return d.DialAndSend(gm)
}

var (
	_ port.Mailer             = (*Mailer)(nil)
	_ port.SMTPConfigResolver = (*Mailer)(nil)
)
