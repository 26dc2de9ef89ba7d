package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mailburst/internal/core/domain"
	"mailburst/internal/core/port"
)

// DirectoryRepository implements port.Directory: read-only access to the CRM
// side of the product (templates, leads, groups, sender profiles, tiers,
// per-organization SMTP settings).
type DirectoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository returns a new repository instance.
func NewDirectoryRepository(pool *pgxpool.Pool) *DirectoryRepository {
	return &DirectoryRepository{pool: pool}
}

// GetTemplate returns a template by id scoped to its owner, or nil when
// absent.
func (r *DirectoryRepository) GetTemplate(ctx context.Context, id int64, userID int64, orgID *int64) (*domain.Template, error) {
	query := `SELECT id, user_id, org_id, name, subject, html_body, created_at, updated_at
FROM templates WHERE id = $1 AND `
	args := []any{id}
	if orgID != nil {
		query += `org_id = $2`
		args = append(args, *orgID)
	} else {
		query += `user_id = $2 AND org_id IS NULL`
		args = append(args, userID)
	}

	var t domain.Template
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.UserID, &t.OrgID, &t.Name, &t.Subject, &t.HTMLBody, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const leadColumns = `id, name, email, company, phone`

func scanLead(row pgx.CollectableRow) (domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Company, &l.Phone)
	return l, err
}

// GetLeadsByIDs returns leads matching ids in input order. Unknown ids are
// skipped.
func (r *DirectoryRepository) GetLeadsByIDs(ctx context.Context, ids []int64) ([]domain.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads
WHERE id = ANY($1) ORDER BY array_position($1, id)`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanLead)
}

// GetLeadsByGroupIDs returns all leads that belong to any of the groups.
func (r *DirectoryRepository) GetLeadsByGroupIDs(ctx context.Context, ids []int64) ([]domain.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT ON (l.id) l.id, l.name, l.email, l.company, l.phone
FROM leads l
JOIN group_members gm ON gm.lead_id = l.id
WHERE gm.group_id = ANY($1)
ORDER BY l.id`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanLead)
}

// GetLead returns a single lead or nil when absent.
func (r *DirectoryRepository) GetLead(ctx context.Context, id int64) (*domain.Lead, error) {
	var l domain.Lead
	err := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Email, &l.Company, &l.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetSenderProfile returns the user's signature data or nil when the user
// does not exist.
func (r *DirectoryRepository) GetSenderProfile(ctx context.Context, userID int64) (*domain.SenderProfile, error) {
	var p domain.SenderProfile
	err := r.pool.QueryRow(ctx, `SELECT coalesce(name,''), coalesce(email,''), coalesce(phone,''),
coalesce(position,''), coalesce(company,'') FROM users WHERE id = $1`, userID).
		Scan(&p.Name, &p.Email, &p.Phone, &p.Position, &p.Company)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrgTier returns the organization's subscription tier. Unknown
// organizations get the free tier.
func (r *DirectoryRepository) GetOrgTier(ctx context.Context, orgID int64) (string, error) {
	var tier string
	err := r.pool.QueryRow(ctx, `SELECT tier FROM organizations WHERE id = $1`, orgID).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TierFree, nil
	}
	if err != nil {
		return "", err
	}
	return tier, nil
}

// GetSMTPSettings returns the organization's stored SMTP credentials, or
// nil when it has none and the global fallback applies.
func (r *DirectoryRepository) GetSMTPSettings(ctx context.Context, orgID int64) (*port.SMTPConfig, error) {
	var cfg port.SMTPConfig
	err := r.pool.QueryRow(ctx, `SELECT host, port, username, password, from_email, coalesce(from_name,''), ssl
FROM smtp_settings WHERE org_id = $1`, orgID).
		Scan(&cfg.Host, &cfg.Port, &cfg.Username, &cfg.Password, &cfg.From, &cfg.FromName, &cfg.SSL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

var _ port.Directory = (*DirectoryRepository)(nil)
