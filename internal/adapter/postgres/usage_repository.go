package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mailburst/internal/core/port"
)

// UsageRepository implements port.UsageRepository with transactional
// upserts. Increments are atomic at the database so concurrent stateless
// dispatch invocations never lose counts.
type UsageRepository struct {
	pool *pgxpool.Pool
}

// NewUsageRepository returns a new repository instance.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

// AddEmailsSent adds n to the organization's emails-sent counter for day.
func (r *UsageRepository) AddEmailsSent(ctx context.Context, orgID int64, day time.Time, n int) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO daily_usage (org_id, day, emails_sent, campaigns_created)
VALUES ($1, $2, $3, 0)
ON CONFLICT (org_id, day) DO UPDATE SET emails_sent = daily_usage.emails_sent + EXCLUDED.emails_sent`,
		orgID, day, n)
	return err
}

// AddCampaignCreated increments the organization's campaigns-created
// counter for day.
func (r *UsageRepository) AddCampaignCreated(ctx context.Context, orgID int64, day time.Time) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO daily_usage (org_id, day, emails_sent, campaigns_created)
VALUES ($1, $2, 0, 1)
ON CONFLICT (org_id, day) DO UPDATE SET campaigns_created = daily_usage.campaigns_created + 1`,
		orgID, day)
	return err
}

// EmailsSentOn returns the emails-sent counter for the given day, zero when
// no row exists yet.
func (r *UsageRepository) EmailsSentOn(ctx context.Context, orgID int64, day time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT emails_sent FROM daily_usage WHERE org_id = $1 AND day = $2`,
		orgID, day).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// CampaignsCreatedOn returns the campaigns-created counter for the given
// day, zero when no row exists yet.
func (r *UsageRepository) CampaignsCreatedOn(ctx context.Context, orgID int64, day time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT campaigns_created FROM daily_usage WHERE org_id = $1 AND day = $2`,
		orgID, day).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

var _ port.UsageRepository = (*UsageRepository)(nil)
