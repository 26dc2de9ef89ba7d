package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mailburst/internal/core/domain"
	"mailburst/internal/core/port"
)

// CampaignRepository implements port.CampaignRepository using pgxpool for
// PostgreSQL.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

const recipientColumns = `id, campaign_id, user_id, org_id, lead_id, email, name, status,
    last_error, message_token, sent_at, created_at, updated_at`

func scanRecipient(row pgx.CollectableRow) (domain.Recipient, error) {
	var r domain.Recipient
	err := row.Scan(
		&r.ID,
		&r.CampaignID,
		&r.UserID,
		&r.OrgID,
		&r.LeadID,
		&r.Email,
		&r.Name,
		&r.Status,
		&r.LastError,
		&r.MessageToken,
		&r.SentAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

// CreateCampaignWithRecipients inserts the campaign and its recipient queue
// in a single transaction. If any insert fails the transaction rolls back,
// so a campaign with zero recipients is never observably persisted.
func (r *CampaignRepository) CreateCampaignWithRecipients(ctx context.Context, c *domain.Campaign, recipients []port.NewRecipient) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `INSERT INTO campaigns (user_id, org_id, template_id, name, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6) RETURNING id`,
		c.UserID, c.OrgID, c.TemplateID, c.Name, c.Status, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range recipients {
		batch.Queue(`INSERT INTO campaign_recipients
(campaign_id, user_id, org_id, lead_id, email, name, status, message_token, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)`,
			c.ID, c.UserID, c.OrgID, recipients[i].LeadID, recipients[i].Email,
			recipients[i].Name, domain.RecipientPending, recipients[i].MessageToken, c.CreatedAt)
	}
	err = tx.SendBatch(ctx, batch).Close()
	return err
}

// GetCampaign returns a campaign scoped to its owner, or nil when absent.
// Organization members share campaigns; organization-less users only see
// their own.
func (r *CampaignRepository) GetCampaign(ctx context.Context, id int64, userID int64, orgID *int64) (*domain.Campaign, error) {
	query := `SELECT id, user_id, org_id, template_id, name, status, created_at, updated_at
FROM campaigns WHERE id = $1 AND `
	args := []any{id}
	if orgID != nil {
		query += `org_id = $2`
		args = append(args, *orgID)
	} else {
		query += `user_id = $2 AND org_id IS NULL`
		args = append(args, userID)
	}

	var c domain.Campaign
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.UserID, &c.OrgID, &c.TemplateID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCampaigns returns a page of campaigns for the owner plus total count.
func (r *CampaignRepository) ListCampaigns(ctx context.Context, userID int64, orgID *int64, offset, limit int) ([]domain.Campaign, int, error) {
	scope := `user_id = $1 AND org_id IS NULL`
	owner := userID
	if orgID != nil {
		scope = `org_id = $1`
		owner = *orgID
	}

	rows, err := r.pool.Query(ctx, `SELECT id, user_id, org_id, template_id, name, status, created_at, updated_at
FROM campaigns WHERE `+scope+` ORDER BY id DESC LIMIT $2 OFFSET $3`, owner, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	campaigns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		var c domain.Campaign
		err := row.Scan(&c.ID, &c.UserID, &c.OrgID, &c.TemplateID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err = r.pool.QueryRow(ctx, `SELECT count(*) FROM campaigns WHERE `+scope, owner).Scan(&total); err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// CountCampaigns returns the lifetime campaign count for quota accounting.
func (r *CampaignRepository) CountCampaigns(ctx context.Context, userID int64, orgID *int64) (int, error) {
	var total int
	var err error
	if orgID != nil {
		err = r.pool.QueryRow(ctx, `SELECT count(*) FROM campaigns WHERE org_id = $1`, *orgID).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT count(*) FROM campaigns WHERE user_id = $1 AND org_id IS NULL`, userID).Scan(&total)
	}
	return total, err
}

// SetStatus persists a campaign status transition.
func (r *CampaignRepository) SetStatus(ctx context.Context, campaignID int64, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2`, status, campaignID)
	return err
}

// ClaimPending atomically claims up to limit pending recipients by moving
// them to in_flight. SKIP LOCKED keeps two concurrent invocations from
// blocking on or double-claiming the same rows.
func (r *CampaignRepository) ClaimPending(ctx context.Context, campaignID int64, limit int) ([]domain.Recipient, error) {
	rows, err := r.pool.Query(ctx, `UPDATE campaign_recipients SET status = $1, updated_at = now()
WHERE id IN (
    SELECT id FROM campaign_recipients
    WHERE campaign_id = $2 AND status = $3
    LIMIT $4
    FOR UPDATE SKIP LOCKED
)
RETURNING `+recipientColumns,
		domain.RecipientInFlight, campaignID, domain.RecipientPending, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanRecipient)
}

// SettleOutcomes writes per-recipient send results. Every row is updated
// independently: a failure on one row never rolls back another row's
// already-durable update, so there is deliberately no transaction here.
func (r *CampaignRepository) SettleOutcomes(ctx context.Context, outcomes []port.RecipientOutcome, sentAt time.Time) error {
	var firstErr error
	for i := range outcomes {
		var err error
		if outcomes[i].Sent {
			_, err = r.pool.Exec(ctx, `UPDATE campaign_recipients
SET status = $1, sent_at = $2, last_error = NULL, updated_at = now() WHERE id = $3`,
				domain.RecipientSent, sentAt, outcomes[i].RecipientID)
		} else {
			_, err = r.pool.Exec(ctx, `UPDATE campaign_recipients
SET status = $1, last_error = $2, updated_at = now() WHERE id = $3`,
				domain.RecipientFailed, outcomes[i].Err, outcomes[i].RecipientID)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RequeueStale moves in_flight rows older than the cutoff back to pending.
func (r *CampaignRepository) RequeueStale(ctx context.Context, campaignID int64, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	tag, err := r.pool.Exec(ctx, `UPDATE campaign_recipients SET status = $1, updated_at = now()
WHERE campaign_id = $2 AND status = $3 AND updated_at < $4`,
		domain.RecipientPending, campaignID, domain.RecipientInFlight, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ResetFailed moves failed recipients back to pending, clearing their
// stored errors.
func (r *CampaignRepository) ResetFailed(ctx context.Context, campaignID int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE campaign_recipients
SET status = $1, last_error = NULL, updated_at = now()
WHERE campaign_id = $2 AND status = $3`,
		domain.RecipientPending, campaignID, domain.RecipientFailed)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CountRecipients returns the campaign's recipient rows grouped by status.
func (r *CampaignRepository) CountRecipients(ctx context.Context, campaignID int64) (domain.RecipientCounts, error) {
	var counts domain.RecipientCounts
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM campaign_recipients
WHERE campaign_id = $1 GROUP BY status`, campaignID)
	if err != nil {
		return counts, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err = rows.Scan(&status, &n); err != nil {
			return counts, err
		}
		switch status {
		case domain.RecipientPending:
			counts.Pending = n
		case domain.RecipientInFlight:
			counts.InFlight = n
		case domain.RecipientSent:
			counts.Sent = n
		case domain.RecipientFailed:
			counts.Failed = n
		}
	}
	return counts, rows.Err()
}

// ListRecipients returns all recipient rows of a campaign, newest first.
func (r *CampaignRepository) ListRecipients(ctx context.Context, campaignID int64) ([]domain.Recipient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recipientColumns+`
FROM campaign_recipients WHERE campaign_id = $1 ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanRecipient)
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)
