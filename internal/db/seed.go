package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo data into the mailburst database: one organization on
// the regular tier, a user with a full sender profile, a batch of leads, a
// group holding half of them, and a template exercising every placeholder.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `INSERT INTO organizations (id, name, tier)
VALUES (1, 'Acme Corp', 'regular') ON CONFLICT DO NOTHING`)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `INSERT INTO users (id, org_id, name, email, phone, position, company)
VALUES (1, 1, 'Dana Smith', 'dana@acme.test', '+1 555 0100', 'Head of Growth', 'Acme Corp')
ON CONFLICT DO NOTHING`)
	if err != nil {
		return err
	}

	for i := 1; i <= 30; i++ {
		_, err = db.Exec(ctx, `INSERT INTO leads (id, user_id, org_id, name, email, company, phone)
VALUES ($1, 1, 1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
			i,
			fmt.Sprintf("Lead %d", i),
			fmt.Sprintf("lead%d@example.test", i),
			fmt.Sprintf("Company %d", (i-1)/5+1),
			fmt.Sprintf("+1 555 02%02d", i))
		if err != nil {
			return err
		}
	}

	_, err = db.Exec(ctx, `INSERT INTO groups (id, user_id, org_id, name)
VALUES (1, 1, 1, 'Newsletter') ON CONFLICT DO NOTHING`)
	if err != nil {
		return err
	}
	for i := 1; i <= 15; i++ {
		_, err = db.Exec(ctx, `INSERT INTO group_members (group_id, lead_id)
VALUES (1, $1) ON CONFLICT DO NOTHING`, i)
		if err != nil {
			return err
		}
	}

	_, err = db.Exec(ctx, `INSERT INTO templates (id, user_id, org_id, name, subject, html_body)
VALUES (1, 1, 1, 'Welcome',
    'Hello {{name}}, news from {{sender_company}}',
    '<p>Hi {{ name }},</p><p>We noticed {{company}} might be interested in our product. Reach us back at {{sender_email}} or call {{sender_phone}}.</p>')
ON CONFLICT DO NOTHING`)
	return err
}
