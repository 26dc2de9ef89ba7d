package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"mailburst/internal/core/domain"
	"mailburst/internal/core/port"
	"mailburst/internal/core/render"
)

// ProcessBatch is one dispatcher invocation: claim up to batchSize pending
// recipients, send each with bounded concurrency, settle the outcomes and
// recompute campaign status once the queue drains. Each invocation is
// stateless and bounded so an external client can drive it on a polling
// loop; re-invoking a drained campaign is a safe no-op.
func (u *CampaignUseCase) ProcessBatch(ctx context.Context, id port.Identity, campaignID int64) (*port.BatchResult, error) {
	campaign, err := u.repo.GetCampaign(ctx, campaignID, id.UserID, id.OrgID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, port.ErrCampaignNotFound
	}

	if campaign.TemplateID == nil {
		return nil, fmt.Errorf("%w: campaign %d has no template", port.ErrTemplateNotFound, campaignID)
	}
	tpl, err := u.dir.GetTemplate(ctx, *campaign.TemplateID, campaign.UserID, campaign.OrgID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template %d was deleted", port.ErrTemplateNotFound, *campaign.TemplateID)
	}

	batch, err := u.repo.ClaimPending(ctx, campaignID, u.batchSize)
	if err != nil {
		return nil, err
	}

	if len(batch) == 0 {
		// Terminal detection point. This must run even when nothing was
		// claimed so a campaign left dangling after enqueue converges on
		// the next invocation.
		return u.settleEmpty(ctx, campaign)
	}

	sender := u.senderData(ctx, campaign.UserID)
	watermark := u.watermarked(ctx, campaign.OrgID)

	outcomes := make([]port.RecipientOutcome, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i := range batch {
		i := i
		g.Go(func() error {
			// Send failures are recorded on the recipient row and never
			// propagated: one recipient must not abort the rest of the
			// batch. Infrastructure errors do propagate and abort the
			// invocation.
			outcome, err := u.sendOne(gctx, campaign, tpl, &batch[i], sender, watermark)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		// Nothing is settled on an infrastructure error: the claimed rows
		// stay in_flight and the stale-claim requeue recovers them on a
		// later invocation. Settling here would fail recipients that were
		// never attempted.
		return nil, err
	}

	now := u.now()
	if err = u.repo.SettleOutcomes(ctx, outcomes, now); err != nil {
		return nil, err
	}

	sent, failed := 0, 0
	for i := range outcomes {
		if outcomes[i].Sent {
			sent++
		} else {
			failed++
		}
	}

	if campaign.OrgID != nil && sent > 0 {
		if err = u.usage.AddEmailsSent(ctx, *campaign.OrgID, domain.UsageDay(now), sent); err != nil {
			u.logger.Error("usage counter update failed",
				slog.Int64("org_id", *campaign.OrgID), slog.Any("error", err))
		}
	}

	counts, err := u.repo.CountRecipients(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if counts.Settled() {
		if err = u.markTerminal(ctx, campaign, counts); err != nil {
			return nil, err
		}
	}

	u.logger.Info("batch processed",
		slog.Int64("campaign_id", campaignID),
		slog.Int("processed", len(batch)),
		slog.Int("sent", sent),
		slog.Int("failed", failed),
		slog.Int("remaining", counts.Pending+counts.InFlight))

	return &port.BatchResult{
		Processed: len(batch),
		Sent:      sent,
		Failed:    failed,
		Remaining: counts.Pending + counts.InFlight,
	}, nil
}

// settleEmpty handles the empty-claim path: requeue claims abandoned by a
// dead invocation, then converge the campaign to a terminal status when
// nothing is left in flight.
func (u *CampaignUseCase) settleEmpty(ctx context.Context, campaign *domain.Campaign) (*port.BatchResult, error) {
	counts, err := u.repo.CountRecipients(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}

	if counts.Pending == 0 && counts.InFlight > 0 {
		requeued, err := u.repo.RequeueStale(ctx, campaign.ID, u.staleClaim)
		if err != nil {
			return nil, err
		}
		if requeued > 0 {
			u.logger.Warn("requeued stale in-flight recipients",
				slog.Int64("campaign_id", campaign.ID), slog.Int("count", requeued))
			counts.Pending += requeued
			counts.InFlight -= requeued
		}
	}

	if counts.Settled() {
		if err = u.markTerminal(ctx, campaign, counts); err != nil {
			return nil, err
		}
	}
	return &port.BatchResult{Remaining: counts.Pending + counts.InFlight}, nil
}

// markTerminal applies the terminal-status rule. Idempotent: writing the
// status the campaign already has is a no-op.
func (u *CampaignUseCase) markTerminal(ctx context.Context, campaign *domain.Campaign, counts domain.RecipientCounts) error {
	status := domain.TerminalStatus(counts.Sent, counts.Failed)
	if campaign.Status == status {
		return nil
	}
	if err := u.repo.SetStatus(ctx, campaign.ID, status); err != nil {
		return err
	}
	campaign.Status = status
	u.logger.Info("campaign reached terminal status",
		slog.Int64("campaign_id", campaign.ID), slog.String("status", status))
	return nil
}

// sendOne renders and sends a single recipient's email and returns the
// outcome. SMTP failures are captured verbatim on the outcome; they say
// something about this recipient. A lead lookup failure says nothing about
// the recipient, so it is returned as an error instead and the row is left
// unsettled.
func (u *CampaignUseCase) sendOne(
	ctx context.Context,
	campaign *domain.Campaign,
	tpl *domain.Template,
	rcpt *domain.Recipient,
	sender map[string]string,
	watermark bool,
) (port.RecipientOutcome, error) {
	outcome := port.RecipientOutcome{RecipientID: rcpt.ID}

	// Start from the snapshot taken at enqueue, then let live lead data win:
	// the lead may have been edited since the campaign was created.
	data := map[string]string{
		render.KeyName:  rcpt.Name,
		render.KeyEmail: rcpt.Email,
	}
	for k, v := range sender {
		data[k] = v
	}
	toEmail := rcpt.Email
	toName := rcpt.Name
	if rcpt.LeadID != nil {
		lead, err := u.dir.GetLead(ctx, *rcpt.LeadID)
		if err != nil {
			return outcome, fmt.Errorf("lead lookup: %w", err)
		}
		if lead != nil {
			data[render.KeyName] = lead.Name
			data[render.KeyCompany] = lead.Company
			data[render.KeyEmail] = lead.Email
			data[render.KeyPhone] = lead.Phone
			if lead.Email != "" {
				toEmail = lead.Email
			}
			toName = lead.Name
		}
	}

	subject := render.Render(tpl.Subject, data)
	html := render.Render(tpl.HTMLBody, data)
	if sig := signatureHTML(sender); sig != "" {
		html += sig
	}
	if watermark {
		html += watermarkHTML
	}

	msg := port.Message{
		To:           toEmail,
		ToName:       toName,
		ReplyTo:      sender[render.KeySenderEmail],
		Subject:      subject,
		HTML:         html,
		MessageToken: rcpt.MessageToken,
	}
	if err := u.mailer.Send(ctx, campaign.OrgID, msg); err != nil {
		outcome.Err = err.Error()
		return outcome, nil
	}
	outcome.Sent = true
	return outcome, nil
}

// senderData loads the sending user's profile into sender_* placeholder
// values. A missing profile leaves every key empty.
func (u *CampaignUseCase) senderData(ctx context.Context, userID int64) map[string]string {
	profile, err := u.dir.GetSenderProfile(ctx, userID)
	if err != nil {
		u.logger.Warn("sender profile lookup failed",
			slog.Int64("user_id", userID), slog.Any("error", err))
		return nil
	}
	if profile == nil {
		return nil
	}
	return map[string]string{
		render.KeySenderName:     profile.Name,
		render.KeySenderPosition: profile.Position,
		render.KeySenderCompany:  profile.Company,
		render.KeySenderEmail:    profile.Email,
		render.KeySenderPhone:    profile.Phone,
	}
}

// watermarked reports whether the organization's plan carries the service
// footer. Lookup failures default to no watermark.
func (u *CampaignUseCase) watermarked(ctx context.Context, orgID *int64) bool {
	if orgID == nil {
		return false
	}
	tier, err := u.dir.GetOrgTier(ctx, *orgID)
	if err != nil {
		return false
	}
	return domain.PlanForTier(tier).Watermark
}

// RetryFailed resets the campaign's failed recipients to pending and
// reopens the campaign so the client loop can drain it again. This is an
// explicit operator action; the dispatcher itself never retries.
func (u *CampaignUseCase) RetryFailed(ctx context.Context, id port.Identity, campaignID int64) (int, error) {
	campaign, err := u.repo.GetCampaign(ctx, campaignID, id.UserID, id.OrgID)
	if err != nil {
		return 0, err
	}
	if campaign == nil {
		return 0, port.ErrCampaignNotFound
	}
	reset, err := u.repo.ResetFailed(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if reset > 0 && campaign.Status != domain.StatusRunning {
		if err = u.repo.SetStatus(ctx, campaignID, domain.StatusRunning); err != nil {
			return reset, err
		}
	}
	return reset, nil
}

// signatureHTML builds the signature block appended below the rendered body.
// Returns "" when the sender has no profile data.
func signatureHTML(sender map[string]string) string {
	if sender == nil {
		return ""
	}
	name := sender[render.KeySenderName]
	if name == "" {
		return ""
	}
	sig := "<br><p>--<br>" + name
	if v := sender[render.KeySenderPosition]; v != "" {
		sig += "<br>" + v
	}
	if v := sender[render.KeySenderCompany]; v != "" {
		sig += "<br>" + v
	}
	if v := sender[render.KeySenderPhone]; v != "" {
		sig += "<br>" + v
	}
	return sig + "</p>"
}

const watermarkHTML = `<p style="color:#9ca3af;font-size:12px">Sent with Mailburst</p>`
