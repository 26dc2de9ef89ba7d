package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailburst/internal/config/configs"
	"mailburst/internal/core/domain"
	"mailburst/internal/core/port"
)

// CampaignUseCase implements the campaign dispatch core: recipient
// resolution, campaign creation, the batch dispatcher and the quota guard.
// It orchestrates the persistence and directory ports and the SMTP
// transport.
type CampaignUseCase struct {
	repo   port.CampaignRepository
	dir    port.Directory
	usage  port.UsageRepository
	mailer port.Mailer
	logger *slog.Logger

	batchSize   int
	concurrency int
	staleClaim  time.Duration

	// now is overridable in tests.
	now func() time.Time
}

// NewCampaignUseCase creates the usecase with the provided ports and
// dispatch tuning.
func NewCampaignUseCase(
	repo port.CampaignRepository,
	dir port.Directory,
	usage port.UsageRepository,
	mailer port.Mailer,
	cfg configs.Dispatch,
	logger *slog.Logger,
) *CampaignUseCase {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 20
	}
	conc := cfg.Concurrency
	if conc <= 0 {
		conc = 3
	}
	stale := cfg.StaleClaim
	if stale <= 0 {
		stale = 5 * time.Minute
	}
	return &CampaignUseCase{
		repo:        repo,
		dir:         dir,
		usage:       usage,
		mailer:      mailer,
		logger:      logger,
		batchSize:   batch,
		concurrency: conc,
		staleClaim:  stale,
		now:         time.Now,
	}
}

// CreateCampaign resolves the recipient set, runs the quota guard and
// persists the campaign together with its recipient queue in one
// transaction. The campaign is born running; the client then drives
// ProcessBatch until the queue drains.
func (u *CampaignUseCase) CreateCampaign(ctx context.Context, id port.Identity, req port.CreateCampaignReq) (*port.CreateCampaignResp, error) {
	tpl, err := u.dir.GetTemplate(ctx, req.TemplateID, id.UserID, id.OrgID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, port.ErrTemplateNotFound
	}

	if id.OrgID != nil {
		quota, err := u.GetQuota(ctx, id)
		if err != nil {
			return nil, err
		}
		if !quota.CanCreateCampaign {
			return nil, fmt.Errorf("%w: campaign limit %d reached on %s plan",
				port.ErrQuotaExceeded, quota.MaxCampaigns, quota.Tier)
		}
		if !quota.CanSendEmails {
			return nil, fmt.Errorf("%w: daily email limit %d reached on %s plan",
				port.ErrQuotaExceeded, quota.MaxRecipientsPerDay, quota.Tier)
		}
	}

	resolved, err := u.resolveRecipients(ctx, req.LeadIDs, req.GroupIDs)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, port.ErrNoRecipients
	}

	now := u.now()
	campaign := &domain.Campaign{
		UserID:     id.UserID,
		OrgID:      id.OrgID,
		TemplateID: &tpl.ID,
		Name:       fmt.Sprintf("%s - %s", tpl.Name, now.Format("2006-01-02 15:04")),
		Status:     domain.StatusRunning,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err = u.repo.CreateCampaignWithRecipients(ctx, campaign, resolved); err != nil {
		return nil, err
	}

	if id.OrgID != nil {
		if err = u.usage.AddCampaignCreated(ctx, *id.OrgID, domain.UsageDay(now)); err != nil {
			// Counter drift is preferable to failing a campaign that is
			// already persisted.
			u.logger.Error("usage counter update failed",
				slog.Int64("org_id", *id.OrgID), slog.Any("error", err))
		}
	}

	u.logger.Info("campaign created",
		slog.Int64("campaign_id", campaign.ID),
		slog.Int("recipients", len(resolved)))

	return &port.CreateCampaignResp{
		CampaignID: campaign.ID,
		Name:       campaign.Name,
		Recipients: len(resolved),
	}, nil
}

// resolveRecipients gathers leads referenced directly and through groups,
// then deduplicates by lowercased email keeping the first occurrence.
// Explicit leads come before group-derived leads, so they win ties.
func (u *CampaignUseCase) resolveRecipients(ctx context.Context, leadIDs, groupIDs []int64) ([]port.NewRecipient, error) {
	var leads []domain.Lead
	if len(leadIDs) > 0 {
		direct, err := u.dir.GetLeadsByIDs(ctx, leadIDs)
		if err != nil {
			return nil, err
		}
		leads = append(leads, direct...)
	}
	if len(groupIDs) > 0 {
		grouped, err := u.dir.GetLeadsByGroupIDs(ctx, groupIDs)
		if err != nil {
			return nil, err
		}
		leads = append(leads, grouped...)
	}

	seen := make(map[string]struct{}, len(leads))
	out := make([]port.NewRecipient, 0, len(leads))
	for i := range leads {
		email := strings.ToLower(strings.TrimSpace(leads[i].Email))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		leadID := leads[i].ID
		out = append(out, port.NewRecipient{
			LeadID:       &leadID,
			Email:        email,
			Name:         leads[i].Name,
			MessageToken: uuid.NewString(),
		})
	}
	return out, nil
}

// GetCampaign returns the campaign with live recipient counts and rows.
func (u *CampaignUseCase) GetCampaign(ctx context.Context, id port.Identity, campaignID int64) (*port.CampaignDetails, error) {
	campaign, err := u.repo.GetCampaign(ctx, campaignID, id.UserID, id.OrgID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, port.ErrCampaignNotFound
	}
	stats, err := u.repo.CountRecipients(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	recipients, err := u.repo.ListRecipients(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return &port.CampaignDetails{Campaign: *campaign, Stats: stats, Recipients: recipients}, nil
}

// ListCampaigns returns a page of the caller's campaigns plus total count.
func (u *CampaignUseCase) ListCampaigns(ctx context.Context, id port.Identity, page, pageSize int) ([]domain.Campaign, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return u.repo.ListCampaigns(ctx, id.UserID, id.OrgID, offset, pageSize)
}

// GetQuota evaluates the quota guard for the caller's organization. The
// campaign ceiling is a lifetime count; the email ceiling is per UTC
// calendar day. Callers without an organization are not metered, and their
// snapshot says so: it reports the free plan's ceilings but never denies
// anything, matching CreateCampaign, which only enforces quota for
// organizations.
func (u *CampaignUseCase) GetQuota(ctx context.Context, id port.Identity) (*port.QuotaStatus, error) {
	if id.OrgID == nil {
		plan := domain.PlanForTier(domain.TierFree)
		return &port.QuotaStatus{
			Tier:                plan.Tier,
			MaxCampaigns:        plan.MaxCampaigns,
			MaxRecipientsPerDay: plan.MaxRecipientsPerDay,
			CanCreateCampaign:   true,
			CanSendEmails:       true,
			RemainingEmails:     plan.MaxRecipientsPerDay,
			RemainingCampaigns:  plan.MaxCampaigns,
		}, nil
	}

	tier, err := u.dir.GetOrgTier(ctx, *id.OrgID)
	if err != nil {
		return nil, err
	}
	plan := domain.PlanForTier(tier)

	campaigns, err := u.repo.CountCampaigns(ctx, id.UserID, id.OrgID)
	if err != nil {
		return nil, err
	}

	day := domain.UsageDay(u.now())
	sentToday, err := u.usage.EmailsSentOn(ctx, *id.OrgID, day)
	if err != nil {
		return nil, err
	}
	createdToday, err := u.usage.CampaignsCreatedOn(ctx, *id.OrgID, day)
	if err != nil {
		return nil, err
	}

	remainingCampaigns := plan.MaxCampaigns - campaigns
	if remainingCampaigns < 0 {
		remainingCampaigns = 0
	}
	remainingEmails := plan.MaxRecipientsPerDay - sentToday
	if remainingEmails < 0 {
		remainingEmails = 0
	}

	return &port.QuotaStatus{
		Tier:                  plan.Tier,
		MaxCampaigns:          plan.MaxCampaigns,
		MaxRecipientsPerDay:   plan.MaxRecipientsPerDay,
		CanCreateCampaign:     campaigns < plan.MaxCampaigns,
		CanSendEmails:         sentToday < plan.MaxRecipientsPerDay,
		RemainingEmails:       remainingEmails,
		RemainingCampaigns:    remainingCampaigns,
		CampaignsCreatedToday: createdToday,
	}, nil
}

var _ port.CampaignUseCase = (*CampaignUseCase)(nil)
