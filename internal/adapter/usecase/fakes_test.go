package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"mailburst/internal/core/domain"
	"mailburst/internal/core/port"
)

// fakeRepo is an in-memory port.CampaignRepository. It mimics the
// transactional guarantees of the real adapter: claim is atomic under the
// mutex and a failed enqueue leaves no campaign behind.
type fakeRepo struct {
	mu          sync.Mutex
	nextID      int64
	campaigns   map[int64]*domain.Campaign
	recipients  map[int64]*domain.Recipient
	failEnqueue bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		campaigns:  make(map[int64]*domain.Campaign),
		recipients: make(map[int64]*domain.Recipient),
	}
}

func (f *fakeRepo) CreateCampaignWithRecipients(_ context.Context, c *domain.Campaign, recipients []port.NewRecipient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEnqueue {
		return errors.New("enqueue failed")
	}
	f.nextID++
	c.ID = f.nextID
	stored := *c
	f.campaigns[c.ID] = &stored
	for i := range recipients {
		f.nextID++
		f.recipients[f.nextID] = &domain.Recipient{
			ID:           f.nextID,
			CampaignID:   c.ID,
			UserID:       c.UserID,
			OrgID:        c.OrgID,
			LeadID:       recipients[i].LeadID,
			Email:        recipients[i].Email,
			Name:         recipients[i].Name,
			Status:       domain.RecipientPending,
			MessageToken: recipients[i].MessageToken,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.CreatedAt,
		}
	}
	return nil
}

func (f *fakeRepo) GetCampaign(_ context.Context, id int64, userID int64, orgID *int64) (*domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, nil
	}
	if orgID != nil {
		if c.OrgID == nil || *c.OrgID != *orgID {
			return nil, nil
		}
	} else if c.UserID != userID || c.OrgID != nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) ListCampaigns(_ context.Context, userID int64, orgID *int64, offset, limit int) ([]domain.Campaign, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Campaign
	for _, c := range f.campaigns {
		if orgID != nil {
			if c.OrgID == nil || *c.OrgID != *orgID {
				continue
			}
		} else if c.UserID != userID || c.OrgID != nil {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeRepo) CountCampaigns(_ context.Context, userID int64, orgID *int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.campaigns {
		if orgID != nil {
			if c.OrgID != nil && *c.OrgID == *orgID {
				n++
			}
		} else if c.UserID == userID && c.OrgID == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, campaignID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.campaigns[campaignID]; ok {
		c.Status = status
	}
	return nil
}

func (f *fakeRepo) ClaimPending(_ context.Context, campaignID int64, limit int) ([]domain.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.sortedRecipientIDs(campaignID)
	var claimed []domain.Recipient
	for _, id := range ids {
		if len(claimed) == limit {
			break
		}
		r := f.recipients[id]
		if r.Status != domain.RecipientPending {
			continue
		}
		r.Status = domain.RecipientInFlight
		r.UpdatedAt = time.Now()
		claimed = append(claimed, *r)
	}
	return claimed, nil
}

func (f *fakeRepo) SettleOutcomes(_ context.Context, outcomes []port.RecipientOutcome, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range outcomes {
		r, ok := f.recipients[outcomes[i].RecipientID]
		if !ok {
			continue
		}
		if outcomes[i].Sent {
			r.Status = domain.RecipientSent
			t := sentAt
			r.SentAt = &t
			r.LastError = nil
		} else {
			r.Status = domain.RecipientFailed
			msg := outcomes[i].Err
			r.LastError = &msg
		}
	}
	return nil
}

func (f *fakeRepo) RequeueStale(_ context.Context, campaignID int64, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	n := 0
	for _, r := range f.recipients {
		if r.CampaignID == campaignID && r.Status == domain.RecipientInFlight && r.UpdatedAt.Before(cutoff) {
			r.Status = domain.RecipientPending
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ResetFailed(_ context.Context, campaignID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.recipients {
		if r.CampaignID == campaignID && r.Status == domain.RecipientFailed {
			r.Status = domain.RecipientPending
			r.LastError = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountRecipients(_ context.Context, campaignID int64) (domain.RecipientCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var counts domain.RecipientCounts
	for _, r := range f.recipients {
		if r.CampaignID != campaignID {
			continue
		}
		switch r.Status {
		case domain.RecipientPending:
			counts.Pending++
		case domain.RecipientInFlight:
			counts.InFlight++
		case domain.RecipientSent:
			counts.Sent++
		case domain.RecipientFailed:
			counts.Failed++
		}
	}
	return counts, nil
}

func (f *fakeRepo) ListRecipients(_ context.Context, campaignID int64) ([]domain.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Recipient
	for _, id := range f.sortedRecipientIDs(campaignID) {
		out = append(out, *f.recipients[id])
	}
	return out, nil
}

func (f *fakeRepo) sortedRecipientIDs(campaignID int64) []int64 {
	var ids []int64
	for id, r := range f.recipients {
		if r.CampaignID == campaignID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// fakeDirectory is an in-memory port.Directory. leadErr makes every
// GetLead call fail, simulating a database outage.
type fakeDirectory struct {
	templates  map[int64]*domain.Template
	leads      map[int64]*domain.Lead
	groupLeads map[int64][]domain.Lead
	profile    *domain.SenderProfile
	tier       string
	leadErr    error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		templates:  make(map[int64]*domain.Template),
		leads:      make(map[int64]*domain.Lead),
		groupLeads: make(map[int64][]domain.Lead),
		tier:       domain.TierPro,
	}
}

func (f *fakeDirectory) GetTemplate(_ context.Context, id int64, _ int64, _ *int64) (*domain.Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeDirectory) GetLeadsByIDs(_ context.Context, ids []int64) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, id := range ids {
		if l, ok := f.leads[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeDirectory) GetLeadsByGroupIDs(_ context.Context, ids []int64) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, id := range ids {
		out = append(out, f.groupLeads[id]...)
	}
	return out, nil
}

func (f *fakeDirectory) GetLead(_ context.Context, id int64) (*domain.Lead, error) {
	if f.leadErr != nil {
		return nil, f.leadErr
	}
	l, ok := f.leads[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeDirectory) GetSenderProfile(_ context.Context, _ int64) (*domain.SenderProfile, error) {
	if f.profile == nil {
		return nil, nil
	}
	cp := *f.profile
	return &cp, nil
}

func (f *fakeDirectory) GetOrgTier(_ context.Context, _ int64) (string, error) {
	return f.tier, nil
}

// fakeUsage is an in-memory port.UsageRepository.
type fakeUsage struct {
	mu        sync.Mutex
	emails    map[string]int
	campaigns map[string]int
}

func newFakeUsage() *fakeUsage {
	return &fakeUsage{emails: make(map[string]int), campaigns: make(map[string]int)}
}

func usageKey(orgID int64, day time.Time) string {
	return day.Format("2006-01-02") + "/" + strconv.FormatInt(orgID, 10)
}

func (f *fakeUsage) AddEmailsSent(_ context.Context, orgID int64, day time.Time, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails[usageKey(orgID, day)] += n
	return nil
}

func (f *fakeUsage) AddCampaignCreated(_ context.Context, orgID int64, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns[usageKey(orgID, day)]++
	return nil
}

func (f *fakeUsage) EmailsSentOn(_ context.Context, orgID int64, day time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emails[usageKey(orgID, day)], nil
}

func (f *fakeUsage) CampaignsCreatedOn(_ context.Context, orgID int64, day time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.campaigns[usageKey(orgID, day)], nil
}

// fakeMailer records sends and fails addresses listed in failFor.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []port.Message
	failFor map[string]error
	failAll error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: make(map[string]error)}
}

func (f *fakeMailer) Send(_ context.Context, _ *int64, msg port.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	if err, ok := f.failFor[strings.ToLower(msg.To)]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i := range f.sent {
		out[i] = f.sent[i].To
	}
	return out
}
