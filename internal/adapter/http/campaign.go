package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"mailburst/internal/core/domain"
	"mailburst/internal/core/port"
)

type createCampaignReq struct {
	TemplateID int64   `json:"template_id"`
	LeadIDs    []int64 `json:"lead_ids"`
	GroupIDs   []int64 `json:"group_ids"`
}

// handleCreateCampaign resolves recipients and creates a running campaign.
// Returns 201 with the campaign id and recipient count; 404 when the
// template does not exist, 400 when no recipients resolve, 402 when the
// quota guard rejects.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	var req createCampaignReq
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.TemplateID == 0 {
		http.Error(w, "template_id is required", http.StatusBadRequest)
		return
	}
	resp, err := h.svc.CreateCampaign(r.Context(), id, port.CreateCampaignReq{
		TemplateID: req.TemplateID,
		LeadIDs:    req.LeadIDs,
		GroupIDs:   req.GroupIDs,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"campaign_id": resp.CampaignID,
		"name":        resp.Name,
		"recipients":  resp.Recipients,
	})
}

// handleProcessBatch runs one dispatcher invocation for the campaign. The
// client repeats this call until remaining reaches zero.
func (h *Handler) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	cid, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ProcessBatch(r.Context(), id, cid)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// handleRetryFailed resets failed recipients to pending and reopens the
// campaign.
func (h *Handler) handleRetryFailed(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	cid, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	reset, err := h.svc.RetryFailed(r.Context(), id, cid)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"reset": reset})
}

type campaignView struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	TemplateID *int64    `json:"template_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type recipientView struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	LastError *string    `json:"last_error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// handleGetCampaign returns the campaign with live recipient counts. The
// stored error of every failed recipient is returned verbatim.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	cid, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	details, err := h.svc.GetCampaign(r.Context(), id, cid)
	if err != nil {
		h.writeError(w, err)
		return
	}

	recipients := make([]recipientView, len(details.Recipients))
	for i, rcpt := range details.Recipients {
		recipients[i] = recipientView{
			ID:        rcpt.ID,
			Email:     rcpt.Email,
			Name:      rcpt.Name,
			Status:    rcpt.Status,
			LastError: rcpt.LastError,
			SentAt:    rcpt.SentAt,
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"campaign": toCampaignView(details.Campaign),
		"stats": map[string]int{
			"total":   details.Stats.Total(),
			"pending": details.Stats.Pending + details.Stats.InFlight,
			"sent":    details.Stats.Sent,
			"failed":  details.Stats.Failed,
		},
		"recipients": recipients,
	})
}

// handleListCampaigns returns a page of the caller's campaigns. Accepts
// page and page_size query parameters.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	campaigns, total, err := h.svc.ListCampaigns(r.Context(), id, page, pageSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	views := make([]campaignView, len(campaigns))
	for i := range campaigns {
		views[i] = toCampaignView(campaigns[i])
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"campaigns":   views,
		"total_count": total,
	})
}

// handleQuota returns the quota guard snapshot for the caller.
func (h *Handler) handleQuota(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	quota, err := h.svc.GetQuota(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quota)
}

func toCampaignView(c domain.Campaign) campaignView {
	return campaignView{
		ID:         c.ID,
		Name:       c.Name,
		Status:     c.Status,
		TemplateID: c.TemplateID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
