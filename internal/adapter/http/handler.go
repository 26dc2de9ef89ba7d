package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mailburst/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds a CampaignUseCase to execute business logic and a logger
// for structured logging. Routes are registered on a chi.Router for
// convenient method handling.
type Handler struct {
	svc    port.CampaignUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. It accepts a
// CampaignUseCase implementation and a logger. The returned Handler
// registers handlers for each endpoint on a new chi.Router.
func NewHandler(svc port.CampaignUseCase, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/campaigns", h.handleCreateCampaign)
		r.Get("/campaigns", h.handleListCampaigns)
		r.Get("/campaigns/{id}", h.handleGetCampaign)
		r.Post("/campaigns/{id}/process", h.handleProcessBatch)
		r.Post("/campaigns/{id}/retry-failed", h.handleRetryFailed)
		r.Get("/quota", h.handleQuota)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// identity extracts the caller from the X-User-ID and X-Org-ID headers.
// Session handling lives upstream of this service; the headers are the
// narrow interface standing in for it.
func identity(r *http.Request) (port.Identity, error) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil {
		return port.Identity{}, errors.New("missing or invalid X-User-ID header")
	}
	id := port.Identity{UserID: userID}
	if raw := r.Header.Get("X-Org-ID"); raw != "" {
		orgID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return port.Identity{}, errors.New("invalid X-Org-ID header")
		}
		id.OrgID = &orgID
	}
	return id, nil
}

// campaignID parses the {id} path parameter.
func campaignID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// writeJSON encodes v as the response body with the given status.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and move on
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps usecase errors onto HTTP status codes. Quota errors get
// 402 so clients can offer an upgrade path; not-found sentinels get 404;
// precondition failures get 400; anything else is a 500 with a generic
// body.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, port.ErrQuotaExceeded):
		h.writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": err.Error(), "code": "quota_exceeded"})
	case errors.Is(err, port.ErrCampaignNotFound), errors.Is(err, port.ErrTemplateNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, port.ErrNoRecipients):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
