package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/telepsych-site/internal/analytics"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Notifier tells the practice about a new lead.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *Lead) error
}

// Observer records lead submissions.
type Observer interface {
	ObserveLead(outcome, serviceType string)
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo     Repository
	logger   *logging.Logger
	notifier Notifier
	tracker  analytics.Client
	observer Observer
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithNotifier sends an email (or similar) for each new lead.
func WithNotifier(n Notifier) HandlerOption {
	return func(h *Handler) { h.notifier = n }
}

// WithAnalytics tracks lead conversions.
func WithAnalytics(c analytics.Client) HandlerOption {
	return func(h *Handler) { h.tracker = analytics.OrNoop(c) }
}

// WithObserver records submission outcomes as metrics.
func WithObserver(o Observer) HandlerOption {
	return func(h *Handler) { h.observer = o }
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{
		repo:    repo,
		logger:  logger,
		tracker: analytics.Noop{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateLeadResponse is returned by POST /api/leads.
type CreateLeadResponse struct {
	Success bool   `json:"success"`
	LeadID  string `json:"lead_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CreateLead handles POST /api/leads requests
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode lead", "error", err)
		h.observe("invalid", "")
		writeJSON(w, http.StatusBadRequest, CreateLeadResponse{Error: "invalid request body"})
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if IsValidationError(err) {
			h.observe("invalid", req.ServiceType)
			writeJSON(w, http.StatusBadRequest, CreateLeadResponse{Error: err.Error()})
			return
		}
		h.logger.Error("failed to create lead", "error", err)
		h.observe("error", req.ServiceType)
		writeJSON(w, http.StatusInternalServerError, CreateLeadResponse{Error: "failed to save lead"})
		return
	}

	h.logger.Info("lead created", "lead_id", lead.ID, "service_type", lead.ServiceType, "urgent", lead.Urgent)
	h.observe("created", lead.ServiceType)
	h.tracker.Track(r.Context(), analytics.Event{
		Name:     "lead_submitted",
		Category: analytics.CategoryLeadGeneration,
		Label:    lead.ServiceType,
		Value:    1,
	})

	if h.notifier != nil {
		if err := h.notifier.NotifyNewLead(r.Context(), lead); err != nil {
			h.logger.Warn("lead notification failed", "lead_id", lead.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, CreateLeadResponse{Success: true, LeadID: lead.ID})
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Success bool    `json:"success"`
	Leads   []*Lead `json:"leads"`
}

// ListLeads handles GET /api/contact/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Limit:  defaultListLimit,
		Search: q.Get("q"),
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = min(limit, maxListLimit)
		}
	}
	if status := strings.TrimSpace(q.Get("status")); status != "" && status != "all" {
		filter.Status = Status(status)
		if !filter.Status.Valid() {
			writeError(w, http.StatusBadRequest, ErrInvalidStatus.Error())
			return
		}
	}

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}
	writeJSON(w, http.StatusOK, ListLeadsResponse{Success: true, Leads: leads})
}

// UpdateLead handles PUT /api/contact/leads/{leadID} requests
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	if leadID == "" {
		writeError(w, http.StatusBadRequest, "missing lead id")
		return
	}

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.repo.Update(r.Context(), leadID, &req)
	switch {
	case err == nil:
	case errors.Is(err, ErrLeadNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.logger.Error("failed to update lead", "lead_id", leadID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update lead")
		return
	}

	h.logger.Info("lead updated", "lead_id", lead.ID, "status", lead.Status)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Lead updated",
		"lead":    lead,
	})
}

// LeadMetrics handles GET /api/contact/leads/metrics requests
func (h *Handler) LeadMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.repo.Metrics(r.Context())
	if err != nil {
		h.logger.Error("failed to compute lead metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) observe(outcome, serviceType string) {
	if h.observer != nil {
		h.observer.ObserveLead(outcome, serviceType)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
