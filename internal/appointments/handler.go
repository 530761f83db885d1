package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/telepsych-site/internal/scheduling"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// WizardFactory opens a fresh booking wizard.
type WizardFactory func() *scheduling.Wizard

// Handler serves the booking wizard sessions and the admin appointment list.
type Handler struct {
	sessions  *SessionStore
	newWizard WizardFactory
	provider  scheduling.AvailabilityProvider
	repo      Repository
	location  *time.Location
	logger    *logging.Logger
}

// NewHandler builds the booking handler. Dates in requests are read in loc,
// the practice's time zone; a nil loc means UTC.
func NewHandler(sessions *SessionStore, factory WizardFactory, provider scheduling.AvailabilityProvider, repo Repository, loc *time.Location, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		sessions:  sessions,
		newWizard: factory,
		provider:  provider,
		repo:      repo,
		location:  loc,
		logger:    logger,
	}
}

// Routes mounts the public wizard endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/slots", h.Slots)
	r.Get("/services", h.Services)
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/date", h.SelectDate)
		r.Post("/change-date", h.ChangeDate)
		r.Post("/time", h.SelectTime)
		r.Post("/change-time", h.ChangeTime)
		r.Put("/details", h.UpdateDetails)
		r.Post("/submit", h.Submit)
	})
}

// SessionResponse carries the wizard view of one session.
type SessionResponse struct {
	Success   bool            `json:"success"`
	SessionID string          `json:"session_id"`
	Session   scheduling.View `json:"session"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	wizard := h.newWizard()
	id := h.sessions.Create(wizard)
	h.logger.Debug("booking session opened", "session_id", id)
	writeJSON(w, http.StatusCreated, SessionResponse{Success: true, SessionID: id, Session: wizard.View()})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, wizard, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.writeView(w, http.StatusOK, id, wizard)
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.sessions.Delete(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	id, wizard, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		Date string `json:"date"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := wizard.SelectDate(r.Context(), body.Date); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeView(w, http.StatusOK, id, wizard)
}

func (h *Handler) ChangeDate(w http.ResponseWriter, r *http.Request) {
	id, wizard, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := wizard.ChangeDate(); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeView(w, http.StatusOK, id, wizard)
}

func (h *Handler) SelectTime(w http.ResponseWriter, r *http.Request) {
	id, wizard, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		Time string `json:"time"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := wizard.SelectTime(r.Context(), body.Time); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeView(w, http.StatusOK, id, wizard)
}

func (h *Handler) ChangeTime(w http.ResponseWriter, r *http.Request) {
	id, wizard, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := wizard.ChangeTime(); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeView(w, http.StatusOK, id, wizard)
}

func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	id, wizard, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var details scheduling.Details
	if !decode(w, r, &details) {
		return
	}
	if err := wizard.UpdateDetails(details); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeView(w, http.StatusOK, id, wizard)
}

// Submit starts the booking in the background; clients poll the session
// until it leaves the submitting state.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, wizard, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := wizard.Submit(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("booking submitted", "session_id", id)
	h.writeView(w, http.StatusAccepted, id, wizard)
}

// Slots lists the half-hour slots of a date.
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	date, err := scheduling.ParseDate(r.URL.Query().Get("date"), h.location)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}
	slots, err := h.provider.Availability(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to load slots", "date", date.Format(time.DateOnly), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load slots"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"date":    date.Format(time.DateOnly),
		"slots":   slots,
	})
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "services": scheduling.Services})
}

// ListAppointments handles GET /admin/api/appointments.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}
	appts, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list appointments"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "appointments": appts})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (string, *scheduling.Wizard, bool) {
	id := chi.URLParam(r, "sessionID")
	wizard, err := h.sessions.Get(id)
	if err != nil {
		h.writeError(w, err)
		return id, nil, false
	}
	return id, wizard, true
}

func (h *Handler) writeView(w http.ResponseWriter, status int, id string, wizard *scheduling.Wizard) {
	writeJSON(w, status, SessionResponse{Success: true, SessionID: id, Session: wizard.View()})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *scheduling.ValidationError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "booking session not found"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Missing: verr.Missing})
	case errors.Is(err, scheduling.ErrInvalidTransition), errors.Is(err, scheduling.ErrSlotUnavailable):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, scheduling.ErrDateUnavailable), errors.Is(err, scheduling.ErrUnknownSlot):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("booking request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "booking request failed"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
