package reviews

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// Handler serves the reviews API.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListResponse is the body of GET /api/reviews.
type ListResponse struct {
	Success bool      `json:"success"`
	Reviews []*Review `json:"reviews"`
	Error   string    `json:"error,omitempty"`
}

// List handles GET /api/reviews?approved=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	approvedOnly, _ := strconv.ParseBool(r.URL.Query().Get("approved"))
	reviews, err := h.repo.List(r.Context(), approvedOnly)
	if err != nil {
		h.logger.Error("failed to list reviews", "error", err)
		writeJSON(w, http.StatusInternalServerError, ListResponse{Reviews: []*Review{}, Error: "failed to load reviews"})
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Success: true, Reviews: reviews})
}

// Submit handles POST /api/reviews. New reviews wait for approval.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	review, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if IsValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
			return
		}
		h.logger.Error("failed to save review", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to save review"})
		return
	}
	h.logger.Info("review submitted", "review_id", review.ID, "rating", review.Rating)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "review_id": review.ID})
}

// Approve handles POST /admin/api/reviews/{reviewID}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reviewID")
	review, err := h.repo.Approve(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": err.Error()})
			return
		}
		h.logger.Error("failed to approve review", "review_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to approve review"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "review": review})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
