package citypages

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// Handler serves city pages, falling back to generated content.
type Handler struct {
	store  Store
	phone  string
	logger *logging.Logger
}

func NewHandler(store Store, phone string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, phone: phone, logger: logger}
}

// Get handles GET /api/city-pages/{cityName}?state=NC.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "cityName")
	slug := Slug(city)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "city name required"})
		return
	}
	state := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("state")))
	if state == "" {
		state = DefaultState
	}

	page, source := h.lookup(r, slug, state), "store"
	if page == nil {
		fallback := Fallback(city, state, h.phone)
		page, source = &fallback, "fallback"
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cityPage": page, "source": source})
}

func (h *Handler) lookup(r *http.Request, slug, state string) *CityData {
	if h.store == nil {
		return nil
	}
	page, err := h.store.Get(r.Context(), slug, state)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.Warn("city page store failed, using fallback", "city", slug, "error", err)
		}
		return nil
	}
	return page
}

// Put handles PUT /admin/api/city-pages/{cityName}.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "cityName")
	slug := Slug(city)
	if slug == "" || h.store == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "city name required"})
		return
	}
	var data CityData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	if strings.TrimSpace(data.PageTitle) == "" || strings.TrimSpace(data.HeroContent) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "page_title and hero_content are required"})
		return
	}
	if data.CityName == "" {
		data.CityName = DisplayName(city)
	}
	data.StateCode = strings.ToUpper(data.StateCode)
	if data.StateCode == "" {
		data.StateCode = DefaultState
	}
	if err := h.store.Put(r.Context(), slug, data); err != nil {
		h.logger.Error("failed to store city page", "city", slug, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to store city page"})
		return
	}
	h.logger.Info("city page stored", "city", slug)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cityPage": data})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
