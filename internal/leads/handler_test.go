package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/telepsych-site/internal/analytics"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

type recordingNotifier struct {
	leads []*Lead
	err   error
}

func (n *recordingNotifier) NotifyNewLead(_ context.Context, lead *Lead) error {
	n.leads = append(n.leads, lead)
	return n.err
}

type recordingTracker struct{ events []analytics.Event }

func (r *recordingTracker) Track(_ context.Context, evt analytics.Event) {
	r.events = append(r.events, evt)
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/leads", h.CreateLead)
	r.Get("/api/contact/leads", h.ListLeads)
	r.Get("/api/contact/leads/metrics", h.LeadMetrics)
	r.Put("/api/contact/leads/{leadID}", h.UpdateLead)
	return r
}

func postLead(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestCreateLead_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	notifier := &recordingNotifier{}
	tracker := &recordingTracker{}
	srv := newRouter(NewHandler(repo, logging.Discard(), WithNotifier(notifier), WithAnalytics(tracker)))

	w := postLead(t, srv, `{"name":"Jane Doe","email":"jane@example.com","phone":"9195550123",
		"service_type":"ADHD Evaluation","utm_campaign":"spring"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var resp CreateLeadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.LeadID == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	lead, err := repo.GetByID(context.Background(), resp.LeadID)
	if err != nil {
		t.Fatalf("lead not stored: %v", err)
	}
	if lead.Source != DefaultSource {
		t.Errorf("expected default source, got %q", lead.Source)
	}
	if lead.PreferredContact != "email" {
		t.Errorf("expected preferred contact email, got %q", lead.PreferredContact)
	}
	if lead.Status != StatusNew {
		t.Errorf("expected status new, got %q", lead.Status)
	}
	if lead.UTMCampaign != "spring" {
		t.Errorf("expected utm campaign to be kept, got %q", lead.UTMCampaign)
	}
	if len(notifier.leads) != 1 {
		t.Errorf("expected one notification, got %d", len(notifier.leads))
	}
	if len(tracker.events) != 1 || tracker.events[0].Name != "lead_submitted" {
		t.Errorf("expected lead_submitted event, got %+v", tracker.events)
	}
}

func TestCreateLead_NotificationFailureStillCreates(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	srv := newRouter(NewHandler(NewInMemoryRepository(), logging.Discard(), WithNotifier(notifier)))

	w := postLead(t, srv, `{"name":"Jane","email":"jane@example.com"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestCreateLead_CrisisIsUrgent(t *testing.T) {
	repo := NewInMemoryRepository()
	srv := newRouter(NewHandler(repo, logging.Discard()))

	w := postLead(t, srv, `{"name":"Sam","email":"sam@example.com","service_type":"Crisis Intervention"}`)
	var resp CreateLeadResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)

	lead, err := repo.GetByID(context.Background(), resp.LeadID)
	if err != nil {
		t.Fatalf("lead not stored: %v", err)
	}
	if !lead.Urgent {
		t.Error("expected crisis intervention lead to be urgent")
	}
}

func TestCreateLead_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"name":`, "invalid request body"},
		{"missing name", `{"email":"a@b.co"}`, ErrInvalidName.Error()},
		{"missing email", `{"name":"A"}`, ErrInvalidEmail.Error()},
		{"bad email", `{"name":"A","email":"not-an-email"}`, ErrInvalidEmail.Error()},
		{"bad contact", `{"name":"A","email":"a@b.co","preferred_contact":"fax"}`, ErrInvalidPreferredContact.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRouter(NewHandler(NewInMemoryRepository(), logging.Discard()))
			w := postLead(t, srv, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			var resp CreateLeadResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Success || resp.Error != tt.want {
				t.Errorf("expected error %q, got %+v", tt.want, resp)
			}
		})
	}
}

func seedLeads(t *testing.T, repo *InMemoryRepository) []*Lead {
	t.Helper()
	reqs := []CreateLeadRequest{
		{Name: "Alice Smith", Email: "alice@example.com", Phone: "9195550001"},
		{Name: "Bob Jones", Email: "bob@example.com", Phone: "3365550002", ServiceType: UrgentServiceType},
		{Name: "Carol White", Email: "carol@clinic.org", Phone: "7045550003"},
	}
	out := make([]*Lead, 0, len(reqs))
	for i := range reqs {
		lead, err := repo.Create(context.Background(), &reqs[i])
		if err != nil {
			t.Fatalf("seed lead: %v", err)
		}
		out = append(out, lead)
	}
	return out
}

func TestListLeads_FiltersAndSearch(t *testing.T) {
	repo := NewInMemoryRepository()
	seeded := seedLeads(t, repo)
	contacted := StatusContacted
	if _, err := repo.Update(context.Background(), seeded[0].ID, &UpdateLeadRequest{Status: &contacted}); err != nil {
		t.Fatalf("update: %v", err)
	}
	srv := newRouter(NewHandler(repo, logging.Discard()))

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?limit=2", 2},
		{"?limit=500", 3},
		{"?status=contacted", 1},
		{"?status=all", 3},
		{"?q=BOB", 1},
		{"?q=clinic.org", 1},
		{"?q=336555", 1},
		{"?q=nobody", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/contact/leads"+tt.query, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var resp ListLeadsResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Leads) != tt.want {
				t.Errorf("expected %d leads, got %d", tt.want, len(resp.Leads))
			}
		})
	}
}

func TestListLeads_RejectsUnknownStatus(t *testing.T) {
	srv := newRouter(NewHandler(NewInMemoryRepository(), logging.Discard()))
	req := httptest.NewRequest(http.MethodGet, "/api/contact/leads?status=lost", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUpdateLead(t *testing.T) {
	repo := NewInMemoryRepository()
	seeded := seedLeads(t, repo)
	srv := newRouter(NewHandler(repo, logging.Discard()))

	put := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/contact/leads/"+id, bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		return w
	}

	w := put(seeded[1].ID, `{"status":"scheduled","notes":"called back"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	lead, _ := repo.GetByID(context.Background(), seeded[1].ID)
	if lead.Status != StatusScheduled || lead.Notes != "called back" {
		t.Errorf("update not applied: %+v", lead)
	}

	if w := put(seeded[1].ID, `{"status":"lost"}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", w.Code)
	}
	if w := put(seeded[1].ID, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty update, got %d", w.Code)
	}
	if w := put("missing", `{"status":"closed"}`); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown lead, got %d", w.Code)
	}
}

func TestLeadMetrics(t *testing.T) {
	repo := NewInMemoryRepository()
	seeded := seedLeads(t, repo)
	scheduled := StatusScheduled
	_, _ = repo.Update(context.Background(), seeded[2].ID, &UpdateLeadRequest{Status: &scheduled})
	srv := newRouter(NewHandler(repo, logging.Discard()))

	req := httptest.NewRequest(http.MethodGet, "/api/contact/leads/metrics", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var m Metrics
	if err := json.NewDecoder(w.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := Metrics{Total: 3, New: 2, Contacted: 0, Scheduled: 1, Urgent: 1}
	if m != want {
		t.Errorf("expected %+v, got %+v", want, m)
	}
}
