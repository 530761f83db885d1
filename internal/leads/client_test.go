package leads

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

var filledForm = FormFields{
	Name:             "Jane Doe",
	Email:            "jane@example.com",
	Phone:            "9195550123",
	ServiceType:      "Medication Management",
	PreferredContact: "phone",
	Message:          "Evenings work best",
}

func TestContactForm_SuccessClearsFields(t *testing.T) {
	repo := NewInMemoryRepository()
	r := chi.NewRouter()
	r.Post("/api/leads", NewHandler(repo, logging.Discard()).CreateLead)
	srv := httptest.NewServer(r)
	defer srv.Close()

	form := NewContactForm(NewClient(srv.URL, srv.Client()), Attribution{Campaign: "fall", Source: "google"})
	form.Set(filledForm)
	require.NoError(t, form.Submit(context.Background()))

	assert.Equal(t, FormSuccess, form.Status())
	assert.Equal(t, FormFields{PreferredContact: "email"}, form.Fields())

	stored, err := repo.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, DefaultSource, stored[0].Source)
	assert.Equal(t, "fall", stored[0].UTMCampaign)
	assert.Equal(t, "google", stored[0].UTMSource)
	assert.Equal(t, "phone", stored[0].PreferredContact)
}

func TestContactForm_TransportFailureKeepsFields(t *testing.T) {
	failing := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	form := NewContactForm(NewClient("http://leads.invalid", failing), Attribution{})
	form.Set(filledForm)

	err := form.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, FormError, form.Status())
	assert.Equal(t, filledForm, form.Fields())
	assert.Error(t, form.Err())
}

func TestContactForm_RejectedSubmissionKeepsFields(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/leads", NewHandler(NewInMemoryRepository(), logging.Discard()).CreateLead)
	srv := httptest.NewServer(r)
	defer srv.Close()

	form := NewContactForm(NewClient(srv.URL, nil), Attribution{})
	bad := filledForm
	bad.Email = ""
	form.Set(bad)

	err := form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionRejected)
	assert.Equal(t, FormError, form.Status())
	assert.Equal(t, bad, form.Fields())
}

func TestNewContactForm_StartsIdle(t *testing.T) {
	form := NewContactForm(NewClient("http://example.test", nil), Attribution{})
	assert.Equal(t, FormIdle, form.Status())
	assert.Equal(t, "email", form.Fields().PreferredContact)
	assert.NoError(t, form.Err())
}
