package reviews

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

func TestClientApproved_FallsBackOnTransportError(t *testing.T) {
	failing := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})}
	c := NewClient("http://reviews.invalid", failing, logging.Discard())

	got := c.Approved(context.Background())
	assert.Len(t, got, len(DefaultReviews()))
	assert.Equal(t, "Sarah M.", got[0].PatientName)
}

func TestClientApproved_FallsBackOnEmptyAndErrorStatus(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"reviews":[]}`))
	}))
	defer empty.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	for _, srv := range []*httptest.Server{empty, broken} {
		got := NewClient(srv.URL, srv.Client(), logging.Discard()).Approved(context.Background())
		assert.Len(t, got, 5)
	}
}

func TestClientApproved_UsesLiveReviewsAndSubmit(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, logging.Discard())
	r := chi.NewRouter()
	r.Get("/api/reviews", h.List)
	r.Post("/api/reviews", h.Submit)
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), logging.Discard())
	require.NoError(t, c.Submit(context.Background(), SubmitRequest{PatientName: "Pat", Rating: 3, ReviewText: "Good"}))
	require.Error(t, c.Submit(context.Background(), SubmitRequest{PatientName: "Pat", Rating: 9, ReviewText: "Good"}))

	all, _ := repo.List(context.Background(), false)
	_, err := repo.Approve(context.Background(), all[0].ID)
	require.NoError(t, err)

	got := c.Approved(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "Pat", got[0].PatientName)
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, "5.0", AverageRating(nil))
	assert.Equal(t, "5.0", AverageRating(DefaultReviews()))
	assert.Equal(t, "4.5", AverageRating([]*Review{{Rating: 4}, {Rating: 5}}))
	assert.Equal(t, "3.7", AverageRating([]*Review{{Rating: 3}, {Rating: 4}, {Rating: 4}}))
}
