package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

func TestUserInfoHandler(t *testing.T) {
	a := NewAuthorizer(testSecret, time.Hour)
	token, err := a.Issue("staff-1", RoleAdmin, "Dr. Rivera")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/__user_info__", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	UserInfoHandler(a).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UserInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Code)
	require.NotNil(t, resp.Data)
	assert.Equal(t, a.EncryptedID("staff-1"), resp.Data.EncryptedID)
	assert.Equal(t, "Dr. Rivera", resp.Data.DisplayName)
	assert.Equal(t, RoleAdmin, resp.Data.Role)
}

func TestUserInfoHandler_Anonymous(t *testing.T) {
	a := NewAuthorizer(testSecret, time.Hour)
	rec := httptest.NewRecorder()
	UserInfoHandler(a).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/__user_info__", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp UserInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Nil(t, resp.Data)
}

func TestRequireRole(t *testing.T) {
	a := NewAuthorizer(testSecret, time.Hour)
	admin, _ := a.Issue("owner", RoleAdmin, "")
	staff, _ := a.Issue("front-desk", RoleStaff, "")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"staff token", "Bearer " + staff, http.StatusForbidden},
		{"admin token", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := RequireRole(a, RoleAdmin, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				claims, ok := ClaimsFromContext(r.Context())
				if !ok || claims.Role != RoleAdmin {
					t.Errorf("expected admin claims in context")
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/admin/api/leads", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want == http.StatusOK, called)
		})
	}
}

func TestAuthenticatePassesAnonymousThrough(t *testing.T) {
	a := NewAuthorizer(testSecret, time.Hour)
	var sawClaims bool
	h := Authenticate(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = ClaimsFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, sawClaims)

	token, _ := a.Issue("visitor-1", RoleVisitor, "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, sawClaims)
}
