package identity

import (
	"encoding/json"
	"net/http"
)

// UserInfo is the payload of the user probe.
type UserInfo struct {
	EncryptedID string `json:"encrypted_id"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Role        Role   `json:"role"`
}

// UserInfoResponse wraps UserInfo in the probe envelope. Code is 0 on success.
type UserInfoResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message,omitempty"`
	Data    *UserInfo `json:"data,omitempty"`
}

// UserInfoHandler serves GET /__user_info__.
func UserInfoHandler(a *Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			var err error
			if claims, err = a.VerifyRequest(r); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(UserInfoResponse{Code: http.StatusUnauthorized, Message: "not signed in"})
				return
			}
		}

		_ = json.NewEncoder(w).Encode(UserInfoResponse{
			Data: &UserInfo{
				EncryptedID: a.EncryptedID(claims.Subject),
				DisplayName: claims.DisplayName,
				PhotoURL:    claims.PhotoURL,
				Role:        claims.Role,
			},
		})
	}
}
