package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("identity: missing bearer token")
	ErrInvalidToken = errors.New("identity: invalid token")
	ErrDisabled     = errors.New("identity: signing secret not configured")
	ErrForbidden    = errors.New("identity: insufficient role")
)

const issuer = "telepsych-site"

// Authorizer issues and verifies HS256 tokens.
type Authorizer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthorizer returns an Authorizer. An empty secret rejects every token.
func NewAuthorizer(secret string, ttl time.Duration) *Authorizer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Authorizer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for subject with the given role.
func (a *Authorizer) Issue(subject string, role Role, displayName string) (string, error) {
	if len(a.secret) == 0 {
		return "", ErrDisabled
	}
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("identity: subject required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("identity: unknown role %q", role)
	}
	now := a.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Role:        role,
		DisplayName: displayName,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("identity: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. A token without a known role
// is rejected.
func (a *Authorizer) Verify(tokenString string) (*Claims, error) {
	if len(a.secret) == 0 {
		return nil, ErrDisabled
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRequest reads the bearer token from the Authorization header.
func (a *Authorizer) VerifyRequest(r *http.Request) (*Claims, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return nil, ErrMissingToken
	}
	return a.Verify(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
}

// EncryptedID is an opaque stable id for subject, safe to hand to the browser.
func (a *Authorizer) EncryptedID(subject string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(subject))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}
