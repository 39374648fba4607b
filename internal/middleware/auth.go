package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionHeader carries the signed session handle.
const SessionHeader = "X-Session-Token"

const issuer = "aethelgard"

var (
	// ErrMissingHandle is returned when a request carries no session handle.
	ErrMissingHandle = errors.New("missing session token")
	// ErrInvalidHandle is returned for forged, expired or malformed handles.
	ErrInvalidHandle = errors.New("invalid session token")
)

type ctxKey struct{}

// Handles signs and verifies session handles. A handle is an HS256 token whose
// subject is the registry id of a controller.
type Handles struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHandles creates a signer. ttl <= 0 issues handles without expiry.
func NewHandles(secret string, ttl time.Duration) *Handles {
	return &Handles{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a handle for id.
func (h *Handles) Issue(id string) (string, error) {
	now := h.now()
	claims := jwt.RegisteredClaims{
		Subject:  id,
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if h.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(h.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the id a handle was issued for.
func (h *Handles) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrMissingHandle
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return h.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(h.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidHandle
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid handle and stores its id in
// the request context. Each accepted request is answered with a freshly
// signed handle in the SessionHeader response header, which slides the
// expiry forward while the client stays active.
func (h *Handles) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.Verify(r.Header.Get(SessionHeader))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"error":"invalid or missing session token"}`))
			return
		}
		if fresh, err := h.Issue(id); err == nil {
			w.Header().Set(SessionHeader, fresh)
		}
		next.ServeHTTP(w, r.WithContext(WithHandle(r.Context(), id)))
	})
}

// WithHandle returns ctx carrying a verified handle id.
func WithHandle(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// HandleFrom returns the verified handle id stored by Middleware.
func HandleFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
