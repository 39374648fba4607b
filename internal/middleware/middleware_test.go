package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(HandleFrom(r.Context())))
	})
}

// TestRateLimiter tests per client buckets
func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("Expected burst of 2 to be allowed")
	}
	if rl.Allow("a") {
		t.Error("Expected third request to be limited")
	}
	if !rl.Allow("b") {
		t.Error("Expected another client to have its own bucket")
	}
}

// TestRateLimiterMiddleware tests the 429 response
func TestRateLimiterMiddleware(t *testing.T) {
	h := NewRateLimiter(1, 1).Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header")
	}
}

// TestRateLimiterIgnoresSessionHeader tests that rotating handles from one
// address share the address bucket
func TestRateLimiterIgnoresSessionHeader(t *testing.T) {
	rl := NewRateLimiter(1, 5)
	h := rl.Middleware(okHandler())

	limited := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set(SessionHeader, fmt.Sprintf("forged-%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited < 40 {
		t.Errorf("Expected forged handles to be limited, got %d of 50 limited", limited)
	}
	if len(rl.clients) != 1 {
		t.Errorf("Expected a single bucket, got %d", len(rl.clients))
	}
}

// TestGetIP tests forwarded header parsing
func TestGetIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	if ip := getIP(req); ip != "1.2.3.4" {
		t.Errorf("Expected 1.2.3.4, got %s", ip)
	}
}

// TestPrune tests idle client eviction
func TestPrune(t *testing.T) {
	rl := NewRateLimiter(5, 5)
	rl.Allow("a")
	rl.clients["a"].lastSeen = time.Now().Add(-time.Hour)
	rl.Allow("b")

	if n := rl.Prune(time.Minute); n != 1 {
		t.Errorf("Expected 1 pruned client, got %d", n)
	}
	if _, ok := rl.clients["b"]; !ok {
		t.Error("Expected recent client kept")
	}
}

// TestHandles tests issue and verify
func TestHandles(t *testing.T) {
	h := NewHandles("secret", time.Hour)

	tok, err := h.Issue("abc")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	id, err := h.Verify(tok)
	if err != nil || id != "abc" {
		t.Errorf("Expected abc, got %s (%v)", id, err)
	}

	if _, err := NewHandles("other", time.Hour).Verify(tok); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Expected ErrInvalidHandle for a forged token, got %v", err)
	}
	if _, err := h.Verify(""); !errors.Is(err, ErrMissingHandle) {
		t.Errorf("Expected ErrMissingHandle, got %v", err)
	}
}

// TestHandleExpiry tests that stale handles are refused
func TestHandleExpiry(t *testing.T) {
	h := NewHandles("secret", time.Minute)
	tok, _ := h.Issue("abc")

	h.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := h.Verify(tok); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Expected expired token to be invalid, got %v", err)
	}
}

// TestHandleRefresh tests that an active client outlives the handle ttl
func TestHandleRefresh(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	h := NewHandles("secret", time.Hour)
	h.now = func() time.Time { return now }
	handler := h.Middleware(okHandler())

	tok, err := h.Issue("abc")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// one request every 40 minutes for over two hours
	for i := 1; i <= 4; i++ {
		now = start.Add(time.Duration(i) * 40 * time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(SessionHeader, tok)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200 at request %d, got %d", i, rec.Code)
		}
		fresh := rec.Header().Get(SessionHeader)
		if fresh == "" {
			t.Fatalf("Expected a refreshed handle at request %d", i)
		}
		tok = fresh
	}

	if id, err := h.Verify(tok); err != nil || id != "abc" {
		t.Errorf("Expected the refreshed handle to verify as abc, got %s (%v)", id, err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := h.Verify(tok); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Expected the handle to lapse after an idle ttl, got %v", err)
	}
}

// TestAuthMiddleware tests the 401 response and context propagation
func TestAuthMiddleware(t *testing.T) {
	h := NewHandles("secret", 0)
	handler := h.Middleware(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}

	tok, _ := h.Issue("abc")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, tok)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "abc" {
		t.Errorf("Expected 200 with abc, got %d %q", rec.Code, rec.Body.String())
	}
}

// TestSecurityHeaders tests header injection
func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeadersMiddleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected nosniff header")
	}
}
