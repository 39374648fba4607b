package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/qninhdt/aethelgard/server/internal/game"
	mw "github.com/qninhdt/aethelgard/server/internal/middleware"
	"github.com/qninhdt/aethelgard/server/internal/oracle"
	"github.com/qninhdt/aethelgard/server/internal/random"
)

// stubOracle answers every call with a fixed turn and verdict.
type stubOracle struct {
	mu       sync.Mutex
	turn     oracle.Turn
	verdict  oracle.Verdict
	failNext bool
	calls    int
}

func (s *stubOracle) result() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failNext {
		s.failNext = false
		return oracle.ErrMalformedResponse
	}
	return nil
}

func (s *stubOracle) Validate(ctx context.Context, req oracle.ValidationRequest) (oracle.Verdict, error) {
	if err := s.result(); err != nil {
		return oracle.Verdict{}, err
	}
	return s.verdict, nil
}

func (s *stubOracle) StartNarrative(ctx context.Context, req oracle.NarrationRequest) (oracle.Turn, error) {
	if err := s.result(); err != nil {
		return oracle.Turn{}, err
	}
	return s.turn, nil
}

func (s *stubOracle) AdvanceNarrative(ctx context.Context, req oracle.NarrationRequest) (oracle.Turn, error) {
	if err := s.result(); err != nil {
		return oracle.Turn{}, err
	}
	return s.turn, nil
}

func (s *stubOracle) GenerateImage(ctx context.Context, prompt string) string {
	return oracle.Placeholder
}

func (s *stubOracle) Forget(ctx context.Context, session string) error {
	return nil
}

// createTestServer builds a server backed by o.
func createTestServer(t *testing.T, o *stubOracle) (*Server, *game.Registry) {
	t.Helper()
	registry := game.NewRegistry(func() (*game.Controller, error) {
		return game.NewController(o, game.Options{
			Random: &random.Scripted{Ints: []int{16}},
		})
	}, time.Hour, 10, nil)
	return NewServer(registry, mw.NewHandles("test-secret", time.Hour), mw.NewRateLimiter(1000, 1000), nil), registry
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do sends a request and decodes the envelope.
func do(t *testing.T, s *Server, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(mw.SessionHeader, token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func startBody() map[string]interface{} {
	return map[string]interface{}{
		"class":  "Mage",
		"config": map[string]string{"length": "long", "theme": "cosmic_horror", "mode": "narrative"},
	}
}

// createSession starts a session and returns its token.
func createSession(t *testing.T, s *Server) string {
	t.Helper()
	code, env := do(t, s, http.MethodPost, "/api/sessions", "", startBody())
	if code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (%s)", code, env.Error)
	}
	var data struct {
		Token string    `json:"token"`
		View  game.View `json:"view"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	return data.Token
}
