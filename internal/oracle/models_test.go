package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestOpenRouterComplete(t *testing.T) {
	var got CompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("Unexpected auth header %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"story\": \"hi\"}"}}]}`))
	}))
	defer srv.Close()

	m := NewOpenRouterModel(NewOpenRouterClient("key", srv.URL), "narrator-model", "validator-model", "image-model")
	text, err := m.Complete(context.Background(), Call{
		Kind:    KindNarration,
		System:  "sys",
		History: []Message{{RoleUser, "u"}, {RoleModel, "m"}},
		User:    "now",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != `{"story": "hi"}` {
		t.Errorf("Unexpected text %q", text)
	}
	if got.Model != "narrator-model" {
		t.Errorf("Expected narrator model, got %q", got.Model)
	}
	roles := []string{"system", "user", "assistant", "user"}
	if len(got.Messages) != len(roles) {
		t.Fatalf("Expected %d messages, got %d", len(roles), len(got.Messages))
	}
	for i, r := range roles {
		if got.Messages[i].Role != r {
			t.Errorf("Message %d: expected role %s, got %s", i, r, got.Messages[i].Role)
		}
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Error("Expected JSON response format")
	}
}

func TestOpenRouterValidatorModelAndErrors(t *testing.T) {
	var model string
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		model = req.Model
		w.WriteHeader(status)
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{}"}}]}`))
	}))
	defer srv.Close()

	m := NewOpenRouterModel(NewOpenRouterClient("key", srv.URL), "n", "v", "i")
	if _, err := m.Complete(context.Background(), Call{Kind: KindValidation}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if model != "v" {
		t.Errorf("Expected validator model, got %q", model)
	}

	status = http.StatusBadGateway
	if _, err := m.Complete(context.Background(), Call{}); err == nil {
		t.Error("Expected error on non-200 status")
	}

	noKey := NewOpenRouterModel(NewOpenRouterClient("", srv.URL), "n", "v", "i")
	if _, err := noKey.Complete(context.Background(), Call{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestOpenRouterImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Modalities) == 0 {
			w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "no"}}]}`))
			return
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "", "images": [{"type": "image_url", "image_url": {"url": "data:image/png;base64,AAAA"}}]}}]}`))
	}))
	defer srv.Close()

	m := NewOpenRouterModel(NewOpenRouterClient("key", srv.URL), "n", "v", "i")
	url, err := m.Image(context.Background(), "castle")
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if url != "data:image/png;base64,AAAA" {
		t.Errorf("Unexpected url %q", url)
	}
}

// TestGeminiLive exercises the real API and is skipped without a key.
func TestGeminiLive(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Skip("GEMINI_API_KEY not set, skipping live test")
	}

	ctx := context.Background()
	g, err := NewGeminiModel(ctx, key, "gemini-2.5-flash", "gemini-2.5-flash", "gemini-2.0-flash-preview-image-generation")
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer g.Close()

	svc := NewService(g, NewMemoryStore(20), nil)
	v, err := svc.Validate(ctx, ValidationRequest{Action: "flap my arms and fly to the moon", Context: "Class: Warrior", Mode: "narrative"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	t.Logf("verdict: %+v", v)
}

func TestGeminiRequiresKey(t *testing.T) {
	if _, err := NewGeminiModel(context.Background(), "", "a", "b", "c"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}
