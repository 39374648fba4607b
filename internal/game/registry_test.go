package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qninhdt/aethelgard/server/internal/oracle"
)

func createTestRegistry(t *testing.T, o *fakeOracle, ttl time.Duration, capacity int) (*Registry, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	r := NewRegistry(func() (*Controller, error) {
		return createTestController(t, o, clock), nil
	}, ttl, capacity, nil)
	r.clock = clock.Now
	return r, clock
}

// TestRegistryCreateAndGet tests handle lookup
func TestRegistryCreateAndGet(t *testing.T) {
	r, _ := createTestRegistry(t, &fakeOracle{}, time.Minute, 0)

	id, c, err := r.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, ok := r.Get(id)
	if !ok || got != c {
		t.Error("Expected to find the created controller")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Expected unknown handle to be missing")
	}
}

// TestRegistryCapacity tests the session limit
func TestRegistryCapacity(t *testing.T) {
	r, _ := createTestRegistry(t, &fakeOracle{}, time.Minute, 1)

	if _, _, err := r.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, _, err := r.Create(); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("Expected ErrTooManySessions, got %v", err)
	}
}

// TestRegistrySweep tests idle eviction
func TestRegistrySweep(t *testing.T) {
	o := &fakeOracle{}
	r, clock := createTestRegistry(t, o, time.Minute, 0)
	ctx := context.Background()

	idle, c, _ := r.Create()
	startNarrative(t, c)
	session := c.View().Status.Session
	active, _, _ := r.Create()

	clock.Advance(45 * time.Second)
	r.Get(active)
	clock.Advance(30 * time.Second)

	if n := r.Sweep(ctx); n != 1 {
		t.Errorf("Expected 1 swept session, got %d", n)
	}
	if _, ok := r.Get(idle); ok {
		t.Error("Expected idle session evicted")
	}
	if _, ok := r.Get(active); !ok {
		t.Error("Expected recently seen session kept")
	}
	if len(o.forgotten) != 1 || o.forgotten[0] != session {
		t.Errorf("Expected evicted conversation forgotten, got %v", o.forgotten)
	}
}

// TestRegistryRemove tests explicit removal
func TestRegistryRemove(t *testing.T) {
	r, _ := createTestRegistry(t, &fakeOracle{}, time.Minute, 0)
	id, _, _ := r.Create()

	if !r.Remove(context.Background(), id) {
		t.Error("Expected Remove to report the handle")
	}
	if r.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", r.Len())
	}
	if r.Remove(context.Background(), id) {
		t.Error("Expected second Remove to report false")
	}
}

// TestRegistryShutdown tests that shutdown closes every session and waits for
// image fetches
func TestRegistryShutdown(t *testing.T) {
	o := &fakeOracle{
		turns:     []oracle.Turn{{Story: "opening", ImagePrompt: "a ruined keep"}},
		imageGate: make(chan struct{}),
	}
	r, _ := createTestRegistry(t, o, time.Minute, 0)

	_, c, _ := r.Create()
	startNarrative(t, c)
	session := c.View().Status.Session
	r.Create()

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(o.imageGate)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if n := r.Shutdown(ctx); n != 2 {
		t.Errorf("Expected 2 closed sessions, got %d", n)
	}
	if r.Len() != 0 {
		t.Errorf("Expected an empty registry, got %d", r.Len())
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.prompts) != 1 {
		t.Errorf("Expected the in-flight image fetch to finish, got %d prompts", len(o.prompts))
	}
	if len(o.forgotten) != 1 || o.forgotten[0] != session {
		t.Errorf("Expected the conversation forgotten, got %v", o.forgotten)
	}
}

// TestRegistryShutdownHonoursDeadline tests that a stuck image fetch does not
// hold shutdown past its deadline
func TestRegistryShutdownHonoursDeadline(t *testing.T) {
	o := &fakeOracle{
		turns:     []oracle.Turn{{Story: "opening", ImagePrompt: "a ruined keep"}},
		imageGate: make(chan struct{}),
	}
	defer close(o.imageGate)
	r, _ := createTestRegistry(t, o, time.Minute, 0)

	_, c, _ := r.Create()
	startNarrative(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	r.Shutdown(ctx)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected shutdown to return at the deadline, took %v", elapsed)
	}
}
