package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/qninhdt/aethelgard/server/internal/oracle"
	"github.com/qninhdt/aethelgard/server/internal/random"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

// fakeOracle replays scripted turns and verdicts and records every request.
type fakeOracle struct {
	mu sync.Mutex

	turns    []oracle.Turn
	errs     []error
	verdicts []oracle.Verdict
	image    string

	// gate, when set, holds narration calls until it is closed or fed.
	gate    chan struct{}
	entered chan struct{}
	// imageGate, when set, holds image fetches until it is closed.
	imageGate chan struct{}

	starts      []oracle.NarrationRequest
	advances    []oracle.NarrationRequest
	validations []oracle.ValidationRequest
	prompts     []string
	forgotten   []string
}

func (f *fakeOracle) next() (oracle.Turn, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return oracle.Turn{}, err
		}
	}
	if len(f.turns) == 0 {
		return oracle.Turn{Story: "The road goes on."}, nil
	}
	t := f.turns[0]
	if len(f.turns) > 1 {
		f.turns = f.turns[1:]
	}
	return t, nil
}

func (f *fakeOracle) wait(ctx context.Context) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
		}
	}
}

func (f *fakeOracle) Validate(ctx context.Context, req oracle.ValidationRequest) (oracle.Verdict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validations = append(f.validations, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return oracle.Verdict{}, err
		}
	}
	if len(f.verdicts) == 0 {
		return oracle.Verdict{Plausible: true}, nil
	}
	v := f.verdicts[0]
	if len(f.verdicts) > 1 {
		f.verdicts = f.verdicts[1:]
	}
	return v, nil
}

func (f *fakeOracle) StartNarrative(ctx context.Context, req oracle.NarrationRequest) (oracle.Turn, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, req)
	return f.next()
}

func (f *fakeOracle) AdvanceNarrative(ctx context.Context, req oracle.NarrationRequest) (oracle.Turn, error) {
	f.wait(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advances = append(f.advances, req)
	return f.next()
}

func (f *fakeOracle) GenerateImage(ctx context.Context, prompt string) string {
	if f.imageGate != nil {
		<-f.imageGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.image == "" {
		return oracle.Placeholder
	}
	return f.image
}

func (f *fakeOracle) Forget(ctx context.Context, session string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotten = append(f.forgotten, session)
	return nil
}

func (f *fakeOracle) advanceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.advances)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var (
	narrativeConfig = rpg.Config{Length: rpg.LengthLong, Theme: rpg.ThemeDarkFantasy, Mode: rpg.ModeNarrative}
	tacticalConfig  = rpg.Config{Length: rpg.LengthMedium, Theme: rpg.ThemeSteampunk, Mode: rpg.ModeTactical}
)

// createTestController builds a controller with deterministic randomness.
func createTestController(t *testing.T, o *fakeOracle, clock *fakeClock) *Controller {
	t.Helper()
	if clock == nil {
		clock = newFakeClock()
	}
	c, err := NewController(o, Options{
		Random: &random.Scripted{Floats: []float64{0.99}, Ints: []int{0}},
		Clock:  clock.Now,
	})
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	return c
}

// startNarrative starts a narrative-mode game and fails the test unless it
// reached Idle.
func startNarrative(t *testing.T, c *Controller) View {
	t.Helper()
	v, err := c.StartGame(context.Background(), rpg.ClassWarrior, narrativeConfig, nil)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if v.Status.Phase != PhaseIdle {
		t.Fatalf("Expected idle after start, got %s (%s)", v.Status.Phase, v.Status.Error)
	}
	return v
}

// playMenuTurn submits a menu action and resolves it with roll.
func playMenuTurn(t *testing.T, c *Controller, action string, roll int) {
	t.Helper()
	ctx := context.Background()
	if err := c.SubmitMenuAction(ctx, action); err != nil {
		t.Fatalf("SubmitMenuAction failed: %v", err)
	}
	if err := c.ResolveDice(ctx, roll); err != nil {
		t.Fatalf("ResolveDice failed: %v", err)
	}
}
