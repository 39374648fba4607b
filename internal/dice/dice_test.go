package dice

import (
	"errors"
	"strings"
	"testing"

	"github.com/qninhdt/aethelgard/server/internal/random"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		roll int
		want Outcome
	}{
		{20, OutcomeCriticalSuccess},
		{1, OutcomeCriticalFailure},
		{2, OutcomePartial},
		{5, OutcomePartial},
		{9, OutcomePartial},
		{10, OutcomeSuccess},
		{19, OutcomeSuccess},
		{0, OutcomeUnspecified},
		{21, OutcomeUnspecified},
	}
	for _, tt := range tests {
		if got := Classify(tt.roll); got != tt.want {
			t.Errorf("Classify(%d): expected %v, got %v", tt.roll, tt.want, got)
		}
	}
}

func TestRollStaysOnTheDie(t *testing.T) {
	r := NewRoller(random.NewSeeded(42))
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		v := r.Roll()
		if v < 1 || v > Sides {
			t.Fatalf("Expected roll in [1,20], got %d", v)
		}
		seen[v] = true
	}
	if len(seen) != Sides {
		t.Errorf("Expected all %d faces after 2000 rolls, saw %d", Sides, len(seen))
	}
}

func TestRollUsesSource(t *testing.T) {
	r := NewRoller(&random.Scripted{Ints: []int{19, 0}})
	if got := r.Roll(); got != 20 {
		t.Errorf("Expected 20, got %d", got)
	}
	if got := r.Roll(); got != 1 {
		t.Errorf("Expected 1, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for 0, got %v", err)
	}
	if err := Validate(21); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for 21, got %v", err)
	}
	if err := Validate(7); err != nil {
		t.Errorf("Expected no error for 7, got %v", err)
	}
}

func TestAnnotateCarriesRollAndFraming(t *testing.T) {
	tests := []struct {
		roll    int
		framing string
	}{
		{20, "critical success"},
		{1, "critical failure"},
		{10, "success"},
		{5, "partial success"},
	}
	for _, tt := range tests {
		got := Annotate("Open the door", tt.roll)
		if !strings.HasPrefix(got, "Open the door (Dice roll [d20]: ") {
			t.Errorf("Unexpected annotation prefix: %q", got)
		}
		if !strings.Contains(got, tt.framing) {
			t.Errorf("Expected %q in annotation for %d, got %q", tt.framing, tt.roll, got)
		}
	}
	if got := Annotate("x", 13); !strings.Contains(got, ": 13 ") {
		t.Errorf("Expected literal roll in %q", got)
	}
}
