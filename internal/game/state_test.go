package game

import (
	"strings"
	"testing"

	"github.com/qninhdt/aethelgard/server/internal/oracle"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
	"github.com/qninhdt/aethelgard/server/internal/skills"
)

// TestNewCharacter tests class dependent starting stats
func TestNewCharacter(t *testing.T) {
	for _, class := range rpg.Classes {
		c := NewCharacter(class, nil)
		if c.MP != class.BaseMP() || c.MaxMP != class.BaseMP() {
			t.Errorf("%s: expected mp %d, got %d/%d", class, class.BaseMP(), c.MP, c.MaxMP)
		}
		if c.HP != 30 || c.MaxHP != 30 {
			t.Errorf("%s: expected hp 30/30, got %d/%d", class, c.HP, c.MaxHP)
		}
		if c.Skills == nil || c.Inventory == nil {
			t.Errorf("%s: expected empty, non-nil lists", class)
		}
	}
}

// TestCloneIsDeep tests that clones share no slices
func TestCloneIsDeep(t *testing.T) {
	c := NewCharacter(rpg.ClassMage, skills.ForClass(rpg.ClassMage)[:1])
	cp := c.Clone()
	cp.Skills[0].Name = "changed"
	cp.Inventory = append(cp.Inventory, rpg.Item{Name: "Orb"})
	if c.Skills[0].Name == "changed" || len(c.Inventory) != 0 {
		t.Error("Expected character clone to be independent")
	}

	s := NewGameState()
	s.Rejection = &Rejection{Reason: "no"}
	sc := s.Clone()
	sc.Rejection.Reason = "yes"
	sc.History = append(sc.History, "x")
	if s.Rejection.Reason != "no" || len(s.History) != 0 {
		t.Error("Expected state clone to be independent")
	}
}

// TestClampAct tests the act bounds
func TestClampAct(t *testing.T) {
	tests := []struct {
		reported, prev, want int
	}{
		{0, 1, 1},
		{2, 1, 2},
		{1, 2, 2},
		{3, 2, 3},
		{7, 1, 3},
		{-4, 2, 2},
	}
	for _, tt := range tests {
		if got := clampAct(tt.reported, tt.prev); got != tt.want {
			t.Errorf("clampAct(%d, %d): expected %d, got %d", tt.reported, tt.prev, tt.want, got)
		}
	}
}

// TestAppendHistory tests the sliding window
func TestAppendHistory(t *testing.T) {
	var h []string
	for i := 0; i < HistoryLimit+3; i++ {
		h = appendHistory(h, strings.Repeat("a", i+1))
	}
	if len(h) != HistoryLimit {
		t.Fatalf("Expected %d entries, got %d", HistoryLimit, len(h))
	}
	if len(h[0]) != 4 {
		t.Errorf("Expected oldest entry evicted, first is %q", h[0])
	}
}

// TestSnapshot tests the context line sent to the oracles
func TestSnapshot(t *testing.T) {
	c := NewCharacter(rpg.ClassRogue, nil)
	s := NewGameState()

	got := Snapshot(c, s, narrativeConfig)
	want := "Class:Rogue, HP:30, MP:15/15, Act:1, Theme:dark_fantasy, Skills: [None (narrative mode)], Inventory: [Empty pockets]. Mode: narrative"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	c.Skills = []rpg.Skill{{Name: "Backstab", ManaCost: 4}}
	c.Inventory = []rpg.Item{{Name: "Lockpick"}, {Name: "Rope"}}
	got = Snapshot(c, s, tacticalConfig)
	if !strings.Contains(got, "Skills: [Backstab (Cost: 4 MP)]") || !strings.Contains(got, "Inventory: [Lockpick, Rope]") {
		t.Errorf("Unexpected snapshot %q", got)
	}
}

// TestApplyEffects tests resource bounds
func TestApplyEffects(t *testing.T) {
	c := NewCharacter(rpg.ClassMage, nil)
	c.MP = 10

	next := applyEffects(c, oracle.Turn{Status: oracle.StatusUpdate{MPChange: -25}}, nil)
	if next.MP != 0 {
		t.Errorf("Expected mp floored at 0, got %d", next.MP)
	}
	next = applyEffects(c, oracle.Turn{Status: oracle.StatusUpdate{MPChange: 50}}, nil)
	if next.MP != c.MaxMP {
		t.Errorf("Expected mp capped at %d, got %d", c.MaxMP, next.MP)
	}
	if c.MP != 10 {
		t.Error("Expected the source character untouched")
	}

	s := skills.ForClass(rpg.ClassMage)[0]
	c.Skills = []rpg.Skill{s}
	next = applyEffects(c, oracle.Turn{}, &s)
	if len(next.Skills) != 1 {
		t.Errorf("Expected a known skill not to be added twice, got %d", len(next.Skills))
	}
}
