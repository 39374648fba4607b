package validation

import (
	"strings"
	"testing"

	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

func TestValidateAction(t *testing.T) {
	if err := ValidateAction("  Open the door "); err != nil {
		t.Errorf("Expected valid action, got %v", err)
	}
	if err := ValidateAction("   "); err == nil {
		t.Error("Expected blank action to be rejected")
	}
	if err := ValidateAction(strings.Repeat("á", MaxActionLength+1)); err == nil {
		t.Error("Expected long action to be rejected")
	}
	if err := ValidateAction(strings.Repeat("á", MaxActionLength)); err != nil {
		t.Errorf("Expected length counted in runes, got %v", err)
	}
}

func TestValidateClass(t *testing.T) {
	if c, err := ValidateClass("Mage"); err != nil || c != rpg.ClassMage {
		t.Errorf("Expected Mage, got %s (%v)", c, err)
	}
	if _, err := ValidateClass("mage"); err == nil {
		t.Error("Expected class names to be case sensitive")
	}
}

func TestValidateSkillIDs(t *testing.T) {
	tests := []struct {
		name  string
		class rpg.Class
		ids   []string
		ok    bool
	}{
		{"valid", rpg.ClassWarrior, []string{"w_s_1", "w_m_2"}, true},
		{"empty", rpg.ClassRogue, nil, true},
		{"malformed", rpg.ClassWarrior, []string{"DROP TABLE"}, false},
		{"duplicate", rpg.ClassWarrior, []string{"w_s_1", "w_s_1"}, false},
		{"unknown", rpg.ClassRogue, []string{"r_s_99"}, false},
		{"wrong class", rpg.ClassMage, []string{"w_s_1"}, false},
		{"too many", rpg.ClassWarrior, []string{"w_s_1", "w_s_2", "w_s_3", "w_s_4"}, false},
	}
	for _, tt := range tests {
		err := ValidateSkillIDs(tt.class, tt.ids)
		if (err == nil) != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, err)
		}
	}
}

func TestValidateRoll(t *testing.T) {
	if err := ValidateRoll(nil); err != nil {
		t.Errorf("Expected omitted roll to be valid, got %v", err)
	}
	for _, r := range []int{0, 21} {
		if err := ValidateRoll(&r); err == nil {
			t.Errorf("Expected roll %d to be rejected", r)
		}
	}
}

func TestValidateHandleID(t *testing.T) {
	if err := ValidateHandleID("6f1c1a52-8a5d-4a49-9a55-3f1c2b7d9e10"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := ValidateHandleID("../../etc"); err == nil {
		t.Error("Expected non-UUID to be rejected")
	}
}
