// Package skills holds the static skill catalog, the start-of-game selection
// budget, and the engine that draws new skills during Act 2.
package skills

import (
	"errors"
	"fmt"

	"github.com/qninhdt/aethelgard/server/internal/random"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

var (
	// ErrUnknownSkill is returned for ids missing from the catalog.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrWrongClass is returned when a skill belongs to another class.
	ErrWrongClass = errors.New("skill belongs to another class")
	// ErrBudgetExceeded is returned when a tier's selection budget is full.
	ErrBudgetExceeded = errors.New("tier budget exceeded")
	// ErrIncomplete is returned when a selection does not fill its budget.
	ErrIncomplete = errors.New("skill selection incomplete")
)

// DefaultEscalationChance is the probability threshold above which a draw
// escalates to the next tier.
const DefaultEscalationChance = 0.3

var byID = func() map[string]rpg.Skill {
	m := make(map[string]rpg.Skill)
	for _, list := range [][]rpg.Skill{warrior, mage, rogue} {
		for _, s := range list {
			m[s.ID] = s
		}
	}
	return m
}()

// ForClass returns a copy of the catalog entries for class, in catalog order.
func ForClass(class rpg.Class) []rpg.Skill {
	var src []rpg.Skill
	switch class {
	case rpg.ClassWarrior:
		src = warrior
	case rpg.ClassMage:
		src = mage
	case rpg.ClassRogue:
		src = rogue
	}
	out := make([]rpg.Skill, len(src))
	copy(out, src)
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (rpg.Skill, bool) {
	s, ok := byID[id]
	return s, ok
}

// Budget is the number of starting skills allowed per tier.
type Budget map[rpg.Tier]int

// BudgetFor returns the start-of-game budget for a length.
func BudgetFor(length rpg.Length) Budget {
	switch length {
	case rpg.LengthQuick:
		return Budget{rpg.TierSimple: 1, rpg.TierMedium: 1, rpg.TierAdvanced: 1}
	case rpg.LengthMedium:
		return Budget{rpg.TierSimple: 1, rpg.TierMedium: 1, rpg.TierAdvanced: 0}
	default:
		return Budget{rpg.TierSimple: 1, rpg.TierMedium: 0, rpg.TierAdvanced: 0}
	}
}

// Total is the number of skills the budget asks for.
func (b Budget) Total() int {
	n := 0
	for _, v := range b {
		n += v
	}
	return n
}

// EventCap is how many skills may be learned during Act 2 for a length.
func EventCap(length rpg.Length) int {
	switch length {
	case rpg.LengthQuick:
		return 1
	case rpg.LengthMedium:
		return 2
	default:
		return 3
	}
}

// Selection tracks the starting skills picked before a tactical game begins.
type Selection struct {
	class  rpg.Class
	budget Budget
	picked []rpg.Skill
}

// NewSelection starts an empty selection for class under length's budget.
func NewSelection(class rpg.Class, length rpg.Length) *Selection {
	return &Selection{class: class, budget: BudgetFor(length)}
}

// Toggle deselects id when already picked, otherwise selects it if its tier
// still has room.
func (s *Selection) Toggle(id string) error {
	for i, p := range s.picked {
		if p.ID == id {
			s.picked = append(s.picked[:i], s.picked[i+1:]...)
			return nil
		}
	}
	skill, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSkill, id)
	}
	if skill.Class != s.class {
		return fmt.Errorf("%w: %s is a %s skill", ErrWrongClass, id, skill.Class)
	}
	if s.count(skill.Tier) >= s.budget[skill.Tier] {
		return fmt.Errorf("%w: %s allows %d", ErrBudgetExceeded, skill.Tier, s.budget[skill.Tier])
	}
	s.picked = append(s.picked, skill)
	return nil
}

func (s *Selection) count(tier rpg.Tier) int {
	n := 0
	for _, p := range s.picked {
		if p.Tier == tier {
			n++
		}
	}
	return n
}

// Ready reports whether every tier's budget is exactly filled.
func (s *Selection) Ready() bool {
	for _, tier := range rpg.Tiers {
		if s.count(tier) != s.budget[tier] {
			return false
		}
	}
	return true
}

// Skills returns the picked skills in selection order.
func (s *Selection) Skills() []rpg.Skill {
	out := make([]rpg.Skill, len(s.picked))
	copy(out, s.picked)
	return out
}

// Select builds a complete selection from ids, failing on the first invalid
// pick or when the budget is not exactly filled.
func Select(class rpg.Class, length rpg.Length, ids []string) ([]rpg.Skill, error) {
	sel := NewSelection(class, length)
	for _, id := range ids {
		if err := sel.Toggle(id); err != nil {
			return nil, err
		}
	}
	if !sel.Ready() {
		return nil, fmt.Errorf("%w: want %d skills", ErrIncomplete, sel.budget.Total())
	}
	return sel.Skills(), nil
}

// Acquirer draws a new skill when the narrator grants one.
type Acquirer struct {
	src    random.Source
	chance float64
}

// NewAcquirer creates an engine drawing from src. chance is the escalation
// threshold; values outside (0,1) fall back to DefaultEscalationChance.
func NewAcquirer(src random.Source, chance float64) *Acquirer {
	if chance <= 0 || chance >= 1 {
		chance = DefaultEscalationChance
	}
	return &Acquirer{src: src, chance: chance}
}

// Draw picks an unknown skill for class, or reports false when narrative mode
// is active or nothing is left to learn.
func (a *Acquirer) Draw(mode rpg.Mode, class rpg.Class, known []rpg.Skill) (rpg.Skill, bool) {
	if mode != rpg.ModeTactical {
		return rpg.Skill{}, false
	}

	knownIDs := make(map[string]bool, len(known))
	knownTier := make(map[rpg.Tier]bool)
	for _, k := range known {
		knownIDs[k.ID] = true
		knownTier[k.Tier] = true
	}

	var unlearned []rpg.Skill
	for _, s := range ForClass(class) {
		if !knownIDs[s.ID] {
			unlearned = append(unlearned, s)
		}
	}
	if len(unlearned) == 0 {
		return rpg.Skill{}, false
	}

	pool := ofTier(unlearned, rpg.TierSimple)
	if len(pool) == 0 || (knownTier[rpg.TierSimple] && a.src.Float64() > a.chance) {
		pool = ofTier(unlearned, rpg.TierMedium)
	}
	if len(pool) == 0 || (knownTier[rpg.TierMedium] && a.src.Float64() > a.chance) {
		pool = ofTier(unlearned, rpg.TierAdvanced)
	}
	if len(pool) == 0 {
		pool = unlearned
	}

	return pool[a.src.IntN(len(pool))], true
}

func ofTier(list []rpg.Skill, tier rpg.Tier) []rpg.Skill {
	var out []rpg.Skill
	for _, s := range list {
		if s.Tier == tier {
			out = append(out, s)
		}
	}
	return out
}
