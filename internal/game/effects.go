package game

import (
	"github.com/google/uuid"
	"github.com/qninhdt/aethelgard/server/internal/oracle"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// applyEffects returns a copy of c with the turn's deltas, items and learned
// skill folded in. Gold and xp never drop below zero.
func applyEffects(c *Character, t oracle.Turn, learned *rpg.Skill) *Character {
	next := c.Clone()
	st := t.Status

	next.HP = clamp(c.HP+st.HPChange, 0, c.MaxHP)
	next.MP = clamp(c.MP+st.MPChange, 0, c.MaxMP)
	next.Gold = max(0, c.Gold+st.GoldChange)
	next.XP = max(0, c.XP+st.XPChange)

	for _, it := range t.Items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		next.Inventory = append(next.Inventory, it)
	}

	if learned != nil && !c.HasSkill(learned.ID) {
		next.Skills = append(next.Skills, *learned)
	}
	return next
}

// hpCue is the audio cue for an hp delta, or "" when unchanged.
func hpCue(delta int) Sound {
	switch {
	case delta > 0:
		return SoundHeal
	case delta < 0:
		return SoundHit
	default:
		return ""
	}
}
