package game

import (
	"fmt"
	"strings"

	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

// HistoryLimit is how many past narrations a GameState keeps.
const HistoryLimit = 20

// Character is the player's avatar. Controllers never mutate a published
// Character; every update builds a fresh copy.
type Character struct {
	Name      string              `json:"name"`
	Class     rpg.Class           `json:"class"`
	HP        int                 `json:"hp"`
	MaxHP     int                 `json:"maxHp"`
	MP        int                 `json:"mp"`
	MaxMP     int                 `json:"maxMp"`
	Level     int                 `json:"level"`
	Gold      int                 `json:"gold"`
	XP        int                 `json:"xp"`
	Strength  int                 `json:"strength"`
	Defense   int                 `json:"defense"`
	Inventory []rpg.Item          `json:"inventory"`
	Equipment map[string]rpg.Item `json:"equipment,omitempty"`
	Status    []rpg.StatusEffect  `json:"status"`
	Skills    []rpg.Skill         `json:"skills"`
}

// NewCharacter creates a level 1 hero of class knowing skills.
func NewCharacter(class rpg.Class, skills []rpg.Skill) *Character {
	mp := class.BaseMP()
	return &Character{
		Name:      "Hero",
		Class:     class,
		HP:        30,
		MaxHP:     30,
		MP:        mp,
		MaxMP:     mp,
		Level:     1,
		Gold:      20,
		Strength:  14,
		Defense:   8,
		Inventory: []rpg.Item{},
		Status:    []rpg.StatusEffect{},
		Skills:    append([]rpg.Skill{}, skills...),
	}
}

// Clone returns a deep copy.
func (c *Character) Clone() *Character {
	cp := *c
	cp.Inventory = append([]rpg.Item{}, c.Inventory...)
	cp.Status = append([]rpg.StatusEffect{}, c.Status...)
	cp.Skills = append([]rpg.Skill{}, c.Skills...)
	if c.Equipment != nil {
		cp.Equipment = make(map[string]rpg.Item, len(c.Equipment))
		for k, v := range c.Equipment {
			cp.Equipment[k] = v
		}
	}
	return &cp
}

// HasSkill reports whether the character knows id.
func (c *Character) HasSkill(id string) bool {
	for _, s := range c.Skills {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Rejection is the validator's refusal shown until the next action.
type Rejection struct {
	Reason string `json:"reason"`
	Motive string `json:"motive"`
}

// GameState is the narrative side of a session.
type GameState struct {
	Story         string        `json:"story"`
	Choices       []rpg.Choice  `json:"choices"`
	History       []string      `json:"history"`
	GameOver      bool          `json:"gameOver"`
	CurrentAct    int           `json:"currentAct"`
	Rejection     *Rejection    `json:"rejection,omitempty"`
	SkillsLearned int           `json:"skillsLearned"`
	Mood          rpg.MusicMood `json:"musicMood,omitempty"`
	Image         string        `json:"image,omitempty"`
}

// NewGameState creates the state of a game that has not been narrated yet.
func NewGameState() *GameState {
	return &GameState{
		Choices:    []rpg.Choice{},
		History:    []string{},
		CurrentAct: 1,
		Mood:       "exploration",
	}
}

// Clone returns a deep copy.
func (s *GameState) Clone() *GameState {
	cp := *s
	cp.Choices = append([]rpg.Choice{}, s.Choices...)
	cp.History = append([]string{}, s.History...)
	if s.Rejection != nil {
		r := *s.Rejection
		cp.Rejection = &r
	}
	return &cp
}

// appendHistory adds entry and evicts the oldest beyond HistoryLimit.
func appendHistory(history []string, entry string) []string {
	out := append(append([]string{}, history...), entry)
	if len(out) > HistoryLimit {
		out = out[len(out)-HistoryLimit:]
	}
	return out
}

// clampAct keeps the act within [prev, 3]. A missing or regressing report
// keeps prev.
func clampAct(reported, prev int) int {
	act := reported
	if act < prev {
		act = prev
	}
	if act > 3 {
		act = 3
	}
	if act < 1 {
		act = 1
	}
	return act
}

// Snapshot renders the character sheet and game context sent to the oracles.
func Snapshot(c *Character, s *GameState, cfg rpg.Config) string {
	skills := "None (narrative mode)"
	if len(c.Skills) > 0 {
		names := make([]string, len(c.Skills))
		for i, sk := range c.Skills {
			names[i] = SkillLabel(sk)
		}
		skills = strings.Join(names, ", ")
	}

	inventory := "Empty pockets"
	if len(c.Inventory) > 0 {
		names := make([]string, len(c.Inventory))
		for i, it := range c.Inventory {
			names[i] = it.Name
		}
		inventory = strings.Join(names, ", ")
	}

	return fmt.Sprintf("Class:%s, HP:%d, MP:%d/%d, Act:%d, Theme:%s, Skills: [%s], Inventory: [%s]. Mode: %s",
		c.Class, c.HP, c.MP, c.MaxMP, s.CurrentAct, cfg.Theme, skills, inventory, cfg.Mode)
}

// SkillLabel is how a skill is named to the oracles.
func SkillLabel(s rpg.Skill) string {
	return fmt.Sprintf("%s (Cost: %d MP)", s.Name, s.ManaCost)
}
