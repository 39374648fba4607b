package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
	"github.com/qninhdt/aethelgard/server/internal/skills"
)

// MaxActionLength bounds free and menu action text in runes.
const MaxActionLength = 500

var skillID = regexp.MustCompile(`^[a-z]_[sma]_[0-9]{1,2}$`)

// ValidateHandleID validates a session handle subject
func ValidateHandleID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("session ID must be a UUID")
	}
	return nil
}

// ValidateAction validates player action text
func ValidateAction(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("action must not be empty")
	}
	if utf8.RuneCountInString(text) > MaxActionLength {
		return fmt.Errorf("action must be at most %d characters", MaxActionLength)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("action must be valid UTF-8")
	}
	return nil
}

// ValidateClass validates and parses a class name
func ValidateClass(name string) (rpg.Class, error) {
	return rpg.ParseClass(name)
}

// ValidateConfig validates the session config enums
func ValidateConfig(cfg rpg.Config) error {
	return cfg.Validate()
}

// ValidateSkillIDs validates starting skill ids for class
func ValidateSkillIDs(class rpg.Class, ids []string) error {
	if len(ids) > len(rpg.Tiers) {
		return fmt.Errorf("at most %d starting skills may be chosen", len(rpg.Tiers))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !skillID.MatchString(id) {
			return fmt.Errorf("skill ID %q is malformed", id)
		}
		if seen[id] {
			return fmt.Errorf("skill ID %q chosen twice", id)
		}
		seen[id] = true
		s, ok := skills.Lookup(id)
		if !ok {
			return fmt.Errorf("unknown skill %q", id)
		}
		if s.Class != class {
			return fmt.Errorf("skill %q belongs to %s", id, s.Class)
		}
	}
	return nil
}

// ValidateRoll validates an optional client-supplied roll
func ValidateRoll(roll *int) error {
	if roll == nil {
		return nil
	}
	if *roll < 1 || *roll > 20 {
		return fmt.Errorf("roll must be between 1 and 20")
	}
	return nil
}
