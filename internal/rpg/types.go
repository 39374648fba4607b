// Package rpg holds the value types shared by the skill catalog, the oracle
// protocol and the session controller.
package rpg

import "fmt"

// Class is one of the three playable archetypes.
type Class string

const (
	ClassWarrior Class = "Warrior"
	ClassMage    Class = "Mage"
	ClassRogue   Class = "Rogue"
)

// Classes lists every playable class in menu order.
var Classes = []Class{ClassWarrior, ClassMage, ClassRogue}

// ParseClass validates a class name.
func ParseClass(s string) (Class, error) {
	for _, c := range Classes {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown class %q", s)
}

// BaseMP is the class-dependent starting resource pool.
func (c Class) BaseMP() int {
	switch c {
	case ClassMage:
		return 30
	case ClassRogue:
		return 15
	default:
		return 10
	}
}

// ResourceName is the flavour name of the mp pool.
func (c Class) ResourceName() string {
	switch c {
	case ClassMage:
		return "mana"
	case ClassRogue:
		return "energy"
	default:
		return "stamina"
	}
}

// Length is the narrative length category.
type Length string

const (
	LengthQuick   Length = "quick"
	LengthMedium  Length = "medium"
	LengthLong    Length = "long"
	LengthEndless Length = "endless"
)

// Theme is the narrative setting.
type Theme string

const (
	ThemeDarkFantasy  Theme = "dark_fantasy"
	ThemeSteampunk    Theme = "steampunk"
	ThemeCosmicHorror Theme = "cosmic_horror"
	ThemeClassicHigh  Theme = "classic_high"
)

// Mode is the rule-strictness policy.
type Mode string

const (
	// ModeNarrative validates only physical plausibility and disables skills.
	ModeNarrative Mode = "narrative"
	// ModeTactical checks skills, mana and inventory.
	ModeTactical Mode = "tactical"
)

// Config is fixed for the lifetime of a session.
type Config struct {
	Length Length `json:"length" yaml:"length"`
	Theme  Theme  `json:"theme" yaml:"theme"`
	Mode   Mode   `json:"mode" yaml:"mode"`
}

// Validate rejects unknown enum values.
func (c Config) Validate() error {
	switch c.Length {
	case LengthQuick, LengthMedium, LengthLong, LengthEndless:
	default:
		return fmt.Errorf("unknown length %q", c.Length)
	}
	switch c.Theme {
	case ThemeDarkFantasy, ThemeSteampunk, ThemeCosmicHorror, ThemeClassicHigh:
	default:
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	switch c.Mode {
	case ModeNarrative, ModeTactical:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

// Tactical reports whether the skill system and resource costs are active.
func (c Config) Tactical() bool {
	return c.Mode == ModeTactical
}

// Tier is the difficulty classification of a skill.
type Tier string

const (
	TierSimple   Tier = "simple"
	TierMedium   Tier = "medium"
	TierAdvanced Tier = "advanced"
)

// Tiers lists the tiers from weakest to strongest.
var Tiers = []Tier{TierSimple, TierMedium, TierAdvanced}

// SkillType is the mechanical type of a skill.
type SkillType string

const (
	SkillPhysical SkillType = "physical"
	SkillMagical  SkillType = "magical"
	SkillUtility  SkillType = "utility"
	SkillHeal     SkillType = "heal"
)

// Target is the target shape of a skill.
type Target string

const (
	TargetSingle Target = "single"
	TargetArea   Target = "aoe"
	TargetSelf   Target = "self"
	TargetAlly   Target = "ally"
)

// Skill is an immutable catalog entry.
type Skill struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Tier        Tier      `json:"tier"`
	Description string    `json:"description"`
	Class       Class     `json:"class"`
	ManaCost    int       `json:"manaCost"`
	Damage      string    `json:"damage,omitempty"`
	Type        SkillType `json:"type"`
	Target      Target    `json:"target"`
	Effect      string    `json:"effect,omitempty"`
}

// ItemType classifies inventory entries.
type ItemType string

const (
	ItemWeapon     ItemType = "weapon"
	ItemArmor      ItemType = "armor"
	ItemAccessory  ItemType = "accessory"
	ItemConsumable ItemType = "consumable"
)

// ItemEffect is the optional stat bonus of an item.
type ItemEffect struct {
	HP  int `json:"hp,omitempty"`
	Str int `json:"str,omitempty"`
	Def int `json:"def,omitempty"`
}

// Item is an inventory entry reported by the narration oracle.
type Item struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ItemType    `json:"type"`
	Description string      `json:"description"`
	Effect      *ItemEffect `json:"effect,omitempty"`
	Value       int         `json:"value"`
}

// StatusType names a status effect.
type StatusType string

const (
	StatusPoison  StatusType = "poison"
	StatusStun    StatusType = "stun"
	StatusBuffStr StatusType = "buff_str"
	StatusBuffDef StatusType = "buff_def"
	StatusRegen   StatusType = "regen"
)

// StatusEffect is an active condition on the character.
type StatusEffect struct {
	Name     string     `json:"name"`
	Type     StatusType `json:"type"`
	Duration int        `json:"duration"`
	Value    int        `json:"value"`
}

// Choice is a menu option offered by the narrator.
type Choice struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

// ContinueChoice replaces an empty choice list.
var ContinueChoice = Choice{Text: "Continue", Action: "continue"}

// MusicMood tags the soundtrack requested by the narrator.
type MusicMood string

var moods = map[MusicMood]bool{
	"menu": true, "exploration": true, "combat": true, "boss": true, "town": true,
	"dungeon": true, "mystery": true, "victory": true, "defeat": true,
}

// Known reports whether the mood is part of the soundtrack.
func (m MusicMood) Known() bool {
	return moods[m]
}
