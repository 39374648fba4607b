package oracle

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

type wireStatus struct {
	HPChange   *float64 `json:"hpChange"`
	MPChange   *float64 `json:"mpChange"`
	GoldChange *float64 `json:"goldChange"`
	XPChange   *float64 `json:"xpChange"`
	CurrentAct *float64 `json:"currentAct"`
	GameOver   *bool    `json:"gameOver"`
	LearnSkill *bool    `json:"learnSkill"`
}

type wireEffect struct {
	HP  *float64 `json:"hp"`
	Str *float64 `json:"str"`
	Def *float64 `json:"def"`
}

type wireItem struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Effect      *wireEffect `json:"effect"`
	Value       *float64    `json:"value"`
}

type wireTurn struct {
	Story        *string      `json:"story"`
	Choices      []rpg.Choice `json:"choices"`
	ImagePrompt  string       `json:"imagePrompt"`
	MusicMood    string       `json:"musicMood"`
	StatusUpdate *wireStatus  `json:"statusUpdate"`
	ItemsFound   []wireItem   `json:"itemsFound"`
}

type wireVerdict struct {
	IsPlausible *bool  `json:"isPlausible"`
	Reason      string `json:"reason"`
	Motive      string `json:"motive"`
}

// decode runs the repair ladder: the outermost object, then the raw text
// closed with a brace or a quote and a brace when a story field is present.
func decode(text string, v any) error {
	text = strings.TrimSpace(text)

	candidate := text
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			candidate = text[start : end+1]
		}
	}
	err := json.Unmarshal([]byte(candidate), v)
	if err == nil {
		return nil
	}

	if strings.Contains(text, `"story"`) {
		if start := strings.Index(text, "{"); start >= 0 {
			tail := text[start:]
			for _, closer := range []string{"}", `"}`} {
				if json.Unmarshal([]byte(tail+closer), v) == nil {
					return nil
				}
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
}

func round(f *float64) int {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return 0
	}
	return int(math.Round(*f))
}

func flag(b *bool) bool {
	return b != nil && *b
}

// ParseTurn decodes a narration response. Only the story is mandatory.
func ParseTurn(text string) (Turn, error) {
	var w wireTurn
	if err := decode(text, &w); err != nil {
		return Turn{}, err
	}
	if w.Story == nil {
		return Turn{}, fmt.Errorf("%w: missing story", ErrMalformedResponse)
	}

	t := Turn{
		Story:       *w.Story,
		ImagePrompt: strings.TrimSpace(w.ImagePrompt),
		MusicMood:   rpg.MusicMood(w.MusicMood),
	}
	for _, c := range w.Choices {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		if c.Action == "" {
			c.Action = c.Text
		}
		t.Choices = append(t.Choices, c)
	}
	if len(t.Choices) == 0 {
		t.Choices = []rpg.Choice{rpg.ContinueChoice}
	}
	if !t.MusicMood.Known() {
		t.MusicMood = ""
	}

	if s := w.StatusUpdate; s != nil {
		t.Status = StatusUpdate{
			HPChange:   round(s.HPChange),
			MPChange:   round(s.MPChange),
			GoldChange: round(s.GoldChange),
			XPChange:   round(s.XPChange),
			CurrentAct: round(s.CurrentAct),
			GameOver:   flag(s.GameOver),
			LearnSkill: flag(s.LearnSkill),
		}
	}

	for _, it := range w.ItemsFound {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		item := rpg.Item{
			ID:          it.ID,
			Name:        it.Name,
			Type:        rpg.ItemType(it.Type),
			Description: it.Description,
			Value:       round(it.Value),
		}
		if it.Effect != nil {
			item.Effect = &rpg.ItemEffect{
				HP:  round(it.Effect.HP),
				Str: round(it.Effect.Str),
				Def: round(it.Effect.Def),
			}
		}
		t.Items = append(t.Items, item)
	}

	return t, nil
}

// ParseVerdict decodes a validator response. A verdict that does not state
// plausibility counts as a rejection.
func ParseVerdict(text string) (Verdict, error) {
	var w wireVerdict
	if err := decode(text, &w); err != nil {
		return Verdict{}, err
	}
	v := Verdict{Plausible: flag(w.IsPlausible), Reason: w.Reason, Motive: w.Motive}
	if !v.Plausible {
		if v.Reason == "" {
			v.Reason = DefaultRejectionReason
		}
		if v.Motive == "" {
			v.Motive = DefaultRejectionMotive
		}
	}
	return v, nil
}
