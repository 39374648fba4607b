package oracle

import (
	"errors"
	"testing"

	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

func TestParseTurnFull(t *testing.T) {
	text := `{
		"story": "The tavern door creaks.",
		"choices": [{"text": "Enter", "action": "enter"}, {"text": "Leave", "action": "leave"}],
		"imagePrompt": "a creaking tavern door",
		"musicMood": "town",
		"statusUpdate": {"hpChange": -3.6, "mpChange": -10, "goldChange": 5, "xpChange": 12, "currentAct": 2, "learnSkill": true},
		"itemsFound": [{"name": "Rusty Key", "type": "consumable", "description": "Opens something", "value": 1}]
	}`
	turn, err := ParseTurn(text)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if turn.Story != "The tavern door creaks." {
		t.Errorf("Unexpected story %q", turn.Story)
	}
	if len(turn.Choices) != 2 || turn.Choices[1].Action != "leave" {
		t.Errorf("Unexpected choices %+v", turn.Choices)
	}
	if turn.MusicMood != "town" {
		t.Errorf("Expected town mood, got %q", turn.MusicMood)
	}
	s := turn.Status
	if s.HPChange != -4 || s.MPChange != -10 || s.GoldChange != 5 || s.XPChange != 12 || s.CurrentAct != 2 || !s.LearnSkill || s.GameOver {
		t.Errorf("Unexpected status %+v", s)
	}
	if len(turn.Items) != 1 || turn.Items[0].Name != "Rusty Key" || turn.Items[0].Type != rpg.ItemConsumable {
		t.Errorf("Unexpected items %+v", turn.Items)
	}
}

func TestParseTurnDefaults(t *testing.T) {
	turn, err := ParseTurn(`{"story": "Silence.", "musicMood": "polka"}`)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if len(turn.Choices) != 1 || turn.Choices[0] != rpg.ContinueChoice {
		t.Errorf("Expected continue choice, got %+v", turn.Choices)
	}
	if turn.MusicMood != "" {
		t.Errorf("Expected unknown mood to be dropped, got %q", turn.MusicMood)
	}
	if turn.Status != (StatusUpdate{}) {
		t.Errorf("Expected no effects, got %+v", turn.Status)
	}
}

func TestParseTurnRepairLadder(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		story string
	}{
		{"fenced", "```json\n{\"story\": \"Fenced\"}\n```", "Fenced"},
		{"chatter", `Sure! Here you go: {"story": "Chatty"} Enjoy.`, "Chatty"},
		{"truncated string", `{"story": "Hello `, "Hello"},
		{"truncated object", `{"story": "Done", "statusUpdate": {"currentAct": 1}`, "Done"},
	}
	for _, tt := range tests {
		turn, err := ParseTurn(tt.text)
		if err != nil {
			t.Errorf("%s: expected recovery, got %v", tt.name, err)
			continue
		}
		if turn.Story != tt.story {
			t.Errorf("%s: expected story %q, got %q", tt.name, tt.story, turn.Story)
		}
	}
}

func TestParseTurnIrrecoverable(t *testing.T) {
	for _, text := range []string{"", "the dragon ate the JSON", `{"choices": [}`, `{"imagePrompt": "x"}`} {
		if _, err := ParseTurn(text); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("Expected ErrMalformedResponse for %q, got %v", text, err)
		}
	}
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict(`{"isPlausible": true}`)
	if err != nil || !v.Plausible {
		t.Errorf("Expected plausible verdict, got %+v (%v)", v, err)
	}

	v, err = ParseVerdict(`{"isPlausible": false, "reason": "No mana", "motive": "Only a spark."}`)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if v.Plausible || v.Reason != "No mana" || v.Motive != "Only a spark." {
		t.Errorf("Unexpected verdict %+v", v)
	}

	v, _ = ParseVerdict(`{"reason": ""}`)
	if v.Plausible {
		t.Error("Expected missing isPlausible to reject")
	}
	if v.Reason != DefaultRejectionReason || v.Motive != DefaultRejectionMotive {
		t.Errorf("Expected default rejection texts, got %+v", v)
	}
}
