// Package oracle talks to the generative back ends that narrate turns,
// validate free-form actions and paint scene images.
package oracle

import (
	"context"
	"errors"

	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

var (
	// ErrMalformedResponse is returned when a response survives no step of
	// the repair ladder.
	ErrMalformedResponse = errors.New("the oracle choked on its own scrolls")
	// ErrNoSession is returned when a turn is advanced for a session that was
	// never started.
	ErrNoSession = errors.New("no session started")
)

const (
	// DefaultRejectionReason fills a rejection that names no reason.
	DefaultRejectionReason = "Action denied for breaking the rules."
	// DefaultRejectionMotive fills a rejection that names no motive.
	DefaultRejectionMotive = "The Rules Lawyer shakes their head disapprovingly."
)

// Role is the author of a conversation message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of the per-session conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Kind selects the response schema a model must honour.
type Kind int

const (
	KindNarration Kind = iota
	KindValidation
)

// Call is a single completion request handed to a Model.
type Call struct {
	Kind    Kind
	System  string
	History []Message
	User    string
}

// Model is a generative back end.
type Model interface {
	// Complete returns the raw text of a JSON answer to call.
	Complete(ctx context.Context, call Call) (string, error)
	// Image returns a URL (possibly a data URL) for a picture of prompt.
	Image(ctx context.Context, prompt string) (string, error)
}

// ConversationStore keeps the narration history of each session.
type ConversationStore interface {
	// Replace discards any history for session and stores msgs.
	Replace(ctx context.Context, session string, msgs []Message) error
	// Append adds msgs and evicts the oldest pairs beyond the window.
	Append(ctx context.Context, session string, msgs ...Message) error
	// History returns the stored messages oldest first.
	History(ctx context.Context, session string) ([]Message, error)
	// Delete forgets session.
	Delete(ctx context.Context, session string) error
}

// ValidationRequest asks whether a free-form action is allowed.
type ValidationRequest struct {
	Session string   `json:"session"`
	Action  string   `json:"action"`
	Context string   `json:"context"`
	Mode    rpg.Mode `json:"mode"`
}

// Verdict is the validator's answer.
type Verdict struct {
	Plausible bool   `json:"isPlausible"`
	Reason    string `json:"reason,omitempty"`
	Motive    string `json:"motive,omitempty"`
}

// NarrationRequest carries one narration call. The action already holds the
// annotated dice outcome; the context is the snapshot captured before the roll.
type NarrationRequest struct {
	Session string     `json:"session"`
	Turn    int        `json:"turn"`
	Act     int        `json:"act"`
	Config  rpg.Config `json:"config"`
	Action  string     `json:"action"`
	Context string     `json:"context"`

	// Opening-only fields.
	PlayerInfo string   `json:"playerInfo,omitempty"`
	Skills     []string `json:"skills,omitempty"`

	// Pacing is the narrator guidance for the configured length and
	// ExpectedAct the act the rules call for on this turn.
	Pacing      string `json:"pacing,omitempty"`
	ExpectedAct int    `json:"expectedAct,omitempty"`
}

// StatusUpdate is the mechanical outcome of a turn. Absent numeric fields are
// zero and CurrentAct is zero when the narrator did not report one.
type StatusUpdate struct {
	HPChange   int  `json:"hpChange"`
	MPChange   int  `json:"mpChange"`
	GoldChange int  `json:"goldChange"`
	XPChange   int  `json:"xpChange"`
	CurrentAct int  `json:"currentAct"`
	GameOver   bool `json:"gameOver"`
	LearnSkill bool `json:"learnSkill"`
}

// Turn is a parsed narration response.
type Turn struct {
	Story       string        `json:"story"`
	Choices     []rpg.Choice  `json:"choices"`
	ImagePrompt string        `json:"imagePrompt,omitempty"`
	MusicMood   rpg.MusicMood `json:"musicMood,omitempty"`
	Status      StatusUpdate  `json:"statusUpdate"`
	Items       []rpg.Item    `json:"itemsFound,omitempty"`
}
