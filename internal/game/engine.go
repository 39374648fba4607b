// Package game owns the session state machine: character, game state, dice
// resolution and the protocol with the narration and validation oracles.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qninhdt/aethelgard/server/internal/dice"
	"github.com/qninhdt/aethelgard/server/internal/oracle"
	"github.com/qninhdt/aethelgard/server/internal/random"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
	"github.com/qninhdt/aethelgard/server/internal/skills"
	"github.com/qninhdt/aethelgard/server/internal/story"
)

// Oracle is the generative collaborator of a Controller.
type Oracle interface {
	Validate(ctx context.Context, req oracle.ValidationRequest) (oracle.Verdict, error)
	StartNarrative(ctx context.Context, req oracle.NarrationRequest) (oracle.Turn, error)
	AdvanceNarrative(ctx context.Context, req oracle.NarrationRequest) (oracle.Turn, error)
	GenerateImage(ctx context.Context, prompt string) string
	Forget(ctx context.Context, session string) error
}

// Phase is the turn state machine position.
type Phase string

const (
	PhaseNew          Phase = "new"
	PhaseStarting     Phase = "starting"
	PhaseIdle         Phase = "idle"
	PhaseValidating   Phase = "validating"
	PhaseAwaitingDice Phase = "awaiting_dice"
	PhaseNarrating    Phase = "narrating"
	PhaseGameOver     Phase = "game_over"
)

// Busy reports whether an oracle call is in flight.
func (p Phase) Busy() bool {
	return p == PhaseStarting || p == PhaseValidating || p == PhaseNarrating
}

const (
	progressStep = 10
	progressTick = 300 * time.Millisecond
	progressCap  = 98
)

// Options tunes a Controller. Zero values take defaults.
type Options struct {
	SlowAfter        time.Duration
	NotificationTTL  time.Duration
	EscalationChance float64
	Pacing           *story.Pacing
	Random           random.Source
	Clock            func() time.Time
	Logger           *slog.Logger
}

// Status is the loading, retry and correlation side of a View.
type Status struct {
	Phase          Phase  `json:"phase"`
	Session        string `json:"session,omitempty"`
	Turn           int    `json:"turn"`
	Loading        bool   `json:"loading"`
	Progress       int    `json:"progress"`
	Slow           bool   `json:"slow"`
	RetryAvailable bool   `json:"retryAvailable"`
	LastAction     string `json:"lastAction,omitempty"`
	Error          string `json:"error,omitempty"`
	Notification   string `json:"notification,omitempty"`
}

// View is an immutable copy of everything the presentation layer reads.
type View struct {
	Character Character  `json:"character"`
	State     GameState  `json:"state"`
	Config    rpg.Config `json:"config"`
	Status    Status     `json:"status"`
}

type attemptKind int

const (
	attemptStart attemptKind = iota
	attemptValidate
	attemptNarrate
)

// attempt is the exact request an oracle call was made with, kept for retry.
type attempt struct {
	kind       attemptKind
	validation oracle.ValidationRequest
	narration  oracle.NarrationRequest
}

type pendingAction struct {
	action  string
	context string
}

// Controller runs one playthrough at a time.
type Controller struct {
	oracle   Oracle
	roller   *dice.Roller
	acquirer *skills.Acquirer
	pacing   *story.Pacing
	opts     Options
	logger   *slog.Logger

	mu         sync.Mutex
	images     sync.WaitGroup
	generation int
	session    string
	cfg        rpg.Config
	char       *Character
	state      *GameState
	phase      Phase
	turn       int
	since      time.Time
	pending    *pendingAction
	last       *attempt
	retry      bool
	lastAction string
	lastErr    string
	events     *EventQueue
}

// NewController creates a controller with no game started.
func NewController(o Oracle, opts Options) (*Controller, error) {
	if opts.SlowAfter <= 0 {
		opts.SlowAfter = 10 * time.Second
	}
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = 5 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Random == nil {
		src, err := random.New()
		if err != nil {
			return nil, err
		}
		opts.Random = src
	}
	if opts.Pacing == nil {
		p, err := story.NewPacing(nil)
		if err != nil {
			return nil, err
		}
		opts.Pacing = p
	}

	return &Controller{
		oracle:   o,
		roller:   dice.NewRoller(opts.Random),
		acquirer: skills.NewAcquirer(opts.Random, opts.EscalationChance),
		pacing:   opts.Pacing,
		opts:     opts,
		logger:   opts.Logger,
		phase:    PhaseNew,
		char:     &Character{},
		state:    NewGameState(),
		events:   NewEventQueue(),
	}, nil
}

// StartGame discards any previous game and narrates the opening turn. Oracle
// failures do not surface here; they arm a retry visible in the View.
func (c *Controller) StartGame(ctx context.Context, class rpg.Class, cfg rpg.Config, chosen []string) (View, error) {
	if _, err := rpg.ParseClass(string(class)); err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	var picked []rpg.Skill
	if cfg.Tactical() {
		var err error
		if picked, err = skills.Select(class, cfg.Length, chosen); err != nil {
			return View{}, err
		}
	}

	c.mu.Lock()
	if c.phase.Busy() {
		c.mu.Unlock()
		return View{}, ErrBusy
	}
	previous := c.session

	c.generation++
	c.session = uuid.NewString()
	c.cfg = cfg
	c.char = NewCharacter(class, picked)
	c.state = NewGameState()
	c.turn = 0
	c.pending = nil
	c.events = NewEventQueue()

	labels := make([]string, len(picked))
	for i, s := range picked {
		labels[i] = SkillLabel(s)
	}
	req := oracle.NarrationRequest{
		Session:     c.session,
		Turn:        1,
		Act:         1,
		Config:      cfg,
		PlayerInfo:  fmt.Sprintf("novice %s hero", class),
		Skills:      labels,
		Context:     Snapshot(c.char, c.state, cfg),
		Pacing:      c.pacing.Describe(cfg.Length),
		ExpectedAct: 1,
	}
	c.last = &attempt{kind: attemptStart, narration: req}
	c.lastAction = ""
	c.begin(PhaseStarting)
	c.mu.Unlock()

	if previous != "" {
		if err := c.oracle.Forget(ctx, previous); err != nil {
			c.logger.Warn("failed to forget previous session", "session", previous, "error", err)
		}
	}
	c.logger.Info("game starting", "session", req.Session, "class", class, "length", cfg.Length, "mode", cfg.Mode)

	c.runStart(ctx, req)
	return c.View(), nil
}

// SubmitMenuAction queues an offered choice for a dice roll. Menu choices
// bypass the validator.
func (c *Controller) SubmitMenuAction(ctx context.Context, choiceText string) error {
	text := strings.TrimSpace(choiceText)
	if text == "" {
		return ErrEmptyAction
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.acceptable(); err != nil {
		return err
	}

	c.clearRejection()
	c.last, c.retry = nil, false
	c.lastAction = text
	c.events.Push(soundEvent(SoundClick, c.now()))
	c.pending = &pendingAction{action: text, context: Snapshot(c.char, c.state, c.cfg)}
	c.phase = PhaseAwaitingDice
	return nil
}

// SubmitFreeAction validates typed input and, when accepted, waits for the
// dice. A rejection leaves the character untouched.
func (c *Controller) SubmitFreeAction(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAction
	}

	c.mu.Lock()
	if err := c.acceptable(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.clearRejection()
	c.lastAction = text
	c.events.Push(soundEvent(SoundClick, c.now()))
	req := oracle.ValidationRequest{
		Session: c.session,
		Action:  text,
		Context: Snapshot(c.char, c.state, c.cfg),
		Mode:    c.cfg.Mode,
	}
	c.last = &attempt{kind: attemptValidate, validation: req}
	c.begin(PhaseValidating)
	c.mu.Unlock()

	c.runValidate(ctx, req)
	return nil
}

// Roll produces a fresh d20 from the controller's random source.
func (c *Controller) Roll() int {
	return c.roller.Roll()
}

// ResolveDice settles the pending roll and narrates the turn. The action and
// context captured when the action was submitted are used unchanged.
func (c *Controller) ResolveDice(ctx context.Context, roll int) error {
	c.mu.Lock()
	if c.phase != PhaseAwaitingDice {
		busy := c.phase.Busy()
		c.mu.Unlock()
		if busy {
			return ErrBusy
		}
		return ErrNoPendingRoll
	}
	if err := dice.Validate(roll); err != nil {
		c.mu.Unlock()
		return err
	}

	p := c.pending
	c.pending = nil
	turn := c.turn + 1
	expected, err := c.pacing.ExpectedAct(c.cfg.Length, turn, c.state.CurrentAct)
	if err != nil {
		c.logger.Warn("pacing evaluation failed", "session", c.session, "error", err)
		expected = 0
	}
	req := oracle.NarrationRequest{
		Session:     c.session,
		Turn:        turn,
		Act:         c.state.CurrentAct,
		Config:      c.cfg,
		Action:      dice.Annotate(p.action, roll),
		Context:     p.context,
		Pacing:      c.pacing.Describe(c.cfg.Length),
		ExpectedAct: expected,
	}
	c.last = &attempt{kind: attemptNarrate, narration: req}
	c.begin(PhaseNarrating)
	c.mu.Unlock()

	c.runNarrate(ctx, req)
	return nil
}

// Retry replays the exact request of the last failed oracle call.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.phase.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.retry || c.last == nil {
		c.mu.Unlock()
		return ErrNothingToRetry
	}
	a := *c.last
	c.logger.Info("retrying", "session", c.session, "kind", a.kind)

	switch a.kind {
	case attemptStart:
		c.begin(PhaseStarting)
		c.mu.Unlock()
		c.runStart(ctx, a.narration)
	case attemptValidate:
		c.begin(PhaseValidating)
		c.mu.Unlock()
		c.runValidate(ctx, a.validation)
	default:
		c.begin(PhaseNarrating)
		c.mu.Unlock()
		c.runNarrate(ctx, a.narration)
	}
	return nil
}

// View returns a copy of the current Character, GameState and Status.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Character: *c.char.Clone(),
		State:     *c.state.Clone(),
		Config:    c.cfg,
		Status:    c.status(),
	}
}

// DrainEvents returns the one-shot events raised since the last drain.
func (c *Controller) DrainEvents() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events.Drain(c.now())
}

// WaitImages blocks until every in-flight image fetch has settled.
func (c *Controller) WaitImages() {
	c.images.Wait()
}

// Busy reports whether an oracle call is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase.Busy()
}

// Close forgets the oracle-side conversation of the current game.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.generation++
	c.mu.Unlock()
	if session == "" {
		return nil
	}
	return c.oracle.Forget(ctx, session)
}

func (c *Controller) now() time.Time {
	return c.opts.Clock()
}

func (c *Controller) begin(p Phase) {
	c.phase = p
	c.since = c.now()
	c.lastErr = ""
	c.retry = false
}

// acceptable gates new actions: a narrated game, no dice prompt and no call
// in flight.
func (c *Controller) acceptable() error {
	switch c.phase {
	case PhaseNew:
		return ErrNoSession
	case PhaseGameOver:
		return ErrGameOver
	case PhaseIdle:
		return nil
	default:
		return ErrBusy
	}
}

func (c *Controller) clearRejection() {
	if c.state.Rejection == nil {
		return
	}
	st := c.state.Clone()
	st.Rejection = nil
	c.state = st
}

// fail returns to next with the previous state untouched and retry armed.
func (c *Controller) fail(next Phase, err error) {
	c.phase = next
	c.since = time.Time{}
	c.retry = true
	c.lastErr = err.Error()
	c.logger.Warn("oracle call failed", "session", c.session, "turn", c.turn+1, "error", err)
}

func (c *Controller) runStart(ctx context.Context, req oracle.NarrationRequest) {
	t, err := c.oracle.StartNarrative(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(PhaseNew, err)
		return
	}
	t.Status.CurrentAct = 1
	c.commit(ctx, req, t)
}

func (c *Controller) runValidate(ctx context.Context, req oracle.ValidationRequest) {
	v, err := c.oracle.Validate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(PhaseIdle, err)
		return
	}
	c.since = time.Time{}
	c.last = nil

	if !v.Plausible {
		reason, motive := v.Reason, v.Motive
		if reason == "" {
			reason = oracle.DefaultRejectionReason
		}
		if motive == "" {
			motive = oracle.DefaultRejectionMotive
		}
		st := c.state.Clone()
		st.Rejection = &Rejection{Reason: reason, Motive: motive}
		c.state = st
		c.phase = PhaseIdle
		c.logger.Info("action rejected", "session", c.session, "reason", reason)
		return
	}

	c.pending = &pendingAction{action: req.Action, context: req.Context}
	c.phase = PhaseAwaitingDice
}

func (c *Controller) runNarrate(ctx context.Context, req oracle.NarrationRequest) {
	t, err := c.oracle.AdvanceNarrative(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(PhaseIdle, err)
		return
	}
	c.commit(ctx, req, t)
}

// commit applies a successful narration. Callers hold c.mu.
func (c *Controller) commit(ctx context.Context, req oracle.NarrationRequest, t oracle.Turn) {
	prevChar, prevState := c.char, c.state
	now := c.now()

	mood := prevState.Mood
	if t.MusicMood.Known() {
		mood = t.MusicMood
	}

	// Skill draws see the character and act from before this turn.
	var learned *rpg.Skill
	if c.cfg.Tactical() && t.Status.LearnSkill && prevState.CurrentAct == 2 &&
		prevState.SkillsLearned < skills.EventCap(c.cfg.Length) {
		if s, ok := c.acquirer.Draw(c.cfg.Mode, prevChar.Class, prevChar.Skills); ok {
			learned = &s
		}
	}

	st := prevState.Clone()
	st.Mood = mood
	st.Story = t.Story
	st.Choices = append([]rpg.Choice{}, t.Choices...)
	if len(st.Choices) == 0 {
		st.Choices = []rpg.Choice{rpg.ContinueChoice}
	}
	st.CurrentAct = clampAct(t.Status.CurrentAct, prevState.CurrentAct)
	st.GameOver = prevState.GameOver || t.Status.GameOver
	st.Rejection = nil
	st.History = appendHistory(prevState.History, t.Story)
	if learned != nil {
		st.SkillsLearned++
	}
	c.state = st

	if learned != nil {
		c.events.Push(skillNotification(*learned, now, c.opts.NotificationTTL))
		c.events.Push(soundEvent(SoundLevelUp, now))
		c.logger.Info("skill learned", "session", c.session, "skill", learned.ID)
	}

	c.char = applyEffects(prevChar, t, learned)

	if cue := hpCue(t.Status.HPChange); cue != "" {
		c.events.Push(soundEvent(cue, now))
	}

	c.turn = req.Turn
	c.last, c.retry = nil, false
	c.lastErr = ""
	c.since = time.Time{}
	c.phase = PhaseIdle
	if st.GameOver {
		c.phase = PhaseGameOver
	}
	c.logger.Info("turn committed", "session", c.session, "turn", c.turn, "act", st.CurrentAct, "game_over", st.GameOver)

	if t.ImagePrompt != "" {
		c.fetchImage(ctx, c.generation, t.ImagePrompt)
	}
}

// fetchImage races independently of later turns; whichever result lands last
// is shown, placeholders included. Results for a replaced game are dropped.
func (c *Controller) fetchImage(ctx context.Context, gen int, prompt string) {
	c.images.Add(1)
	go func() {
		defer c.images.Done()
		url := c.oracle.GenerateImage(context.WithoutCancel(ctx), prompt)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen {
			return
		}
		st := c.state.Clone()
		st.Image = url
		c.state = st
	}()
}

func (c *Controller) status() Status {
	s := Status{
		Phase:          c.phase,
		Session:        c.session,
		Turn:           c.turn,
		Loading:        c.phase.Busy(),
		RetryAvailable: c.retry && c.last != nil && !c.phase.Busy(),
		LastAction:     c.lastAction,
		Error:          c.lastErr,
	}
	if s.Loading && !c.since.IsZero() {
		elapsed := c.now().Sub(c.since)
		s.Progress = min(progressCap, int(elapsed/progressTick)*progressStep)
		s.Slow = elapsed >= c.opts.SlowAfter
	}
	if n, ok := c.events.Active(c.now()); ok {
		s.Notification = n.Text
	}
	return s
}
