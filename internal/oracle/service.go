package oracle

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// ImageStyle is prepended to every scene description.
	ImageStyle = "High-quality medieval fantasy pixel art, 16-bit retro game aesthetic, isometric view, thick pixel lines, vibrant retro colors, high contrast. Scene: "
	// Placeholder is returned whenever an image cannot be produced.
	Placeholder = "https://picsum.photos/800/450?grayscale"
)

// Service implements the narration, validation and image protocol on top of
// a Model and a ConversationStore.
type Service struct {
	model  Model
	store  ConversationStore
	logger *slog.Logger
}

// NewService creates a protocol client. A nil logger uses slog.Default.
func NewService(model Model, store ConversationStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{model: model, store: store, logger: logger}
}

// Validate asks the validator whether a free-form action may proceed.
func (s *Service) Validate(ctx context.Context, req ValidationRequest) (Verdict, error) {
	user, err := render(validateTmpl, req)
	if err != nil {
		return Verdict{}, err
	}

	text, err := s.model.Complete(ctx, Call{
		Kind:   KindValidation,
		System: validatorSystem(req.Mode),
		User:   user,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("validate action: %w", err)
	}

	v, err := ParseVerdict(text)
	if err != nil {
		s.logger.Warn("unparseable verdict", "session", req.Session, "error", err)
		return Verdict{}, err
	}
	s.logger.Debug("action validated", "session", req.Session, "plausible", v.Plausible)
	return v, nil
}

// StartNarrative runs the opening turn and replaces the session's
// conversation with it. The reported act is forced to 1.
func (s *Service) StartNarrative(ctx context.Context, req NarrationRequest) (Turn, error) {
	if req.Session == "" {
		return Turn{}, ErrNoSession
	}
	user, err := render(openingTmpl, req)
	if err != nil {
		return Turn{}, err
	}

	text, err := s.model.Complete(ctx, Call{Kind: KindNarration, System: narratorSystem, User: user})
	if err != nil {
		return Turn{}, fmt.Errorf("start narrative: %w", err)
	}
	turn, err := ParseTurn(text)
	if err != nil {
		s.logger.Warn("unparseable opening", "session", req.Session, "error", err)
		return Turn{}, err
	}
	turn.Status.CurrentAct = 1

	msgs := []Message{{Role: RoleUser, Text: user}, {Role: RoleModel, Text: text}}
	if err := s.store.Replace(ctx, req.Session, msgs); err != nil {
		return Turn{}, fmt.Errorf("store conversation: %w", err)
	}
	s.logger.Info("narrative started", "session", req.Session)
	return turn, nil
}

// AdvanceNarrative narrates one turn with the session's history.
func (s *Service) AdvanceNarrative(ctx context.Context, req NarrationRequest) (Turn, error) {
	history, err := s.store.History(ctx, req.Session)
	if err != nil {
		return Turn{}, err
	}
	user, err := render(turnTmpl, req)
	if err != nil {
		return Turn{}, err
	}

	text, err := s.model.Complete(ctx, Call{
		Kind:    KindNarration,
		System:  narratorSystem,
		History: history,
		User:    user,
	})
	if err != nil {
		return Turn{}, fmt.Errorf("advance narrative: %w", err)
	}
	turn, err := ParseTurn(text)
	if err != nil {
		s.logger.Warn("unparseable narration", "session", req.Session, "turn", req.Turn, "error", err)
		return Turn{}, err
	}

	if err := s.store.Append(ctx, req.Session,
		Message{Role: RoleUser, Text: user},
		Message{Role: RoleModel, Text: text},
	); err != nil {
		return Turn{}, fmt.Errorf("store conversation: %w", err)
	}
	s.logger.Debug("turn narrated", "session", req.Session, "turn", req.Turn, "act", turn.Status.CurrentAct)
	return turn, nil
}

// GenerateImage returns a picture for prompt, or Placeholder on any failure.
func (s *Service) GenerateImage(ctx context.Context, prompt string) string {
	url, err := s.model.Image(ctx, ImageStyle+prompt)
	if err != nil || url == "" {
		s.logger.Warn("image generation failed", "error", err)
		return Placeholder
	}
	return url
}

// Forget drops the conversation kept for session.
func (s *Service) Forget(ctx context.Context, session string) error {
	return s.store.Delete(ctx, session)
}
