package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/qninhdt/aethelgard/server/internal/dice"
	"github.com/qninhdt/aethelgard/server/internal/game"
	mw "github.com/qninhdt/aethelgard/server/internal/middleware"
	"github.com/qninhdt/aethelgard/server/internal/rpg"
	"github.com/qninhdt/aethelgard/server/internal/skills"
	"github.com/qninhdt/aethelgard/server/internal/validation"
)

// Server handles HTTP requests
type Server struct {
	router      chi.Router
	registry    *game.Registry
	handles     *mw.Handles
	rateLimiter *mw.RateLimiter
	logger      *slog.Logger
}

// NewServer creates a new API server
func NewServer(registry *game.Registry, handles *mw.Handles, limiter *mw.RateLimiter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:      chi.NewRouter(),
		registry:    registry,
		handles:     handles,
		rateLimiter: limiter,
		logger:      logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))
	if s.rateLimiter != nil {
		s.router.Use(s.rateLimiter.Middleware)
	}
	s.router.Use(mw.SecurityHeadersMiddleware)
	s.router.Use(mw.MaxBodySizeMiddleware(64 * 1024))

	// Public endpoints
	s.router.Get("/api/skills", s.listSkills)
	s.router.Post("/api/sessions", s.createSession)

	// Endpoints bound to a session handle
	s.router.Group(func(r chi.Router) {
		r.Use(s.handles.Middleware)
		r.Get("/api/session", s.getSession)
		r.Delete("/api/session", s.endSession)
		r.Post("/api/session/start", s.restart)
		r.Post("/api/session/menu", s.menuAction)
		r.Post("/api/session/free", s.freeAction)
		r.Post("/api/session/dice", s.rollDice)
		r.Post("/api/session/retry", s.retry)
		r.Get("/api/session/events", s.events)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response wraps API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response (sanitized)
func writeError(w http.ResponseWriter, status int, message string) {
	if status >= 500 {
		message = "Internal server error"
	}
	writeJSON(w, status, Response{
		Success: false,
		Error:   message,
	})
}

func writeView(w http.ResponseWriter, v game.View) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: v})
}

// statusFor maps controller errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrBusy),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNoSession),
		errors.Is(err, game.ErrNoPendingRoll),
		errors.Is(err, game.ErrNothingToRetry):
		return http.StatusConflict
	case errors.Is(err, game.ErrEmptyAction),
		errors.Is(err, game.ErrInvalidConfig),
		errors.Is(err, dice.ErrOutOfRange),
		errors.Is(err, skills.ErrIncomplete),
		errors.Is(err, skills.ErrBudgetExceeded),
		errors.Is(err, skills.ErrWrongClass),
		errors.Is(err, skills.ErrUnknownSkill):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	message := err.Error()
	if status == http.StatusServiceUnavailable {
		message = "Server is full, try again later"
	}
	writeError(w, status, message)
}

// controller resolves the controller bound to the verified handle.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*game.Controller, bool) {
	id := mw.HandleFrom(r.Context())
	if err := validation.ValidateHandleID(id); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid session token")
		return nil, false
	}
	c, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Session expired")
		return nil, false
	}
	return c, true
}

type startRequest struct {
	Class  string     `json:"class"`
	Config rpg.Config `json:"config"`
	Skills []string   `json:"skills"`
}

func (req *startRequest) validate() (rpg.Class, error) {
	class, err := validation.ValidateClass(req.Class)
	if err != nil {
		return "", err
	}
	if err := validation.ValidateConfig(req.Config); err != nil {
		return "", err
	}
	if req.Config.Tactical() {
		if err := validation.ValidateSkillIDs(class, req.Skills); err != nil {
			return "", err
		}
	}
	return class, nil
}

func decodeStart(w http.ResponseWriter, r *http.Request) (startRequest, rpg.Class, bool) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, "", false
	}
	class, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, "", false
	}
	return req, class, true
}

type skillsResponse struct {
	Class    rpg.Class     `json:"class"`
	Resource string        `json:"resource"`
	Budget   skills.Budget `json:"budget"`
	Skills   []rpg.Skill   `json:"skills"`
}

// listSkills returns the catalog of a class and the starting budget
func (s *Server) listSkills(w http.ResponseWriter, r *http.Request) {
	class, err := validation.ValidateClass(r.URL.Query().Get("class"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	length := rpg.Length(r.URL.Query().Get("length"))
	if length == "" {
		length = rpg.LengthMedium
	}
	cfg := rpg.Config{Length: length, Theme: rpg.ThemeClassicHigh, Mode: rpg.ModeTactical}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: skillsResponse{
			Class:    class,
			Resource: class.ResourceName(),
			Budget:   skills.BudgetFor(length),
			Skills:   skills.ForClass(class),
		},
	})
}

// createSession registers a controller, narrates the opening and returns
// the signed handle
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	req, class, ok := decodeStart(w, r)
	if !ok {
		return
	}

	id, c, err := s.registry.Create()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.handles.Issue(id)
	if err != nil {
		s.registry.Remove(r.Context(), id)
		s.fail(w, r, err)
		return
	}

	view, err := c.StartGame(r.Context(), class, req.Config, req.Skills)
	if err != nil {
		s.registry.Remove(r.Context(), id)
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Data: map[string]interface{}{
			"token": token,
			"view":  view,
		},
	})
}

// getSession returns the current view
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	writeView(w, c.View())
}

// endSession drops the controller and its conversation
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if !s.registry.Remove(r.Context(), mw.HandleFrom(r.Context())) {
		writeError(w, http.StatusUnauthorized, "Session expired")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: "Session ended"})
}

// restart discards the current game and starts a new one
func (s *Server) restart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	req, class, ok := decodeStart(w, r)
	if !ok {
		return
	}
	view, err := c.StartGame(r.Context(), class, req.Config, req.Skills)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeView(w, view)
}

// menuAction submits one of the offered choices
func (s *Server) menuAction(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req struct {
		Choice string `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.ValidateAction(req.Choice); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.SubmitMenuAction(r.Context(), req.Choice); err != nil {
		s.fail(w, r, err)
		return
	}
	writeView(w, c.View())
}

// freeAction submits typed input for validation
func (s *Server) freeAction(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.ValidateAction(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.SubmitFreeAction(r.Context(), req.Text); err != nil {
		s.fail(w, r, err)
		return
	}
	writeView(w, c.View())
}

// rollDice resolves the pending roll; the server rolls when none is given
func (s *Server) rollDice(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req struct {
		Roll *int `json:"roll"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.ValidateRoll(req.Roll); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var roll int
	if req.Roll != nil {
		roll = *req.Roll
	} else {
		roll = c.Roll()
	}
	if err := c.ResolveDice(r.Context(), roll); err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"roll":    roll,
			"outcome": dice.Classify(roll).String(),
			"view":    c.View(),
		},
	})
}

// retry replays the last failed oracle call
func (s *Server) retry(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	if err := c.Retry(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeView(w, c.View())
}

// events drains one-shot notifications and sounds
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	events := c.DrainEvents()
	if events == nil {
		events = []game.Event{}
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: events})
}
