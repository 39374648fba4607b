package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTooManySessions is returned when the registry is full.
var ErrTooManySessions = errors.New("the tavern is full tonight, no more adventurers")

// Factory builds a controller for a new handle.
type Factory func() (*Controller, error)

type entry struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry tracks one Controller per client handle and evicts idle ones.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*entry
	factory  Factory
	idleTTL  time.Duration
	capacity int
	clock    func() time.Time
	logger   *slog.Logger
}

// NewRegistry creates a registry. capacity <= 0 means unbounded.
func NewRegistry(factory Factory, idleTTL time.Duration, capacity int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries:  make(map[string]*entry),
		factory:  factory,
		idleTTL:  idleTTL,
		capacity: capacity,
		clock:    time.Now,
		logger:   logger,
	}
}

// Create registers a new controller and returns its handle.
func (r *Registry) Create() (string, *Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capacity > 0 && len(r.entries) >= r.capacity {
		return "", nil, ErrTooManySessions
	}

	c, err := r.factory()
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	r.entries[id] = &entry{controller: c, lastSeen: r.clock()}
	return id, c, nil
}

// Get returns the controller for id and marks it as seen.
func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.clock()
	return e.controller, true
}

// Remove drops id and forgets its oracle conversation.
func (r *Registry) Remove(ctx context.Context, id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	if err := e.controller.Close(ctx); err != nil {
		r.logger.Warn("failed to close session", "handle", id, "error", err)
	}
	return true
}

// Sweep removes controllers idle for longer than the TTL. Controllers with a
// call in flight are left alone.
func (r *Registry) Sweep(ctx context.Context) int {
	if r.idleTTL <= 0 {
		return 0
	}
	now := r.clock()

	r.mu.Lock()
	var stale []*Controller
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) < r.idleTTL || e.controller.Busy() {
			continue
		}
		stale = append(stale, e.controller)
		delete(r.entries, id)
	}
	r.mu.Unlock()

	for _, c := range stale {
		if err := c.Close(ctx); err != nil {
			r.logger.Warn("failed to close idle session", "error", err)
		}
	}
	if len(stale) > 0 {
		r.logger.Info("swept idle sessions", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Shutdown closes every controller and waits for their in-flight image
// fetches until ctx is done. It returns the number of controllers closed.
func (r *Registry) Shutdown(ctx context.Context) int {
	r.mu.Lock()
	all := make([]*Controller, 0, len(r.entries))
	for id, e := range r.entries {
		all = append(all, e.controller)
		delete(r.entries, id)
	}
	r.mu.Unlock()

	for _, c := range all {
		if err := c.Close(ctx); err != nil {
			r.logger.Warn("failed to close session on shutdown", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		for _, c := range all {
			c.WaitImages()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("shutdown left image fetches in flight", "error", ctx.Err())
	}
	return len(all)
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
