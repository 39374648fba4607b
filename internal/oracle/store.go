package oracle

import (
	"context"
	"fmt"
	"sync"
)

// Window drops the oldest user/model pairs until msgs fits limit. A limit of
// zero or less keeps everything.
func Window(msgs []Message, limit int) []Message {
	if limit <= 0 {
		return msgs
	}
	for len(msgs) > limit && len(msgs) >= 2 {
		msgs = msgs[2:]
	}
	return msgs
}

// MemoryStore is an in-process ConversationStore.
type MemoryStore struct {
	window   int
	sessions map[string][]Message
	mu       sync.RWMutex
}

// NewMemoryStore creates a store that keeps at most window messages per
// session.
func NewMemoryStore(window int) *MemoryStore {
	return &MemoryStore{window: window, sessions: make(map[string][]Message)}
}

func (m *MemoryStore) Replace(ctx context.Context, session string, msgs []Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	m.sessions[session] = Window(cp, m.window)
	return nil
}

func (m *MemoryStore) Append(ctx context.Context, session string, msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	history, ok := m.sessions[session]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, session)
	}
	history = append(history, msgs...)
	m.sessions[session] = Window(history, m.window)
	return nil
}

func (m *MemoryStore) History(ctx context.Context, session string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history, ok := m.sessions[session]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, session)
	}
	out := make([]Message, len(history))
	copy(out, history)
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, session)
	return nil
}
