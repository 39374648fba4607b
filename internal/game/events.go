package game

import (
	"container/list"
	"fmt"
	"time"

	"github.com/qninhdt/aethelgard/server/internal/rpg"
)

// EventKind represents the type of event
type EventKind string

const (
	EventNotification EventKind = "notification"
	EventSound        EventKind = "sfx"
)

// Sound names an audio cue for the presentation layer.
type Sound string

const (
	SoundClick   Sound = "click"
	SoundLevelUp Sound = "levelup"
	SoundHeal    Sound = "heal"
	SoundHit     Sound = "hit"
)

// Event is a one-shot signal for the presentation layer.
type Event struct {
	Kind      EventKind `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Sound     Sound     `json:"sound,omitempty"`
	At        time.Time `json:"at"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Expired reports whether the event has outlived its display time.
func (e Event) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

func skillNotification(s rpg.Skill, now time.Time, ttl time.Duration) Event {
	return Event{
		Kind:      EventNotification,
		Text:      fmt.Sprintf("NEW SKILL LEARNED: %s (%s)!", s.Name, s.Tier),
		At:        now,
		ExpiresAt: now.Add(ttl),
	}
}

func soundEvent(s Sound, now time.Time) Event {
	return Event{Kind: EventSound, Sound: s, At: now}
}

// EventQueue accumulates events between drains
type EventQueue struct {
	pending *list.List // Event
	active  *Event
}

// NewEventQueue creates an empty queue
func NewEventQueue() *EventQueue {
	return &EventQueue{
		pending: list.New(),
	}
}

// Push adds an event. Notifications also become the active banner.
func (q *EventQueue) Push(e Event) {
	q.pending.PushBack(e)
	if e.Kind == EventNotification {
		q.active = &e
	}
}

// Drain pops all pending events that have not yet expired
func (q *EventQueue) Drain(now time.Time) []Event {
	var events []Event
	for elem := q.pending.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(Event)
		if !e.Expired(now) {
			events = append(events, e)
		}
	}
	q.pending.Init()
	return events
}

// Active returns the banner notification still on display, if any.
func (q *EventQueue) Active(now time.Time) (Event, bool) {
	if q.active == nil {
		return Event{}, false
	}
	if q.active.Expired(now) {
		q.active = nil
		return Event{}, false
	}
	return *q.active, true
}

// Count returns the number of pending events
func (q *EventQueue) Count() int {
	return q.pending.Len()
}
