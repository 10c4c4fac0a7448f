package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies an engine event type on the wire.
type Kind string

const (
	// KindMatchCreated is emitted exactly once per created Match.
	KindMatchCreated Kind = "match_created"
	// KindMessage is a pass-through envelope for downstream delivery.
	KindMessage Kind = "message"
)

// Event is the payload handed to the downstream real-time delivery layer.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Pair       [2]uint64 `json:"pair,omitempty"`
	MatchID    string    `json:"match_id,omitempty"`
	Body       string    `json:"body,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMatchCreated builds a match_created event for the given pair.
func NewMatchCreated(matchID string, a, b uint64) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       KindMatchCreated,
		Pair:       [2]uint64{a, b},
		MatchID:    matchID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers engine events to the downstream transport. The engine
// never holds a subscriber registry itself; it only publishes.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// Recorder is an in-memory Publisher for tests and benchmarks.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() {}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
