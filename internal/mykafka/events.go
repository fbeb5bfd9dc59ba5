package mykafka

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	Type      string         `json:"type"`
	UserID    uuid.UUID      `json:"userID"`
	EntityID  uuid.UUID      `json:"entityID"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewEvent(typ string, userID, entityID uuid.UUID, data map[string]any) Event {
	return Event{
		Type:      typ,
		UserID:    userID,
		EntityID:  entityID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Recorder keeps published events in memory, for tests and local runs.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

type Recorded struct {
	Topic string
	Key   string
	Event any
}

func (r *Recorder) PublishEvent(ctx context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Events(topic string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, rec := range r.events {
		if rec.Topic != topic {
			continue
		}
		if ev, ok := rec.Event.(Event); ok {
			out = append(out, ev)
		}
	}
	return out
}
