// Package events publishes task change notifications for other services
// (dashboards, notifiers) to consume.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Type string

const (
	TaskCreated   Type = "task.created"
	TaskUpdated   Type = "task.updated"
	TaskDeleted   Type = "task.deleted"
	TaskReordered Type = "task.reordered"
)

// TaskEvent is the message body. TaskIDs lists every task a reorder touched.
type TaskEvent struct {
	Type           Type      `json:"type"`
	OrganizationID string    `json:"organization_id"`
	ProjectID      string    `json:"project_id,omitempty"`
	TaskID         string    `json:"task_id,omitempty"`
	TaskIDs        []string  `json:"task_ids,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Subject is tasks.<organization_id>.<type>.
func (e TaskEvent) Subject() string {
	return fmt.Sprintf("tasks.%s.%s", e.OrganizationID, e.Type)
}

type Publisher interface {
	Publish(ctx context.Context, event TaskEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, TaskEvent) error { return nil }
func (NoopPublisher) Close() error                             { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []TaskEvent
}

func (r *Recorder) Publish(_ context.Context, event TaskEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []TaskEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TaskEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []Type {
	events := r.Events()
	out := make([]Type, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}
