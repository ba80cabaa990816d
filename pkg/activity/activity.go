package activity

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "startpage"

// Event is a normalized audit record of something that happened to an object.
type Event struct {
	Verb       string         `json:"verb"`
	ActorID    string         `json:"actor_id,omitempty"`
	ObjectType string         `json:"object_type"`
	ObjectID   string         `json:"object_id"`
	Channel    string         `json:"channel,omitempty"`
	Recipients []string       `json:"recipients,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Valid reports whether the event carries the required identifiers.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// NormalizeEvent trims identifiers, clones reference fields and stamps the
// occurrence time when missing.
func NormalizeEvent(evt Event) Event {
	evt.Verb = strings.TrimSpace(evt.Verb)
	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.ObjectType = strings.TrimSpace(evt.ObjectType)
	evt.ObjectID = strings.TrimSpace(evt.ObjectID)
	evt.Channel = strings.TrimSpace(evt.Channel)
	evt.Recipients = slices.Clone(evt.Recipients)
	evt.Metadata = maps.Clone(evt.Metadata)
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return evt
}

// Hook receives activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, evt Event) error

// Notify calls the wrapped function.
func (f HookFunc) Notify(ctx context.Context, evt Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, evt)
}

// Hooks fans a normalized event out to every hook. Invalid events are dropped.
type Hooks []Hook

// Notify normalizes evt and calls each hook, joining their errors.
func (h Hooks) Notify(ctx context.Context, evt Event) error {
	evt = NormalizeEvent(evt)
	if !evt.Valid() {
		return nil
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook records events in memory, mostly for tests.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify appends evt.
func (c *CaptureHook) Notify(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, evt)
	return nil
}

// LogHook writes events to a structured logger.
type LogHook struct {
	Logger *slog.Logger
}

// Notify logs evt at info level.
func (h LogHook) Notify(ctx context.Context, evt Event) error {
	if h.Logger == nil {
		return nil
	}
	h.Logger.InfoContext(ctx, "activity",
		"verb", evt.Verb,
		"object_type", evt.ObjectType,
		"object_id", evt.ObjectID,
		"channel", evt.Channel,
		"actor_id", evt.ActorID,
	)
	return nil
}
