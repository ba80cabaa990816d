package startpage

import (
	"context"
	"errors"
)

// Event kinds.
const (
	EventConfig = "config"
	EventPoll   = "poll"
)

// Entity names used in config events.
const (
	EntityService     = "service"
	EntitySubcategory = "subcategory"
	EntityCategory    = "category"
	EntitySettings    = "settings"
	EntityConfig      = "config"
)

// Event describes a config mutation or a poll state change.
type Event struct {
	Kind      string     `json:"kind"`
	Entity    string     `json:"entity,omitempty"`
	Action    string     `json:"action,omitempty"`
	IDs       []string   `json:"ids,omitempty"`
	ServiceID string     `json:"serviceId,omitempty"`
	Live      *LiveValue `json:"live,omitempty"`
}

// EventHooks fans an event out to several hooks and joins their errors.
type EventHooks []EventHook

// Notify calls every non-nil hook in order.
func (h EventHooks) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EventHookFunc adapts a function to EventHook.
type EventHookFunc func(ctx context.Context, event Event) error

// Notify calls the wrapped function.
func (f EventHookFunc) Notify(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopEventHook struct{}

func (noopEventHook) Notify(context.Context, Event) error { return nil }
