package startpage

import (
	"context"
	"errors"

	"github.com/goliatone/go-startpage/pkg/activity"
)

type actorKey struct{}

// ContextWithActor tags ctx with the id of whoever triggers a mutation.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actorID)
}

func actorFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// ActivityHook turns config events into activity records. Poll events are
// ignored.
type ActivityHook struct {
	Emitter *activity.Emitter
}

// Notify emits one record per affected id.
func (h ActivityHook) Notify(ctx context.Context, event Event) error {
	if event.Kind != EventConfig || !h.Emitter.Enabled() {
		return nil
	}
	verb := "startpage." + event.Entity + "." + event.Action
	ids := event.IDs
	if len(ids) == 0 {
		ids = []string{event.Entity}
	}
	var errs []error
	for _, id := range ids {
		err := h.Emitter.Emit(ctx, activity.Event{
			Verb:       verb,
			ActorID:    actorFrom(ctx),
			ObjectType: event.Entity,
			ObjectID:   id,
			Metadata:   map[string]any{"batch_size": len(event.IDs)},
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
