package startpage

import (
	"context"
	"testing"

	"github.com/goliatone/go-startpage/pkg/activity"
)

func TestActivityHookEmitsPerID(t *testing.T) {
	capture := &activity.CaptureHook{}
	hook := ActivityHook{Emitter: activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})}
	store := NewStore(Options{Hook: hook})

	ctx := ContextWithActor(context.Background(), "user-1")
	if _, err := store.DeleteCategory(ctx, "media"); err != nil {
		t.Fatalf("DeleteCategory returned error: %v", err)
	}
	if len(capture.Events) != 4 {
		t.Fatalf("expected one activity per removed entity, got %d", len(capture.Events))
	}
	evt := capture.Events[0]
	if evt.Verb != "startpage.category.delete" || evt.ActorID != "user-1" || evt.ObjectID != "media" {
		t.Fatalf("unexpected activity %#v", evt)
	}
	if evt.Channel != activity.DefaultChannel {
		t.Fatalf("expected default channel, got %s", evt.Channel)
	}
}

func TestActivityHookIgnoresPollEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	hook := ActivityHook{Emitter: activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})}
	if err := hook.Notify(context.Background(), Event{Kind: EventPoll, ServiceID: "x"}); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected poll events to be ignored")
	}
	if err := (ActivityHook{}).Notify(context.Background(), Event{Kind: EventConfig}); err != nil {
		t.Fatalf("expected nil emitter to be a no-op: %v", err)
	}
}
