package startpage

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	event := Event{Kind: EventConfig, Entity: EntityService, Action: "add", IDs: []string{"a"}}
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	select {
	case got := <-ch:
		if got.Entity != EntityService || got.IDs[0] != "a" {
			t.Fatalf("unexpected event %#v", got)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
	cancel()
	cancel()
	if hook.Subscribers() != 0 {
		t.Fatalf("expected subscription to be released")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestBroadcastHookDropsForSlowSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer*2; i++ {
		if err := hook.Notify(context.Background(), Event{Kind: EventPoll}); err != nil {
			t.Fatalf("Notify returned error: %v", err)
		}
	}
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	srv := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial returned error: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hook.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected websocket subscriber")
		}
		time.Sleep(5 * time.Millisecond)
	}
	_ = hook.Notify(context.Background(), Event{Kind: EventPoll, ServiceID: "grafana"})

	var got Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON returned error: %v", err)
	}
	if got.Kind != EventPoll || got.ServiceID != "grafana" {
		t.Fatalf("unexpected event %#v", got)
	}
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	srv := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request returned error: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %s", ct)
	}

	_ = hook.Notify(context.Background(), Event{Kind: EventConfig, Entity: EntitySettings, Action: "update"})
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || line != "event: config\n" {
		t.Fatalf("unexpected event line %q err=%v", line, err)
	}
	line, _ = reader.ReadString('\n')
	var got Event
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &got); err != nil {
		t.Fatalf("decode data line: %v", err)
	}
	if got.Entity != EntitySettings {
		t.Fatalf("unexpected event %#v", got)
	}
}
