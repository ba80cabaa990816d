package startpage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubHistory struct {
	records []PollRecord
	calls   int
	err     error
}

func (s *stubHistory) History(_ context.Context, serviceID string, limit int) ([]PollRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestChartCacheExpires(t *testing.T) {
	cache := NewChartCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	renders := 0
	render := func() (string, error) {
		renders++
		return "<div>chart</div>", nil
	}
	for i := 0; i < 2; i++ {
		if _, err := cache.GetOrRender("svc:1", render); err != nil {
			t.Fatalf("GetOrRender returned error: %v", err)
		}
	}
	if renders != 1 {
		t.Fatalf("expected cached render, got %d renders", renders)
	}
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetOrRender("svc:1", render)
	if renders != 2 {
		t.Fatalf("expected expired entry to re-render")
	}
	cache.Invalidate("svc")
	_, _ = cache.GetOrRender("svc:1", render)
	if renders != 3 {
		t.Fatalf("expected invalidated entry to re-render")
	}
}

func TestChartCacheDisabledWithoutTTL(t *testing.T) {
	cache := NewChartCache(0)
	renders := 0
	for i := 0; i < 2; i++ {
		_, _ = cache.GetOrRender("k", func() (string, error) {
			renders++
			return "x", nil
		})
	}
	if renders != 2 {
		t.Fatalf("expected every call to render, got %d", renders)
	}
}

func TestHistoryChartRendersLatency(t *testing.T) {
	history := &stubHistory{records: []PollRecord{
		{ServiceID: "grafana", Status: "ok", DurationMS: 12, At: 1},
		{ServiceID: "grafana", Status: "HTTP 500", DurationMS: 40, At: 2},
	}}
	chart := NewHistoryChart(history, WithHistoryCache(NewChartCache(time.Minute)))
	html, err := chart.Render(context.Background(), "grafana")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(html, "grafana") || !strings.Contains(html, "echarts") {
		t.Fatalf("expected chart markup, got %q", html)
	}
	if _, err := chart.Render(context.Background(), "grafana"); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if history.calls != 2 {
		t.Fatalf("expected history to be queried per render, got %d", history.calls)
	}
}

func TestHistoryChartPropagatesErrors(t *testing.T) {
	chart := NewHistoryChart(&stubHistory{err: errors.New("db locked")})
	if _, err := chart.Render(context.Background(), "x"); err == nil {
		t.Fatalf("expected history error")
	}
	if _, err := NewHistoryChart(nil).Render(context.Background(), "x"); err == nil {
		t.Fatalf("expected missing history error")
	}
}
