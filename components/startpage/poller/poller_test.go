package poller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-startpage/components/startpage"
)

func TestExtractField(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"count":42,"items":[{"name":"a"}]},"status":"ok"}`), &doc))

	value, ok := ExtractField(doc, "data.count")
	require.True(t, ok)
	assert.Equal(t, float64(42), value)

	value, ok = ExtractField(doc, "missing.path")
	assert.False(t, ok)
	assert.Nil(t, value)

	value, ok = ExtractField(doc, "status.length")
	assert.False(t, ok, "walking into a scalar must not panic")
	assert.Nil(t, value)

	value, ok = ExtractField(doc, "data.items.0.name")
	require.True(t, ok)
	assert.Equal(t, "a", value)

	value, ok = ExtractField(doc, "")
	require.True(t, ok)
	assert.Equal(t, doc, value)
}

func TestHTTPFetcherNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.Client()).Fetch(context.Background(), startpage.APIConfig{Endpoint: srv.URL})
	require.Error(t, err)
	assert.Equal(t, "HTTP 500", err.Error())
}

func TestHTTPFetcherSendsBodyOnlyForPost(t *testing.T) {
	var gotMethod, gotBody, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotHeader = r.Header.Get("X-Token")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(srv.Client())
	_, err := fetcher.Fetch(context.Background(), startpage.APIConfig{
		Endpoint: srv.URL,
		Method:   "POST",
		Body:     `{"q":1}`,
		Headers:  map[string]string{"X-Token": "secret"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, `{"q":1}`, gotBody)
	assert.Equal(t, "secret", gotHeader)

	_, err = fetcher.Fetch(context.Background(), startpage.APIConfig{Endpoint: srv.URL, Body: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Empty(t, gotBody)
}

func TestPollerKeepsStaleDataOnError(t *testing.T) {
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"count":42}}`))
	}))
	defer srv.Close()

	p := New(startpage.APIConfig{Endpoint: srv.URL, DisplayField: "data.count"}, WithFetcher(NewHTTPFetcher(srv.Client())))
	state := p.Refresh(context.Background())
	require.Empty(t, state.Error)
	assert.Equal(t, float64(42), state.Data)
	assert.False(t, state.Loading)
	assert.False(t, state.LastUpdated.IsZero())

	failing.Store(true)
	state = p.Refresh(context.Background())
	assert.Equal(t, "HTTP 502", state.Error)
	assert.Equal(t, float64(42), state.Data)
	assert.False(t, state.Loading)
}

func TestPollerSchedulesWithSimulatedClock(t *testing.T) {
	clock := newFakeClock()
	fetcher := newCountingFetcher()
	p := New(startpage.APIConfig{Endpoint: "http://example.test", RefreshInterval: 5},
		WithFetcher(fetcher), WithClock(clock))

	p.Start(context.Background())
	fetcher.wait(t, 1)

	clock.Advance(5 * time.Second)
	fetcher.wait(t, 1)

	clock.Advance(4 * time.Second)
	fetcher.none(t)

	clock.Advance(time.Second)
	fetcher.wait(t, 1)

	p.Stop()
	clock.Advance(30 * time.Second)
	fetcher.none(t)
	assert.EqualValues(t, 3, fetcher.count.Load())
}

func TestPollerWithoutIntervalFetchesOnce(t *testing.T) {
	clock := newFakeClock()
	fetcher := newCountingFetcher()
	p := New(startpage.APIConfig{Endpoint: "http://example.test"}, WithFetcher(fetcher), WithClock(clock))
	p.Start(context.Background())
	fetcher.wait(t, 1)
	clock.Advance(time.Hour)
	fetcher.none(t)
	p.Stop()
}

func TestPollerDropsResultsAfterStop(t *testing.T) {
	fetcher := &lateFetcher{started: make(chan struct{}, 1)}
	p := New(startpage.APIConfig{Endpoint: "http://example.test"}, WithFetcher(fetcher), WithClock(newFakeClock()))
	p.Start(context.Background())
	<-fetcher.started
	p.Stop()

	state := p.State()
	assert.Nil(t, state.Data)
	assert.True(t, state.LastUpdated.IsZero())
}

func TestPollerIgnoresEmptyEndpoint(t *testing.T) {
	fetcher := newCountingFetcher()
	p := New(startpage.APIConfig{}, WithFetcher(fetcher))
	p.Start(context.Background())
	p.Refresh(context.Background())
	p.Stop()
	assert.EqualValues(t, 0, fetcher.count.Load())
}

func TestPollerRecordsResultsToSink(t *testing.T) {
	sink := &recordingSink{}
	p := New(startpage.APIConfig{Endpoint: "http://example.test", DisplayField: "data.count"},
		WithFetcher(newCountingFetcher()), WithServiceID("svc-1"), WithSink(sink))
	p.Refresh(context.Background())

	require.Len(t, sink.results, 1)
	assert.Equal(t, "svc-1", sink.results[0].ServiceID)
	assert.Equal(t, float64(42), sink.results[0].Value)
	assert.NoError(t, sink.results[0].Err)
}

// --- Test helpers ---

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{
		period:  d,
		next:    c.now.Add(d),
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves time forward, delivering every tick that falls due. Each
// send blocks until the poller loop receives it.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	tickers := slices.Clone(c.tickers)
	c.mu.Unlock()
	for _, t := range tickers {
		for !t.next.After(target) {
			select {
			case t.ch <- t.next:
			case <-t.stopped:
			}
			t.next = t.next.Add(t.period)
		}
	}
	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

type fakeTicker struct {
	period  time.Duration
	next    time.Time
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

type countingFetcher struct {
	count atomic.Int64
	calls chan struct{}
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{calls: make(chan struct{}, 32)}
}

func (f *countingFetcher) Fetch(ctx context.Context, cfg startpage.APIConfig) (Response, error) {
	f.count.Add(1)
	f.calls <- struct{}{}
	return Response{
		StatusCode: http.StatusOK,
		Document:   map[string]any{"data": map[string]any{"count": float64(42)}},
	}, nil
}

func (f *countingFetcher) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for fetch %d", i+1)
		}
	}
}

func (f *countingFetcher) none(t *testing.T) {
	t.Helper()
	select {
	case <-f.calls:
		t.Fatalf("unexpected fetch")
	case <-time.After(50 * time.Millisecond):
	}
}

// lateFetcher answers successfully only once its context is cancelled,
// simulating a response that lands after teardown.
type lateFetcher struct {
	started chan struct{}
}

func (f *lateFetcher) Fetch(ctx context.Context, cfg startpage.APIConfig) (Response, error) {
	f.started <- struct{}{}
	<-ctx.Done()
	return Response{StatusCode: http.StatusOK, Document: map[string]any{"late": true}}, nil
}

type recordingSink struct {
	mu      sync.Mutex
	results []Result
}

func (s *recordingSink) Record(_ context.Context, result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}
