package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-startpage/components/startpage"
)

const fallbackErrorMessage = "failed to fetch data"

// State is the observable poll state of one service. Data survives failures
// so the last good value stays visible next to the error.
type State struct {
	Data        any       `json:"data,omitempty"`
	Loading     bool      `json:"loading"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
}

// LiveValue converts the state for transports.
func (s State) LiveValue() startpage.LiveValue {
	return startpage.LiveValue{
		Data:        s.Data,
		Loading:     s.Loading,
		Error:       s.Error,
		LastUpdated: s.LastUpdated,
	}
}

// Result describes one completed fetch.
type Result struct {
	ServiceID  string
	Endpoint   string
	StatusCode int
	Document   any
	Value      any
	Err        error
	Duration   time.Duration
	At         time.Time
}

// Sink receives every applied fetch result.
type Sink interface {
	Record(ctx context.Context, result Result)
}

// Option customizes a Poller.
type Option func(*Poller)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(p *Poller) {
		if f != nil {
			p.fetcher = f
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithServiceID labels results and state changes.
func WithServiceID(id string) Option {
	return func(p *Poller) {
		p.serviceID = id
	}
}

// WithSink forwards applied results to s.
func WithSink(s Sink) Option {
	return func(p *Poller) {
		p.sink = s
	}
}

// WithStateListener is called after every state transition.
func WithStateListener(fn func(State)) Option {
	return func(p *Poller) {
		p.onChange = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// Poller fetches one endpoint immediately on Start and then every
// RefreshInterval seconds until Stop.
type Poller struct {
	cfg       startpage.APIConfig
	serviceID string
	fetcher   Fetcher
	clock     Clock
	sink      Sink
	onChange  func(State)
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	seq     uint64
	applied uint64
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds an idle poller for cfg.
func New(cfg startpage.APIConfig, opts ...Option) *Poller {
	p := &Poller{
		cfg:     cfg,
		fetcher: NewHTTPFetcher(nil),
		clock:   realClock{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Config returns the polled APIConfig.
func (p *Poller) Config() startpage.APIConfig {
	return p.cfg
}

// State returns the current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start fetches once and, when RefreshInterval is positive, schedules repeat
// fetches. A running schedule is stopped first.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()
	if p.cfg.Endpoint == "" {
		return
	}
	p.mu.Lock()
	p.gen++
	gen := p.gen
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	var ticker Ticker
	if p.cfg.RefreshInterval > 0 {
		ticker = p.clock.NewTicker(time.Duration(p.cfg.RefreshInterval) * time.Second)
	}
	go p.run(loopCtx, gen, ticker, done)
}

func (p *Poller) run(ctx context.Context, gen uint64, ticker Ticker, done chan struct{}) {
	defer close(done)
	if ticker != nil {
		defer ticker.Stop()
	}
	p.fetch(ctx, gen)
	if ticker == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			p.fetch(ctx, gen)
		}
	}
}

// Stop cancels the schedule and any in-flight fetch. Results that arrive
// afterwards are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.gen++
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Refresh fetches immediately, independent of the schedule, and returns the
// resulting state.
func (p *Poller) Refresh(ctx context.Context) State {
	if p.cfg.Endpoint == "" {
		return p.State()
	}
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()
	return p.fetch(ctx, gen)
}

func (p *Poller) fetch(ctx context.Context, gen uint64) State {
	p.mu.Lock()
	if gen != p.gen {
		state := p.state
		p.mu.Unlock()
		return state
	}
	p.seq++
	seq := p.seq
	p.state.Loading = true
	p.state.Error = ""
	loading := p.state
	p.mu.Unlock()
	p.notify(loading)

	started := p.clock.Now()
	resp, err := p.fetcher.Fetch(ctx, p.cfg)
	var value any
	if err == nil {
		value, _ = ExtractField(resp.Document, p.cfg.DisplayField)
	}
	finished := p.clock.Now()

	p.mu.Lock()
	if gen != p.gen || seq < p.applied || ctx.Err() != nil {
		state := p.state
		p.mu.Unlock()
		return state
	}
	p.applied = seq
	if err != nil {
		p.state.Loading = false
		p.state.Error = errorMessage(err)
	} else {
		p.state = State{Data: value, LastUpdated: finished}
	}
	state := p.state
	p.mu.Unlock()

	if err != nil {
		p.logger.Debug("poller: fetch failed", "service_id", p.serviceID, "endpoint", p.cfg.Endpoint, "error", err)
	}
	p.notify(state)
	if p.sink != nil {
		p.sink.Record(ctx, Result{
			ServiceID:  p.serviceID,
			Endpoint:   p.cfg.Endpoint,
			StatusCode: resp.StatusCode,
			Document:   resp.Document,
			Value:      value,
			Err:        err,
			Duration:   finished.Sub(started),
			At:         finished,
		})
	}
	return state
}

func (p *Poller) notify(state State) {
	if p.onChange != nil {
		p.onChange(state)
	}
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackErrorMessage
}
