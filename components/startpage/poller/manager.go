package poller

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/goliatone/go-startpage/components/startpage"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Source  startpage.ConfigSource
	Fetcher Fetcher
	Clock   Clock
	Sink    Sink
	Hook    startpage.EventHook
	Logger  *slog.Logger
}

// Manager keeps one Poller per service that has an apiConfig. Pollers are
// independent: a failing endpoint never affects its siblings.
type Manager struct {
	opts ManagerOptions

	mu      sync.Mutex
	ctx     context.Context
	pollers map[string]*Poller
}

// NewManager builds an idle manager. Call Start to begin polling.
func NewManager(opts ManagerOptions) *Manager {
	if opts.Fetcher == nil {
		opts.Fetcher = NewHTTPFetcher(nil)
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{opts: opts, pollers: map[string]*Poller{}}
}

// Start binds the manager to ctx and syncs with the config source.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()
	if m.opts.Source != nil {
		m.Sync(m.opts.Source.Config().Services)
	}
}

// Sync starts pollers for new services, stops pollers for removed ones and
// restarts pollers whose apiConfig changed.
func (m *Manager) Sync(services []startpage.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return
	}
	wanted := make(map[string]startpage.APIConfig, len(services))
	for _, svc := range services {
		if svc.APIConfig != nil && svc.APIConfig.Endpoint != "" {
			wanted[svc.ID] = *svc.APIConfig
		}
	}
	for id, p := range m.pollers {
		cfg, ok := wanted[id]
		if ok && reflect.DeepEqual(cfg, p.Config()) {
			delete(wanted, id)
			continue
		}
		p.Stop()
		delete(m.pollers, id)
	}
	for id, cfg := range wanted {
		p := m.newPoller(id, cfg)
		m.pollers[id] = p
		p.Start(m.ctx)
	}
}

func (m *Manager) newPoller(id string, cfg startpage.APIConfig) *Poller {
	return New(cfg,
		WithServiceID(id),
		WithFetcher(m.opts.Fetcher),
		WithClock(m.opts.Clock),
		WithSink(m.opts.Sink),
		WithLogger(m.opts.Logger),
		WithStateListener(func(state State) {
			m.publish(id, state)
		}),
	)
}

func (m *Manager) publish(serviceID string, state State) {
	if m.opts.Hook == nil {
		return
	}
	live := state.LiveValue()
	event := startpage.Event{Kind: startpage.EventPoll, ServiceID: serviceID, Live: &live}
	if err := m.opts.Hook.Notify(context.Background(), event); err != nil {
		m.opts.Logger.Warn("poller: state hook failed", "service_id", serviceID, "error", err)
	}
}

// Notify satisfies startpage.EventHook and re-syncs on config changes.
func (m *Manager) Notify(_ context.Context, event startpage.Event) error {
	if event.Kind != startpage.EventConfig || m.opts.Source == nil {
		return nil
	}
	m.Sync(m.opts.Source.Config().Services)
	return nil
}

// Refresh triggers an immediate fetch for serviceID.
func (m *Manager) Refresh(ctx context.Context, serviceID string) (State, bool) {
	p, ok := m.poller(serviceID)
	if !ok {
		return State{}, false
	}
	return p.Refresh(ctx), true
}

// State returns the current state for serviceID.
func (m *Manager) State(serviceID string) (State, bool) {
	p, ok := m.poller(serviceID)
	if !ok {
		return State{}, false
	}
	return p.State(), true
}

// Live satisfies startpage.LiveSource.
func (m *Manager) Live(serviceID string) (startpage.LiveValue, bool) {
	state, ok := m.State(serviceID)
	if !ok {
		return startpage.LiveValue{}, false
	}
	return state.LiveValue(), true
}

// Services lists the ids currently polled.
func (m *Manager) Services() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.pollers))
	for id := range m.pollers {
		out = append(out, id)
	}
	return out
}

// Close stops every poller.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.pollers {
		p.Stop()
		delete(m.pollers, id)
	}
	m.ctx = nil
}

func (m *Manager) poller(serviceID string) (*Poller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pollers[serviceID]
	return p, ok
}
