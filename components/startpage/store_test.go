package startpage

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"slices"
	"strconv"
	"sync"
	"testing"
)

type failingRepository struct {
	cfg DashboardConfig
	err error
}

func (r *failingRepository) Load(context.Context) (DashboardConfig, LoadSource, error) {
	return r.cfg.Clone(), SourceStored, nil
}

func (r *failingRepository) Save(context.Context, DashboardConfig) error {
	return r.err
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (brokenKV) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

func newTestStore(t *testing.T, kv KeyValueStore) *Store {
	t.Helper()
	store := NewStore(Options{
		Repository: NewConfigRepository(kv, SchemaVersion),
		IDs:        &SequenceGenerator{Prefix: "id-"},
	})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return store
}

func TestStoreLoadPersistsDefaultsWhenMissing(t *testing.T) {
	kv := NewMemoryKV()
	store := newTestStore(t, kv)
	if len(store.Config().Services) != len(defaultServices) {
		t.Fatalf("expected default services, got %d", len(store.Config().Services))
	}
	raw, ok, _ := kv.Get(context.Background(), StorageKey)
	if !ok || raw == "" {
		t.Fatalf("expected defaults to be persisted")
	}
	version, _, _ := kv.Get(context.Background(), VersionKey)
	if version != strconv.Itoa(SchemaVersion) {
		t.Fatalf("expected version %d, got %q", SchemaVersion, version)
	}
}

func TestStoreLoadDiscardsStaleVersion(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	old := NewConfigRepository(kv, SchemaVersion-1)
	custom := DashboardConfig{SearchEngine: SearchBing}
	if err := old.Save(ctx, custom); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	store := newTestStore(t, kv)
	cfg := store.Config()
	if cfg.SearchEngine != SearchGoogle || len(cfg.Services) != len(defaultServices) {
		t.Fatalf("expected defaults after version mismatch, got %#v", cfg.SearchEngine)
	}
}

func TestStoreLoadDiscardsCorruptDocument(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Set(ctx, StorageKey, "{not json")
	_ = kv.Set(ctx, VersionKey, strconv.Itoa(SchemaVersion))
	store := newTestStore(t, kv)
	if len(store.Config().Categories) != len(defaultCategories) {
		t.Fatalf("expected defaults after corrupt document")
	}
	raw, _, _ := kv.Get(ctx, StorageKey)
	if _, err := DecodeConfig([]byte(raw)); err != nil {
		t.Fatalf("expected defaults to overwrite corrupt document: %v", err)
	}
}

func TestStoreLoadReadFailureKeepsDefaults(t *testing.T) {
	store := NewStore(Options{Repository: NewConfigRepository(brokenKV{}, SchemaVersion)})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(store.Config().Services) != len(defaultServices) {
		t.Fatalf("expected defaults after read failure")
	}
}

func TestStoreRoundTripsThroughStorage(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := newTestStore(t, kv)
	svc, err := store.AddService(ctx, ServiceInput{
		Name:        "Home Assistant",
		URL:         "http://ha.local",
		Subcategory: "network-edge",
		APIConfig:   &APIConfig{Endpoint: "http://ha.local/api", Headers: map[string]string{"A": "b"}},
	})
	if err != nil {
		t.Fatalf("AddService returned error: %v", err)
	}
	if svc.ID != "id-1" {
		t.Fatalf("expected sequence id, got %s", svc.ID)
	}
	if err := store.UpdateSettings(ctx, SettingsPatch{Theme: Some(ThemeWarm)}); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	reloaded := newTestStore(t, kv)
	got, ok := reloaded.FindService(svc.ID)
	if !ok || got.APIConfig == nil || got.APIConfig.Headers["A"] != "b" {
		t.Fatalf("expected service to survive reload, got %#v", got)
	}
	if reloaded.Config().Theme != ThemeWarm {
		t.Fatalf("expected theme to survive reload")
	}
}

func TestStoreDeleteCategoryCascades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryKV())
	removed, err := store.DeleteCategory(ctx, "dev")
	if err != nil {
		t.Fatalf("DeleteCategory returned error: %v", err)
	}
	if len(removed.Subcategories) != 2 || len(removed.Services) != 2 {
		t.Fatalf("expected 2 subcategories and 2 services removed, got %#v", removed)
	}
	cfg := store.Config()
	if len(cfg.Categories) != 3 || len(cfg.Subcategories) != 3 || len(cfg.Services) != 6 {
		t.Fatalf("unexpected remaining sizes %d/%d/%d", len(cfg.Categories), len(cfg.Subcategories), len(cfg.Services))
	}
	if err := CheckIntegrity(cfg); err != nil {
		t.Fatalf("expected integrity after cascade: %v", err)
	}
}

func TestStoreDeleteUnknownIsNoop(t *testing.T) {
	hooks := 0
	store := NewStore(Options{Hook: EventHookFunc(func(context.Context, Event) error {
		hooks++
		return nil
	})})
	removed, err := store.DeleteService(context.Background(), "missing")
	if err != nil || !removed.Empty() {
		t.Fatalf("expected empty cascade, got %#v err=%v", removed, err)
	}
	if hooks != 0 {
		t.Fatalf("expected no events for a no-op delete")
	}
}

func TestStoreUpdateKeepsID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryKV())
	found, err := store.UpdateService(ctx, "plex", ServicePatch{Name: Some("Plex Media"), APIConfig: Some[*APIConfig](nil)})
	if err != nil || !found {
		t.Fatalf("UpdateService returned found=%v err=%v", found, err)
	}
	svc, _ := store.FindService("plex")
	if svc.Name != "Plex Media" || svc.URL != "https://plex.tv" {
		t.Fatalf("expected merged update, got %#v", svc)
	}
	found, err = store.UpdateService(ctx, "missing", ServicePatch{Name: Some("x")})
	if err != nil || found {
		t.Fatalf("expected unknown id to report false")
	}
}

func TestStorePersistenceFailureKeepsMutation(t *testing.T) {
	telemetry := &recordingTelemetry{}
	store := NewStore(Options{
		Repository: &failingRepository{cfg: DefaultConfig(), err: errors.New("quota exceeded")},
		Telemetry:  telemetry,
	})
	_, err := store.AddCategory(context.Background(), CategoryInput{Name: "Home"})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(store.Config().Categories) != len(defaultCategories)+1 {
		t.Fatalf("expected in-memory mutation to stand")
	}
	if !slices.Contains(telemetry.events, "startpage.category.add") {
		t.Fatalf("expected telemetry event, got %v", telemetry.events)
	}
}

func TestStoreMoveServiceWithinColumn(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryKV())
	moved, err := store.MoveService(ctx, "jellyfin", "plex")
	if err != nil || !moved {
		t.Fatalf("MoveService returned moved=%v err=%v", moved, err)
	}
	column := SortByOrder(ServicesInSubcategory(store.Config().Services, "media-servers"))
	if column[0].ID != "jellyfin" || column[1].ID != "plex" {
		t.Fatalf("expected jellyfin first, got %s, %s", column[0].ID, column[1].ID)
	}

	moved, err = store.MoveService(ctx, "plex", "github")
	if err != nil || moved {
		t.Fatalf("expected cross-column move to be ignored")
	}
}

func TestStoreMoveCategory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryKV())
	if moved, err := store.MoveCategory(ctx, "network", "media"); err != nil || !moved {
		t.Fatalf("MoveCategory returned moved=%v err=%v", moved, err)
	}
	order := categoryIDs(SortByOrder(store.Config().Categories))
	want := []string{"network", "media", "dev", "monitoring"}
	if !slices.Equal(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestStoreEmitsConfigEvents(t *testing.T) {
	broadcast := NewBroadcastHook()
	events, cancel := broadcast.Subscribe()
	defer cancel()
	store := NewStore(Options{Hook: broadcast, IDs: &SequenceGenerator{}})
	if _, err := store.AddSubcategory(context.Background(), SubcategoryInput{Name: "Home", CategoryID: "media"}); err != nil {
		t.Fatalf("AddSubcategory returned error: %v", err)
	}
	select {
	case evt := <-events:
		if evt.Kind != EventConfig || evt.Entity != EntitySubcategory || evt.Action != "add" || !slices.Equal(evt.IDs, []string{"1"}) {
			t.Fatalf("unexpected event %#v", evt)
		}
	default:
		t.Fatalf("expected config event")
	}
}

func TestStoreResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryKV())
	if _, err := store.DeleteCategory(ctx, "media"); err != nil {
		t.Fatalf("DeleteCategory returned error: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if len(store.Config().Categories) != len(defaultCategories) {
		t.Fatalf("expected defaults after reset")
	}
}

func TestStoreReloadAdoptsExternalChanges(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := newTestStore(t, kv)
	other := newTestStore(t, kv)

	changed, err := store.Reload(ctx)
	if err != nil || changed {
		t.Fatalf("expected no change, got changed=%v err=%v", changed, err)
	}
	if err := other.UpdateSettings(ctx, SettingsPatch{ShowWeather: Some(false)}); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	changed, err = store.Reload(ctx)
	if err != nil || !changed {
		t.Fatalf("expected change, got changed=%v err=%v", changed, err)
	}
	if store.Config().ShowWeather {
		t.Fatalf("expected reloaded settings")
	}
}

func TestStoreConfigReturnsCopy(t *testing.T) {
	store := NewStore(Options{})
	cfg := store.Config()
	cfg.Services[0].Name = "mutated"
	if store.Config().Services[0].Name == "mutated" {
		t.Fatalf("expected Config to return a deep copy")
	}
}

func TestStoreKeepsIntegrityUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryKV())
	rnd := rand.New(rand.NewPCG(1, 2))

	pick := func(ids []string) string {
		if len(ids) == 0 {
			return "missing"
		}
		return ids[rnd.IntN(len(ids))]
	}
	for i := 0; i < 300; i++ {
		cfg := store.Config()
		cats := categoryIDs(cfg.Categories)
		subs := subcategoryIDs(cfg.Subcategories)
		svcs := serviceIDs(cfg.Services)
		var err error
		switch rnd.IntN(9) {
		case 0:
			_, err = store.AddCategory(ctx, CategoryInput{Name: "c"})
		case 1:
			if len(cats) > 0 {
				_, err = store.AddSubcategory(ctx, SubcategoryInput{Name: "s", CategoryID: pick(cats)})
			}
		case 2:
			if len(subs) > 0 {
				_, err = store.AddService(ctx, ServiceInput{Name: "x", URL: "http://x", Subcategory: pick(subs)})
			}
		case 3:
			_, err = store.DeleteCategory(ctx, pick(cats))
		case 4:
			_, err = store.DeleteSubcategory(ctx, pick(subs))
		case 5:
			_, err = store.DeleteService(ctx, pick(svcs))
		case 6:
			_, err = store.MoveService(ctx, pick(svcs), pick(svcs))
		case 7:
			_, err = store.MoveSubcategory(ctx, pick(subs), pick(subs))
		case 8:
			_, err = store.MoveCategory(ctx, pick(cats), pick(cats))
		}
		if err != nil {
			t.Fatalf("operation %d returned error: %v", i, err)
		}
		if err := CheckIntegrity(store.Config()); err != nil {
			t.Fatalf("integrity broken after operation %d: %v", i, err)
		}
	}
}

type pausingRepository struct {
	*ConfigRepository
	pause   chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (r *pausingRepository) Load(ctx context.Context) (DashboardConfig, LoadSource, error) {
	cfg, source, err := r.ConfigRepository.Load(ctx)
	if r.pause != nil {
		r.once.Do(func() { close(r.entered) })
		<-r.pause
	}
	return cfg, source, err
}

func TestStoreReloadDoesNotDropConcurrentMutation(t *testing.T) {
	ctx := context.Background()
	repo := &pausingRepository{ConfigRepository: NewConfigRepository(NewMemoryKV(), SchemaVersion)}
	store := NewStore(Options{Repository: repo, IDs: &SequenceGenerator{Prefix: "n"}})
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	repo.pause = make(chan struct{})
	repo.entered = make(chan struct{})
	reloaded := make(chan error, 1)
	go func() {
		_, err := store.Reload(ctx)
		reloaded <- err
	}()
	<-repo.entered

	added := make(chan error, 1)
	go func() {
		_, err := store.AddService(ctx, ServiceInput{Name: "Late", URL: "http://late.local", Subcategory: "dev-code"})
		added <- err
	}()
	close(repo.pause)

	if err := <-reloaded; err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if err := <-added; err != nil {
		t.Fatalf("AddService returned error: %v", err)
	}
	if _, ok := store.FindService("n1"); !ok {
		t.Fatalf("expected service added during reload to survive")
	}
	changed, err := store.Reload(ctx)
	if err != nil || changed {
		t.Fatalf("expected persisted state to match memory, got changed=%v err=%v", changed, err)
	}
}

func TestStoreEmptyHeadersSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := newTestStore(t, kv)
	if _, err := store.AddService(ctx, ServiceInput{
		Name:        "Status",
		URL:         "http://status.local",
		Subcategory: "monitoring-metrics",
		APIConfig:   &APIConfig{Endpoint: "http://status.local/api", Headers: map[string]string{}},
	}); err != nil {
		t.Fatalf("AddService returned error: %v", err)
	}

	reloaded := newTestStore(t, kv)
	if !reflect.DeepEqual(store.Config(), reloaded.Config()) {
		t.Fatalf("expected persisted config to equal memory\nwant %#v\ngot  %#v", store.Config(), reloaded.Config())
	}
	changed, err := store.Reload(ctx)
	if err != nil || changed {
		t.Fatalf("expected reload to report no change, got changed=%v err=%v", changed, err)
	}
}

func TestStoreArrangeServicesKeepsColumnsDense(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryKV())
	if err := store.ArrangeServices(ctx, []string{"jellyfin", "nginx", "unknown"}); err != nil {
		t.Fatalf("ArrangeServices returned error: %v", err)
	}

	cfg := store.Config()
	columns := map[string][]string{
		"media-servers":      {"jellyfin", "plex"},
		"network-edge":       {"nginx", "pihole"},
		"monitoring-metrics": {"grafana", "prometheus"},
	}
	for sub, want := range columns {
		column := SortByOrder(ServicesInSubcategory(cfg.Services, sub))
		if got := serviceIDs(column); !slices.Equal(got, want) {
			t.Fatalf("column %s: expected %v, got %v", sub, want, got)
		}
		for i, svc := range column {
			if svc.Order != i {
				t.Fatalf("column %s: expected dense order, %s has %d", sub, svc.ID, svc.Order)
			}
		}
	}
	if len(cfg.Services) != len(DefaultConfig().Services) {
		t.Fatalf("expected no services lost, got %d", len(cfg.Services))
	}
}
