package startpage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
)

// ErrPersistence wraps storage failures raised after a mutation was applied.
// The in-memory state keeps the mutation; only the write is lost.
var ErrPersistence = errors.New("startpage: persist config")

// Repository loads and saves the whole config document.
type Repository interface {
	Load(ctx context.Context) (DashboardConfig, LoadSource, error)
	Save(ctx context.Context, cfg DashboardConfig) error
}

// Options configures the Store. Every collaborator is an interface so
// applications can swap storage, id generation and transports.
type Options struct {
	Repository Repository
	IDs        IDGenerator
	Hook       EventHook
	Telemetry  Telemetry
	Logger     *slog.Logger
}

// Store owns the DashboardConfig. Mutations are serialized, applied in the
// order they arrive and persisted as a whole document after each change.
type Store struct {
	opts Options
	mu   sync.RWMutex
	cfg  DashboardConfig
}

// NewStore builds a Store holding the defaults until Load is called.
func NewStore(opts Options) *Store {
	if opts.Repository == nil {
		opts.Repository = NewConfigRepository(NewMemoryKV(), SchemaVersion)
	}
	if opts.IDs == nil {
		opts.IDs = UUIDGenerator{}
	}
	if opts.Hook == nil {
		opts.Hook = noopEventHook{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Store{opts: opts, cfg: DefaultConfig()}
}

// Load replaces the in-memory config with the persisted one. Missing, stale
// or corrupt documents fall back to the defaults, which are then persisted.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	cfg, source, err := s.opts.Repository.Load(ctx)
	s.cfg = cfg.Clone()
	s.mu.Unlock()
	if err != nil {
		s.opts.Logger.Warn("startpage: config load failed, using defaults", "error", err)
		return nil
	}
	if source == SourceStored {
		return nil
	}
	if source != SourceMissing {
		s.opts.Logger.Warn("startpage: discarding persisted config", "source", string(source))
	}
	return s.Save(ctx)
}

// Save persists the current config.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

// Config returns a deep copy of the current config.
func (s *Store) Config() DashboardConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// FindService returns the service with the given id.
func (s *Store) FindService(id string) (Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := slices.IndexFunc(s.cfg.Services, func(svc Service) bool { return svc.ID == id })
	if idx < 0 {
		return Service{}, false
	}
	return s.cfg.Services[idx].clone(), true
}

// AddService appends a service with a freshly generated id.
func (s *Store) AddService(ctx context.Context, in ServiceInput) (Service, error) {
	svc := Service{
		Name:        in.Name,
		URL:         in.URL,
		Icon:        in.Icon,
		Description: in.Description,
		Subcategory: in.Subcategory,
		Order:       in.Order,
		APIConfig:   in.APIConfig,
	}
	err := s.mutate(ctx, EntityService, "add", func(cfg *DashboardConfig) ([]string, bool) {
		svc.ID = s.opts.IDs.NewID()
		svc = svc.clone()
		cfg.Services = append(cfg.Services, svc)
		return []string{svc.ID}, true
	})
	return svc, err
}

// UpdateService merges patch into the service. Unknown ids are a no-op and
// report false.
func (s *Store) UpdateService(ctx context.Context, id string, patch ServicePatch) (bool, error) {
	found := false
	err := s.mutate(ctx, EntityService, "update", func(cfg *DashboardConfig) ([]string, bool) {
		idx := slices.IndexFunc(cfg.Services, func(svc Service) bool { return svc.ID == id })
		if idx < 0 {
			return nil, false
		}
		found = true
		next := patch.Apply(cfg.Services[idx])
		next.ID = id
		cfg.Services[idx] = next
		return []string{id}, true
	})
	return found, err
}

// DeleteService removes the service.
func (s *Store) DeleteService(ctx context.Context, id string) (Cascade, error) {
	return s.remove(ctx, EntityService, func(cfg DashboardConfig) Cascade {
		return CascadeService(cfg, id)
	})
}

// ReorderServices replaces the service collection wholesale.
func (s *Store) ReorderServices(ctx context.Context, services []Service) error {
	return s.mutate(ctx, EntityService, "reorder", func(cfg *DashboardConfig) ([]string, bool) {
		cfg.Services = DashboardConfig{Services: services}.Clone().Services
		return serviceIDs(cfg.Services), true
	})
}

// ArrangeServices orders every subcategory column following ids. Services the
// list omits keep their relative sequence after the listed ones.
func (s *Store) ArrangeServices(ctx context.Context, ids []string) error {
	return s.mutate(ctx, EntityService, "reorder", func(cfg *DashboardConfig) ([]string, bool) {
		cfg.Services = arrangeWithin(cfg.Services, ids, func(svc Service) string { return svc.Subcategory })
		return serviceIDs(cfg.Services), true
	})
}

// MoveService reconciles a drag of movedID onto targetID inside the moved
// service's subcategory column. Targets outside that column are ignored.
func (s *Store) MoveService(ctx context.Context, movedID, targetID string) (bool, error) {
	moved := false
	err := s.mutate(ctx, EntityService, "move", func(cfg *DashboardConfig) ([]string, bool) {
		idx := slices.IndexFunc(cfg.Services, func(svc Service) bool { return svc.ID == movedID })
		if idx < 0 {
			return nil, false
		}
		column := ServicesInSubcategory(cfg.Services, cfg.Services[idx].Subcategory)
		reordered, ok := Move(column, movedID, targetID)
		if !ok {
			return nil, false
		}
		moved = true
		cfg.Services = mergeOrdered(cfg.Services, reordered)
		return serviceIDs(reordered), true
	})
	return moved, err
}

// AddSubcategory appends a subcategory with a freshly generated id.
func (s *Store) AddSubcategory(ctx context.Context, in SubcategoryInput) (Subcategory, error) {
	sub := Subcategory{
		Name:       in.Name,
		Icon:       in.Icon,
		Color:      in.Color,
		CategoryID: in.CategoryID,
		Order:      in.Order,
	}
	err := s.mutate(ctx, EntitySubcategory, "add", func(cfg *DashboardConfig) ([]string, bool) {
		sub.ID = s.opts.IDs.NewID()
		cfg.Subcategories = append(cfg.Subcategories, sub)
		return []string{sub.ID}, true
	})
	return sub, err
}

// UpdateSubcategory merges patch into the subcategory.
func (s *Store) UpdateSubcategory(ctx context.Context, id string, patch SubcategoryPatch) (bool, error) {
	found := false
	err := s.mutate(ctx, EntitySubcategory, "update", func(cfg *DashboardConfig) ([]string, bool) {
		idx := slices.IndexFunc(cfg.Subcategories, func(sub Subcategory) bool { return sub.ID == id })
		if idx < 0 {
			return nil, false
		}
		found = true
		next := patch.Apply(cfg.Subcategories[idx])
		next.ID = id
		cfg.Subcategories[idx] = next
		return []string{id}, true
	})
	return found, err
}

// DeleteSubcategory removes the subcategory and every service inside it.
func (s *Store) DeleteSubcategory(ctx context.Context, id string) (Cascade, error) {
	return s.remove(ctx, EntitySubcategory, func(cfg DashboardConfig) Cascade {
		return CascadeSubcategory(cfg, id)
	})
}

// ReorderSubcategories replaces the subcategory collection wholesale.
func (s *Store) ReorderSubcategories(ctx context.Context, subcategories []Subcategory) error {
	return s.mutate(ctx, EntitySubcategory, "reorder", func(cfg *DashboardConfig) ([]string, bool) {
		cfg.Subcategories = slices.Clone(subcategories)
		return subcategoryIDs(cfg.Subcategories), true
	})
}

// MoveSubcategory reconciles a drag within the moved subcategory's category.
func (s *Store) MoveSubcategory(ctx context.Context, movedID, targetID string) (bool, error) {
	moved := false
	err := s.mutate(ctx, EntitySubcategory, "move", func(cfg *DashboardConfig) ([]string, bool) {
		idx := slices.IndexFunc(cfg.Subcategories, func(sub Subcategory) bool { return sub.ID == movedID })
		if idx < 0 {
			return nil, false
		}
		column := SubcategoriesInCategory(cfg.Subcategories, cfg.Subcategories[idx].CategoryID)
		reordered, ok := Move(column, movedID, targetID)
		if !ok {
			return nil, false
		}
		moved = true
		cfg.Subcategories = mergeOrdered(cfg.Subcategories, reordered)
		return subcategoryIDs(reordered), true
	})
	return moved, err
}

// AddCategory appends a category with a freshly generated id.
func (s *Store) AddCategory(ctx context.Context, in CategoryInput) (Category, error) {
	cat := Category{Name: in.Name, Icon: in.Icon, Color: in.Color, Order: in.Order}
	err := s.mutate(ctx, EntityCategory, "add", func(cfg *DashboardConfig) ([]string, bool) {
		cat.ID = s.opts.IDs.NewID()
		cfg.Categories = append(cfg.Categories, cat)
		return []string{cat.ID}, true
	})
	return cat, err
}

// UpdateCategory merges patch into the category.
func (s *Store) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (bool, error) {
	found := false
	err := s.mutate(ctx, EntityCategory, "update", func(cfg *DashboardConfig) ([]string, bool) {
		idx := slices.IndexFunc(cfg.Categories, func(cat Category) bool { return cat.ID == id })
		if idx < 0 {
			return nil, false
		}
		found = true
		next := patch.Apply(cfg.Categories[idx])
		next.ID = id
		cfg.Categories[idx] = next
		return []string{id}, true
	})
	return found, err
}

// DeleteCategory removes the category, its subcategories and their services.
func (s *Store) DeleteCategory(ctx context.Context, id string) (Cascade, error) {
	return s.remove(ctx, EntityCategory, func(cfg DashboardConfig) Cascade {
		return CascadeCategory(cfg, id)
	})
}

// ArrangeSubcategories orders the subcategories of every category following ids.
func (s *Store) ArrangeSubcategories(ctx context.Context, ids []string) error {
	return s.mutate(ctx, EntitySubcategory, "reorder", func(cfg *DashboardConfig) ([]string, bool) {
		cfg.Subcategories = arrangeWithin(cfg.Subcategories, ids, func(sub Subcategory) string { return sub.CategoryID })
		return subcategoryIDs(cfg.Subcategories), true
	})
}

// ReorderCategories replaces the category collection wholesale.
func (s *Store) ReorderCategories(ctx context.Context, categories []Category) error {
	return s.mutate(ctx, EntityCategory, "reorder", func(cfg *DashboardConfig) ([]string, bool) {
		cfg.Categories = slices.Clone(categories)
		return categoryIDs(cfg.Categories), true
	})
}

// MoveCategory reconciles a drag across the tab strip.
func (s *Store) MoveCategory(ctx context.Context, movedID, targetID string) (bool, error) {
	moved := false
	err := s.mutate(ctx, EntityCategory, "move", func(cfg *DashboardConfig) ([]string, bool) {
		reordered, ok := Move(cfg.Categories, movedID, targetID)
		if !ok {
			return nil, false
		}
		moved = true
		cfg.Categories = reordered
		return categoryIDs(reordered), true
	})
	return moved, err
}

// ArrangeCategories orders the category tabs following ids.
func (s *Store) ArrangeCategories(ctx context.Context, ids []string) error {
	return s.mutate(ctx, EntityCategory, "reorder", func(cfg *DashboardConfig) ([]string, bool) {
		cfg.Categories = OrderByIDs(cfg.Categories, ids)
		return categoryIDs(cfg.Categories), true
	})
}

// UpdateSettings merges top-level settings.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	if patch.Empty() {
		return nil
	}
	return s.mutate(ctx, EntitySettings, "update", func(cfg *DashboardConfig) ([]string, bool) {
		*cfg = patch.Apply(*cfg)
		return nil, true
	})
}

// Reset replaces the config with the default snapshot.
func (s *Store) Reset(ctx context.Context) error {
	return s.mutate(ctx, EntityConfig, "reset", func(cfg *DashboardConfig) ([]string, bool) {
		*cfg = DefaultConfig()
		return nil, true
	})
}

// Replace swaps in a whole config, typically an imported document.
func (s *Store) Replace(ctx context.Context, next DashboardConfig) error {
	return s.mutate(ctx, EntityConfig, "replace", func(cfg *DashboardConfig) ([]string, bool) {
		*cfg = next.Clone()
		return nil, true
	})
}

// Reload re-reads the persisted document without writing it back. It reports
// whether the in-memory config changed.
//
// The read happens under the write lock so a mutation cannot commit between
// the read and the install.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	cfg, source, err := s.opts.Repository.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if source != SourceStored {
		s.mu.Unlock()
		s.opts.Logger.Warn("startpage: ignoring reload", "source", string(source))
		return false, nil
	}
	cfg = cfg.Clone()
	if reflect.DeepEqual(s.cfg, cfg) {
		s.mu.Unlock()
		return false, nil
	}
	s.cfg = cfg
	s.mu.Unlock()
	s.afterMutation(ctx, Event{Kind: EventConfig, Entity: EntityConfig, Action: "reload"})
	return true, nil
}

func (s *Store) remove(ctx context.Context, entity string, plan func(DashboardConfig) Cascade) (Cascade, error) {
	var removed Cascade
	err := s.mutate(ctx, entity, "delete", func(cfg *DashboardConfig) ([]string, bool) {
		removed = plan(*cfg)
		if removed.Empty() {
			return nil, false
		}
		*cfg = removed.Without(*cfg)
		return removed.IDs(), true
	})
	return removed, err
}

// mutate applies fn to a copy of the config under the write lock. When fn
// reports a change the copy is installed and persisted; hooks run after the
// lock is released.
func (s *Store) mutate(ctx context.Context, entity, action string, fn func(cfg *DashboardConfig) ([]string, bool)) error {
	s.mu.Lock()
	next := s.cfg.Clone()
	ids, changed := fn(&next)
	if !changed {
		s.mu.Unlock()
		return nil
	}
	s.cfg = next.Clone()
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.afterMutation(ctx, Event{Kind: EventConfig, Entity: entity, Action: action, IDs: ids})
	return err
}

func (s *Store) afterMutation(ctx context.Context, event Event) {
	if err := s.opts.Hook.Notify(ctx, event); err != nil {
		s.opts.Logger.Warn("startpage: event hook failed", "entity", event.Entity, "action", event.Action, "error", err)
	}
	s.opts.Telemetry.Record(ctx, "startpage."+event.Entity+"."+event.Action, map[string]any{
		"ids":   event.IDs,
		"count": len(event.IDs),
	})
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.opts.Repository.Save(ctx, s.cfg); err != nil {
		s.opts.Logger.Error("startpage: persist config failed", "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func serviceIDs(items []Service) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func subcategoryIDs(items []Subcategory) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func categoryIDs(items []Category) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
