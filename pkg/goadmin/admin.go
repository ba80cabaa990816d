package goadmin

import (
	"context"
	"errors"

	core "github.com/goliatone/go-startpage/components/startpage"
	activitypkg "github.com/goliatone/go-startpage/pkg/activity"
	startpagepkg "github.com/goliatone/go-startpage/pkg/startpage"
)

// MenuBuilder ensures start page entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures start page link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the start page store + feature flags into an admin shell.
type Config struct {
	EnableStartpage bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	StoreOptions    startpagepkg.Options
	DefaultMenuItem MenuItem
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg   Config
	store *startpagepkg.Store
}

// New creates an Admin helper. When enabled it builds the store with
// activity emission chained after any configured hook.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableStartpage && cfg.ActivityConfig.Enabled && len(cfg.ActivityHooks) == 0 {
		return nil, errors.New("goadmin: activity hooks are required when activity is enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Start Page"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.startpage"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "home"
	}
	admin := &Admin{cfg: cfg}
	if cfg.EnableStartpage {
		opts := cfg.StoreOptions
		hooks := core.EventHooks{}
		if opts.Hook != nil {
			hooks = append(hooks, opts.Hook)
		}
		emitter := activitypkg.NewEmitter(cfg.ActivityHooks, cfg.ActivityConfig)
		hooks = append(hooks, core.ActivityHook{Emitter: emitter})
		opts.Hook = hooks
		admin.store = startpagepkg.NewStore(opts)
	}
	return admin, nil
}

// Startpage exposes the configured store when enabled.
func (a *Admin) Startpage() *startpagepkg.Store {
	if !a.cfg.EnableStartpage {
		return nil
	}
	return a.store
}

// Bootstrap loads the persisted config and seeds menu entries when the
// start page is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableStartpage {
		return nil
	}
	if err := a.store.Load(ctx); err != nil {
		return err
	}
	if a.cfg.MenuBuilder == nil {
		return nil
	}
	return a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem)
}
