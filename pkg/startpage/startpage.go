package startpage

import (
	core "github.com/goliatone/go-startpage/components/startpage"
)

// Store exposes the underlying components/startpage.Store type.
type Store = core.Store

// Options re-export for convenience.
type Options = core.Options

// DashboardConfig re-export for convenience.
type DashboardConfig = core.DashboardConfig

// EventHook re-export for convenience.
type EventHook = core.EventHook

// NewStore proxies to the internal constructor.
func NewStore(opts Options) *Store {
	return core.NewStore(opts)
}
