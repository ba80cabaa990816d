package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/components/startpage"
)

type configSource interface {
	Config() startpage.DashboardConfig
}

// ConfigInput is the empty request for ConfigQuery.
type ConfigInput struct{}

// ConfigQuery returns the current config snapshot.
type ConfigQuery struct {
	source configSource
}

// NewConfigQuery builds the query.
func NewConfigQuery(source configSource) *ConfigQuery {
	return &ConfigQuery{source: source}
}

var _ gocommand.Querier[ConfigInput, startpage.DashboardConfig] = (*ConfigQuery)(nil)

// Query returns a deep copy of the config.
func (q *ConfigQuery) Query(context.Context, ConfigInput) (startpage.DashboardConfig, error) {
	return q.source.Config(), nil
}

type layoutService interface {
	Layout(ctx context.Context) startpage.Layout
}

// LayoutInput is the empty request for LayoutQuery.
type LayoutInput struct{}

// LayoutQuery resolves the tabbed layout with live values.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[LayoutInput, startpage.Layout] = (*LayoutQuery)(nil)

// Query builds the layout.
func (q *LayoutQuery) Query(ctx context.Context, _ LayoutInput) (startpage.Layout, error) {
	return q.service.Layout(ctx), nil
}
