package startpage

import (
	"context"
	"errors"
)

// ConfigSource exposes a snapshot of the current config.
type ConfigSource interface {
	Config() DashboardConfig
}

// ControllerOptions wires the read side used by transports.
type ControllerOptions struct {
	Source  ConfigSource
	Live    LiveSource
	Weather WeatherProvider
	History *HistoryChart
}

// Controller serves read models (layout, search, weather, charts) to routes.
type Controller struct {
	opts ControllerOptions
}

// NewController builds a controller. Weather falls back to the simulated provider.
func NewController(opts ControllerOptions) *Controller {
	if opts.Weather == nil {
		opts.Weather = NewSimulatedWeather(nil)
	}
	return &Controller{opts: opts}
}

// Config returns the current config.
func (c *Controller) Config() DashboardConfig {
	if c.opts.Source == nil {
		return DefaultConfig()
	}
	return c.opts.Source.Config()
}

// Layout builds the tabbed layout with live values attached.
func (c *Controller) Layout(ctx context.Context) Layout {
	return BuildLayout(c.Config(), c.opts.Live)
}

// SearchServices finds services matching query.
func (c *Controller) SearchServices(query string) []Service {
	return SearchServices(c.Config().Services, query)
}

// WebSearchURL builds the configured engine's URL for query.
func (c *Controller) WebSearchURL(query string) (string, error) {
	cfg := c.Config()
	return WebSearchURL(cfg.SearchEngine, cfg.CustomSearchURL, query)
}

// Weather returns the current reading for the configured location. It
// reports false when the widget is disabled.
func (c *Controller) Weather(ctx context.Context) (WeatherData, bool, error) {
	cfg := c.Config()
	if !cfg.ShowWeather {
		return WeatherData{}, false, nil
	}
	data, err := c.opts.Weather.Current(ctx, cfg.WeatherLocation)
	return data, err == nil, err
}

// Live returns the latest poll state for a service.
func (c *Controller) Live(serviceID string) (LiveValue, bool) {
	if c.opts.Live == nil {
		return LiveValue{}, false
	}
	return c.opts.Live.Live(serviceID)
}

// RenderHistory renders the poll history chart for a service.
func (c *Controller) RenderHistory(ctx context.Context, serviceID string) (string, error) {
	if c.opts.History == nil {
		return "", errors.New("startpage: history chart not configured")
	}
	return c.opts.History.Render(ctx, serviceID)
}
