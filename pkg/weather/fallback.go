package weather

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-startpage/components/startpage"
)

// NewFallbackProvider answers from primary and switches to secondary when
// primary fails.
func NewFallbackProvider(primary, secondary startpage.WeatherProvider, logger *slog.Logger) startpage.WeatherProvider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &fallbackProvider{primary: primary, secondary: secondary, logger: logger}
}

type fallbackProvider struct {
	primary   startpage.WeatherProvider
	secondary startpage.WeatherProvider
	logger    *slog.Logger
}

func (p *fallbackProvider) Current(ctx context.Context, location string) (startpage.WeatherData, error) {
	data, err := p.primary.Current(ctx, location)
	if err == nil || p.secondary == nil {
		return data, err
	}
	p.logger.Warn("weather: primary provider failed", "location", location, "error", err)
	return p.secondary.Current(ctx, location)
}
