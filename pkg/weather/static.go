package weather

import (
	"context"
	"sync"

	"github.com/goliatone/go-startpage/components/startpage"
)

// StaticProvider returns fixed readings, for tests and local demos.
type StaticProvider struct {
	mu   sync.RWMutex
	data map[string]startpage.WeatherData
}

// NewStaticProvider builds a provider from per-location fixtures.
func NewStaticProvider(data map[string]startpage.WeatherData) *StaticProvider {
	copied := make(map[string]startpage.WeatherData, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return &StaticProvider{data: copied}
}

// Current returns the fixture for location, or ErrUnknownLocation.
func (p *StaticProvider) Current(_ context.Context, location string) (startpage.WeatherData, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.data[location]
	if !ok {
		return startpage.WeatherData{}, ErrUnknownLocation
	}
	return data, nil
}

// Set replaces the fixture for location.
func (p *StaticProvider) Set(location string, data startpage.WeatherData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[location] = data
}
