package startpage

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWeather struct{}

func (failingWeather) Current(context.Context, string) (WeatherData, error) {
	return WeatherData{}, errors.New("offline")
}

func TestControllerReadsFromSource(t *testing.T) {
	store := NewStore(Options{})
	require.NoError(t, store.UpdateSettings(context.Background(), SettingsPatch{
		SearchEngine:    Some(SearchCustom),
		CustomSearchURL: Some("https://s.local/?q="),
		WeatherLocation: Some("Lisbon"),
	}))
	c := NewController(ControllerOptions{
		Source:  store,
		Live:    staticLive{"grafana": {Data: "up"}},
		Weather: NewSimulatedWeather(rand.New(rand.NewPCG(3, 4))),
	})

	url, err := c.WebSearchURL("a b")
	require.NoError(t, err)
	assert.Equal(t, "https://s.local/?q=a%20b", url)

	assert.Len(t, c.SearchServices("graf"), 1)
	assert.Len(t, c.Layout(context.Background()).Tabs, 4)

	weather, enabled, err := c.Weather(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, "Lisbon", weather.Location)

	live, ok := c.Live("grafana")
	require.True(t, ok)
	assert.Equal(t, "up", live.Data)

	_, err = c.RenderHistory(context.Background(), "grafana")
	require.Error(t, err)
}

func TestControllerWeatherDisabledAndFailing(t *testing.T) {
	store := NewStore(Options{})
	c := NewController(ControllerOptions{Source: store, Weather: failingWeather{}})
	_, enabled, err := c.Weather(context.Background())
	require.Error(t, err)
	assert.False(t, enabled)

	require.NoError(t, store.UpdateSettings(context.Background(), SettingsPatch{ShowWeather: Some(false)}))
	_, enabled, err = c.Weather(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestControllerWithoutSourceUsesDefaults(t *testing.T) {
	c := NewController(ControllerOptions{})
	assert.Equal(t, DefaultConfig(), c.Config())
	_, ok := c.Live("x")
	assert.False(t, ok)
}

type countingReloader struct {
	calls atomic.Int64
}

func (r *countingReloader) Reload(context.Context) (bool, error) {
	r.calls.Add(1)
	return true, nil
}

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	reloader := &countingReloader{}
	watcher := NewConfigWatcher(kv.Path(StorageKey), reloader, nil)
	watcher.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	require.Eventually(t, func() bool {
		_ = kv.Set(context.Background(), StorageKey, "{}")
		return reloader.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	_ = kv.Set(context.Background(), "unrelated", "{}")
	cancel()
	require.NoError(t, <-done)
}
