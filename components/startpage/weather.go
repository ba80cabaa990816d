package startpage

import (
	"context"
	"math/rand/v2"
	"sync"
)

// WeatherData is the payload rendered by the weather widget.
type WeatherData struct {
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
	Location    string `json:"location"`
	Humidity    int    `json:"humidity"`
	Wind        int    `json:"wind"`
	Icon        string `json:"icon"`
}

// WeatherProvider resolves current conditions for a location.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (WeatherData, error)
}

// Weather conditions.
const (
	ConditionSunny  = "sunny"
	ConditionCloudy = "cloudy"
	ConditionRainy  = "rainy"
	ConditionSnowy  = "snowy"
)

// SimulatedWeather produces plausible random readings. Only sunny and cloudy
// are ever drawn.
type SimulatedWeather struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedWeather uses rnd when provided, otherwise a time-seeded source.
func NewSimulatedWeather(rnd *rand.Rand) *SimulatedWeather {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SimulatedWeather{rnd: rnd}
}

// Current returns a simulated reading for location.
func (w *SimulatedWeather) Current(_ context.Context, location string) (WeatherData, error) {
	if location == "" {
		location = DefaultWeatherLocation
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	conditions := []string{ConditionSunny, ConditionCloudy, ConditionRainy, ConditionSnowy}
	condition := conditions[w.rnd.IntN(2)]
	return WeatherData{
		Temperature: w.rnd.IntN(15) + 15,
		Condition:   condition,
		Location:    location,
		Humidity:    w.rnd.IntN(40) + 40,
		Wind:        w.rnd.IntN(20) + 5,
		Icon:        condition,
	}, nil
}
