package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-startpage/components/startpage"
)

func TestHTTPClientCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/current" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("location"); got != "New York" {
			t.Fatalf("expected location query, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		_ = json.NewEncoder(w).Encode(currentResponse{
			TemperatureC: 21.6,
			Condition:    "Light Drizzle",
			Humidity:     55.2,
			WindKPH:      12.5,
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL + "/", APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	data, err := client.Current(context.Background(), "New York")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	want := startpage.WeatherData{
		Temperature: 22,
		Condition:   startpage.ConditionRainy,
		Location:    "New York",
		Humidity:    55,
		Wind:        13,
		Icon:        startpage.ConditionRainy,
	}
	if data != want {
		t.Fatalf("unexpected data: %#v", data)
	}
}

func TestHTTPClientRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Current(context.Background(), ""); err == nil {
		t.Fatalf("expected remote error")
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected error without base url")
	}
}

func TestNormalizeCondition(t *testing.T) {
	cases := map[string]string{
		"Clear":         startpage.ConditionSunny,
		"Partly cloudy": startpage.ConditionCloudy,
		"Thunderstorm":  startpage.ConditionRainy,
		"Heavy snow":    startpage.ConditionSnowy,
		"":              startpage.ConditionSunny,
	}
	for raw, want := range cases {
		if got := normalizeCondition(raw); got != want {
			t.Fatalf("normalizeCondition(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestFallbackProviderSwitchesOnError(t *testing.T) {
	primary := NewStaticProvider(nil)
	secondary := NewStaticProvider(map[string]startpage.WeatherData{
		"Taipei": {Temperature: 25, Condition: startpage.ConditionSunny, Location: "Taipei"},
	})
	provider := NewFallbackProvider(primary, secondary, nil)

	data, err := provider.Current(context.Background(), "Taipei")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if data.Temperature != 25 {
		t.Fatalf("expected secondary reading, got %#v", data)
	}

	primary.Set("Taipei", startpage.WeatherData{Temperature: 30, Location: "Taipei"})
	data, err = provider.Current(context.Background(), "Taipei")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if data.Temperature != 30 {
		t.Fatalf("expected primary reading, got %#v", data)
	}

	_, err = NewFallbackProvider(primary, nil, nil).Current(context.Background(), "Oslo")
	if !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("expected ErrUnknownLocation, got %v", err)
	}
}
