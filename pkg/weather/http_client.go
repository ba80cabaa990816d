package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-startpage/components/startpage"
)

// HTTPConfig configures the HTTP weather client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient reads current conditions from a REST weather service.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ startpage.WeatherProvider = (*HTTPClient)(nil)

// NewHTTPClient builds a client for a live weather API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("weather: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Current implements startpage.WeatherProvider via the current conditions endpoint.
func (c *HTTPClient) Current(ctx context.Context, location string) (startpage.WeatherData, error) {
	if location == "" {
		location = startpage.DefaultWeatherLocation
	}
	var resp currentResponse
	if err := c.do(ctx, "/current?location="+url.QueryEscape(location), &resp); err != nil {
		return startpage.WeatherData{}, err
	}
	return resp.toData(location), nil
}

func (c *HTTPClient) do(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("weather: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("weather: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("weather: decode response: %w", err)
	}
	return nil
}

type currentResponse struct {
	Location     string  `json:"location"`
	TemperatureC float64 `json:"temperature_c"`
	Condition    string  `json:"condition"`
	Humidity     float64 `json:"humidity"`
	WindKPH      float64 `json:"wind_kph"`
}

func (r currentResponse) toData(requested string) startpage.WeatherData {
	location := r.Location
	if location == "" {
		location = requested
	}
	condition := normalizeCondition(r.Condition)
	return startpage.WeatherData{
		Temperature: int(math.Round(r.TemperatureC)),
		Condition:   condition,
		Location:    location,
		Humidity:    int(math.Round(r.Humidity)),
		Wind:        int(math.Round(r.WindKPH)),
		Icon:        condition,
	}
}

// normalizeCondition folds provider wording into the four known conditions.
func normalizeCondition(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(c, "snow"), strings.Contains(c, "sleet"):
		return startpage.ConditionSnowy
	case strings.Contains(c, "rain"), strings.Contains(c, "drizzle"), strings.Contains(c, "storm"):
		return startpage.ConditionRainy
	case strings.Contains(c, "cloud"), strings.Contains(c, "overcast"), strings.Contains(c, "fog"):
		return startpage.ConditionCloudy
	default:
		return startpage.ConditionSunny
	}
}
