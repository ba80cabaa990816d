package startpage

import (
	"context"
	"time"
)

// SearchEngine names the provider used by the web search box.
type SearchEngine string

const (
	SearchGoogle     SearchEngine = "google"
	SearchBing       SearchEngine = "bing"
	SearchDuckDuckGo SearchEngine = "duckduckgo"
	SearchCustom     SearchEngine = "custom"
)

// Theme is the visual theme identifier persisted with the config.
type Theme string

const (
	ThemeDefault  Theme = "default"
	ThemeCartoon  Theme = "cartoon"
	ThemeWarm     Theme = "warm"
	ThemeAquaGold Theme = "aqua-gold"
)

// Category is a top-level grouping rendered as a tab.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Icon  string `json:"icon" yaml:"icon"`
	Color string `json:"color" yaml:"color"`
	Order int    `json:"order" yaml:"order"`
}

// Subcategory belongs to exactly one Category through CategoryID.
type Subcategory struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Icon       string `json:"icon" yaml:"icon"`
	Color      string `json:"color" yaml:"color"`
	CategoryID string `json:"categoryId" yaml:"categoryId"`
	Order      int    `json:"order" yaml:"order"`
}

// APIConfig describes the remote JSON endpoint polled for a service.
// RefreshInterval is expressed in seconds; zero disables automatic refresh.
type APIConfig struct {
	Endpoint        string            `json:"endpoint" yaml:"endpoint"`
	Method          string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body            string            `json:"body,omitempty" yaml:"body,omitempty"`
	DisplayField    string            `json:"displayField,omitempty" yaml:"displayField,omitempty"`
	RefreshInterval int               `json:"refreshInterval,omitempty" yaml:"refreshInterval,omitempty"`
}

// Service is a single bookmark tile. Subcategory holds the owning
// Subcategory id.
type Service struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	URL         string     `json:"url" yaml:"url"`
	Icon        string     `json:"icon" yaml:"icon"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Subcategory string     `json:"subcategory" yaml:"subcategory"`
	Order       int        `json:"order,omitempty" yaml:"order,omitempty"`
	APIConfig   *APIConfig `json:"apiConfig,omitempty" yaml:"apiConfig,omitempty"`
}

// DashboardConfig is the aggregate persisted as a single document.
type DashboardConfig struct {
	Services        []Service     `json:"services" yaml:"services"`
	Subcategories   []Subcategory `json:"subcategories" yaml:"subcategories"`
	Categories      []Category    `json:"categories" yaml:"categories"`
	SearchEngine    SearchEngine  `json:"searchEngine" yaml:"searchEngine"`
	CustomSearchURL string        `json:"customSearchUrl,omitempty" yaml:"customSearchUrl,omitempty"`
	ShowWeather     bool          `json:"showWeather" yaml:"showWeather"`
	WeatherLocation string        `json:"weatherLocation,omitempty" yaml:"weatherLocation,omitempty"`
	Theme           Theme         `json:"theme,omitempty" yaml:"theme,omitempty"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (c DashboardConfig) Clone() DashboardConfig {
	out := c
	out.Services = make([]Service, len(c.Services))
	for i, svc := range c.Services {
		out.Services[i] = svc.clone()
	}
	out.Subcategories = append([]Subcategory(nil), c.Subcategories...)
	out.Categories = append([]Category(nil), c.Categories...)
	if out.Subcategories == nil {
		out.Subcategories = []Subcategory{}
	}
	if out.Categories == nil {
		out.Categories = []Category{}
	}
	return out
}

func (s Service) clone() Service {
	if s.APIConfig == nil {
		return s
	}
	api := *s.APIConfig
	api.Headers = nil
	if len(s.APIConfig.Headers) > 0 {
		api.Headers = make(map[string]string, len(s.APIConfig.Headers))
		for k, v := range s.APIConfig.Headers {
			api.Headers[k] = v
		}
	}
	s.APIConfig = &api
	return s
}

// ServiceInput carries the fields of a service before an id is assigned.
type ServiceInput struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Icon        string     `json:"icon"`
	Description string     `json:"description,omitempty"`
	Subcategory string     `json:"subcategory"`
	Order       int        `json:"order,omitempty"`
	APIConfig   *APIConfig `json:"apiConfig,omitempty"`
}

// SubcategoryInput carries the fields of a subcategory before an id is assigned.
type SubcategoryInput struct {
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	CategoryID string `json:"categoryId"`
	Order      int    `json:"order"`
}

// CategoryInput carries the fields of a category before an id is assigned.
type CategoryInput struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// KeyValueStore is the durable string store backing the config document.
// Get reports false when the key has never been written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// EventHook notifies transports (WebSocket/SSE, activity, pollers) about changes.
type EventHook interface {
	Notify(ctx context.Context, event Event) error
}

// LiveSource exposes the latest polled value for a service.
type LiveSource interface {
	Live(serviceID string) (LiveValue, bool)
}

// LiveValue is the transport-facing view of a service's poll state.
type LiveValue struct {
	Data        any       `json:"data,omitempty"`
	Loading     bool      `json:"loading"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
}
