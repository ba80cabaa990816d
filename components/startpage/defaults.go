package startpage

// SchemaVersion is bumped whenever the persisted shape changes incompatibly.
// A stored document carrying a different version is discarded in favor of
// the defaults.
const SchemaVersion = 3

// DefaultWeatherLocation is used when the config does not name one.
const DefaultWeatherLocation = "Taipei"

var defaultCategories = []Category{
	{ID: "media", Name: "Media", Icon: "play", Color: "#f97316", Order: 0},
	{ID: "dev", Name: "Development", Icon: "code", Color: "#3b82f6", Order: 1},
	{ID: "monitoring", Name: "Monitoring", Icon: "activity", Color: "#22c55e", Order: 2},
	{ID: "network", Name: "Network", Icon: "globe", Color: "#a855f7", Order: 3},
}

var defaultSubcategories = []Subcategory{
	{ID: "media-servers", Name: "Media Servers", Icon: "tv", Color: "#fb923c", CategoryID: "media", Order: 0},
	{ID: "dev-code", Name: "Code Hosting", Icon: "github", Color: "#60a5fa", CategoryID: "dev", Order: 0},
	{ID: "dev-containers", Name: "Containers", Icon: "container", Color: "#38bdf8", CategoryID: "dev", Order: 1},
	{ID: "monitoring-metrics", Name: "Metrics", Icon: "bar-chart-2", Color: "#4ade80", CategoryID: "monitoring", Order: 0},
	{ID: "network-edge", Name: "Edge", Icon: "shield", Color: "#c084fc", CategoryID: "network", Order: 0},
}

var defaultServices = []Service{
	{ID: "plex", Name: "Plex", URL: "https://plex.tv", Icon: "tv", Description: "Media server", Subcategory: "media-servers", Order: 0},
	{ID: "jellyfin", Name: "Jellyfin", URL: "https://jellyfin.org", Icon: "film", Description: "Open source media system", Subcategory: "media-servers", Order: 1},
	{ID: "github", Name: "GitHub", URL: "https://github.com", Icon: "github", Description: "Code hosting", Subcategory: "dev-code", Order: 0},
	{ID: "portainer", Name: "Portainer", URL: "https://portainer.io", Icon: "container", Description: "Docker management", Subcategory: "dev-containers", Order: 0},
	{ID: "grafana", Name: "Grafana", URL: "https://grafana.com", Icon: "bar-chart-2", Description: "Data visualization", Subcategory: "monitoring-metrics", Order: 0},
	{ID: "prometheus", Name: "Prometheus", URL: "https://prometheus.io", Icon: "database", Description: "Monitoring system", Subcategory: "monitoring-metrics", Order: 1},
	{ID: "pihole", Name: "Pi-hole", URL: "https://pi-hole.net", Icon: "shield", Description: "DNS ad blocking", Subcategory: "network-edge", Order: 0},
	{ID: "nginx", Name: "Nginx", URL: "https://nginx.org", Icon: "server", Description: "Reverse proxy", Subcategory: "network-edge", Order: 1},
}

// DefaultConfig returns a fresh copy of the built-in snapshot.
func DefaultConfig() DashboardConfig {
	cfg := DashboardConfig{
		Services:        defaultServices,
		Subcategories:   defaultSubcategories,
		Categories:      defaultCategories,
		SearchEngine:    SearchGoogle,
		ShowWeather:     true,
		WeatherLocation: DefaultWeatherLocation,
		Theme:           ThemeDefault,
	}
	return cfg.Clone()
}
