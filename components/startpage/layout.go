package startpage

import "github.com/samber/lo"

// Layout is the render-ready tree: category tabs, subcategory columns and
// service cards, each level sorted by order.
type Layout struct {
	Tabs     []CategoryTab  `json:"tabs"`
	Settings LayoutSettings `json:"settings"`
	Orphans  []Service      `json:"orphans,omitempty"`
}

// LayoutSettings mirrors the top-level config settings.
type LayoutSettings struct {
	SearchEngine    SearchEngine `json:"searchEngine"`
	CustomSearchURL string       `json:"customSearchUrl,omitempty"`
	ShowWeather     bool         `json:"showWeather"`
	WeatherLocation string       `json:"weatherLocation,omitempty"`
	Theme           Theme        `json:"theme,omitempty"`
}

// CategoryTab groups the columns of one category.
type CategoryTab struct {
	Category Category            `json:"category"`
	Columns  []SubcategoryColumn `json:"columns"`
}

// SubcategoryColumn lists the cards of one subcategory.
type SubcategoryColumn struct {
	Subcategory Subcategory   `json:"subcategory"`
	Cards       []ServiceCard `json:"cards"`
}

// ServiceCard pairs a service with its latest live value.
type ServiceCard struct {
	Service Service    `json:"service"`
	Live    *LiveValue `json:"live,omitempty"`
}

// BuildLayout arranges cfg into tabs. Services whose subcategory does not
// exist are reported as orphans instead of being dropped silently.
func BuildLayout(cfg DashboardConfig, live LiveSource) Layout {
	layout := Layout{
		Tabs: make([]CategoryTab, 0, len(cfg.Categories)),
		Settings: LayoutSettings{
			SearchEngine:    cfg.SearchEngine,
			CustomSearchURL: cfg.CustomSearchURL,
			ShowWeather:     cfg.ShowWeather,
			WeatherLocation: lo.CoalesceOrEmpty(cfg.WeatherLocation, DefaultWeatherLocation),
			Theme:           lo.CoalesceOrEmpty(cfg.Theme, ThemeDefault),
		},
	}
	placed := map[string]struct{}{}
	for _, cat := range SortByOrder(cfg.Categories) {
		tab := CategoryTab{Category: cat}
		for _, sub := range SortByOrder(SubcategoriesInCategory(cfg.Subcategories, cat.ID)) {
			column := SubcategoryColumn{Subcategory: sub}
			for _, svc := range SortByOrder(ServicesInSubcategory(cfg.Services, sub.ID)) {
				placed[svc.ID] = struct{}{}
				column.Cards = append(column.Cards, newCard(svc, live))
			}
			tab.Columns = append(tab.Columns, column)
		}
		layout.Tabs = append(layout.Tabs, tab)
	}
	layout.Orphans = lo.Filter(cfg.Services, func(svc Service, _ int) bool {
		_, ok := placed[svc.ID]
		return !ok
	})
	return layout
}

func newCard(svc Service, live LiveSource) ServiceCard {
	card := ServiceCard{Service: svc}
	if live == nil || svc.APIConfig == nil {
		return card
	}
	if value, ok := live.Live(svc.ID); ok {
		card.Live = &value
	}
	return card
}

// ServicesInSubcategory returns the services referencing subcategoryID in
// collection order.
func ServicesInSubcategory(services []Service, subcategoryID string) []Service {
	return lo.Filter(services, func(svc Service, _ int) bool {
		return svc.Subcategory == subcategoryID
	})
}

// SubcategoriesInCategory returns the subcategories referencing categoryID in
// collection order.
func SubcategoriesInCategory(subcategories []Subcategory, categoryID string) []Subcategory {
	return lo.Filter(subcategories, func(sub Subcategory, _ int) bool {
		return sub.CategoryID == categoryID
	})
}

// OrderByIDs arranges items following ids, appending entries the list does
// not mention in their current sequence, then renumbers the result.
func OrderByIDs[T Orderable[T]](items []T, ids []string) []T {
	if len(ids) == 0 {
		return Renumber(SortByOrder(items))
	}
	index := make(map[string]T, len(items))
	for _, item := range items {
		index[item.key()] = item
	}
	result := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if item, ok := index[id]; ok {
			if _, dup := seen[id]; dup {
				continue
			}
			result = append(result, item)
			seen[id] = struct{}{}
		}
	}
	for _, item := range SortByOrder(items) {
		if _, ok := seen[item.key()]; !ok {
			result = append(result, item)
		}
	}
	return Renumber(result)
}
