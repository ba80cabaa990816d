package startpage

import (
	"bytes"
	"encoding/json"
)

// Opt is an optional patch field. The zero value means "leave unchanged";
// a decoded JSON field, including an explicit null, marks the value as set.
type Opt[T any] struct {
	value T
	set   bool
}

// Some wraps a value as a set field.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the field carries a value.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// Or returns the value when set, otherwise base.
func (o Opt[T]) Or(base T) T {
	if o.set {
		return o.value
	}
	return base
}

// MarshalJSON encodes unset fields as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON marks the field as set. An explicit null resets the value
// to its zero value (used to clear an apiConfig).
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value = zero
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

// ServicePatch lists the service fields an update may replace.
type ServicePatch struct {
	Name        Opt[string]     `json:"name"`
	URL         Opt[string]     `json:"url"`
	Icon        Opt[string]     `json:"icon"`
	Description Opt[string]     `json:"description"`
	Subcategory Opt[string]     `json:"subcategory"`
	Order       Opt[int]        `json:"order"`
	APIConfig   Opt[*APIConfig] `json:"apiConfig"`
}

// Apply merges the patch over base field by field.
func (p ServicePatch) Apply(base Service) Service {
	base.Name = p.Name.Or(base.Name)
	base.URL = p.URL.Or(base.URL)
	base.Icon = p.Icon.Or(base.Icon)
	base.Description = p.Description.Or(base.Description)
	base.Subcategory = p.Subcategory.Or(base.Subcategory)
	base.Order = p.Order.Or(base.Order)
	if api, ok := p.APIConfig.Get(); ok {
		if api == nil {
			base.APIConfig = nil
		} else {
			base.APIConfig = Service{APIConfig: api}.clone().APIConfig
		}
	}
	return base
}

// SubcategoryPatch lists the subcategory fields an update may replace.
type SubcategoryPatch struct {
	Name       Opt[string] `json:"name"`
	Icon       Opt[string] `json:"icon"`
	Color      Opt[string] `json:"color"`
	CategoryID Opt[string] `json:"categoryId"`
	Order      Opt[int]    `json:"order"`
}

// Apply merges the patch over base field by field.
func (p SubcategoryPatch) Apply(base Subcategory) Subcategory {
	base.Name = p.Name.Or(base.Name)
	base.Icon = p.Icon.Or(base.Icon)
	base.Color = p.Color.Or(base.Color)
	base.CategoryID = p.CategoryID.Or(base.CategoryID)
	base.Order = p.Order.Or(base.Order)
	return base
}

// CategoryPatch lists the category fields an update may replace.
type CategoryPatch struct {
	Name  Opt[string] `json:"name"`
	Icon  Opt[string] `json:"icon"`
	Color Opt[string] `json:"color"`
	Order Opt[int]    `json:"order"`
}

// Apply merges the patch over base field by field.
func (p CategoryPatch) Apply(base Category) Category {
	base.Name = p.Name.Or(base.Name)
	base.Icon = p.Icon.Or(base.Icon)
	base.Color = p.Color.Or(base.Color)
	base.Order = p.Order.Or(base.Order)
	return base
}

// SettingsPatch lists the top-level settings an update may replace.
// Collections are never touched by a settings update.
type SettingsPatch struct {
	SearchEngine    Opt[SearchEngine] `json:"searchEngine"`
	CustomSearchURL Opt[string]       `json:"customSearchUrl"`
	ShowWeather     Opt[bool]         `json:"showWeather"`
	WeatherLocation Opt[string]       `json:"weatherLocation"`
	Theme           Opt[Theme]        `json:"theme"`
}

// Apply merges the patch over base.
func (p SettingsPatch) Apply(base DashboardConfig) DashboardConfig {
	base.SearchEngine = p.SearchEngine.Or(base.SearchEngine)
	base.CustomSearchURL = p.CustomSearchURL.Or(base.CustomSearchURL)
	base.ShowWeather = p.ShowWeather.Or(base.ShowWeather)
	base.WeatherLocation = p.WeatherLocation.Or(base.WeatherLocation)
	base.Theme = p.Theme.Or(base.Theme)
	return base
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return !p.SearchEngine.set && !p.CustomSearchURL.set && !p.ShowWeather.set &&
		!p.WeatherLocation.set && !p.Theme.set
}
