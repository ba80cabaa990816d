package startpage

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Cascade lists every entity removed by a delete, including descendants.
// It can be computed without mutating the config to preview a delete.
type Cascade struct {
	Categories    []string `json:"categories,omitempty"`
	Subcategories []string `json:"subcategories,omitempty"`
	Services      []string `json:"services,omitempty"`
}

// Empty reports whether nothing would be removed.
func (c Cascade) Empty() bool {
	return len(c.Categories) == 0 && len(c.Subcategories) == 0 && len(c.Services) == 0
}

// Count returns the number of entities removed.
func (c Cascade) Count() int {
	return len(c.Categories) + len(c.Subcategories) + len(c.Services)
}

// IDs flattens the cascade into one id list, parents first.
func (c Cascade) IDs() []string {
	out := make([]string, 0, c.Count())
	out = append(out, c.Categories...)
	out = append(out, c.Subcategories...)
	return append(out, c.Services...)
}

// CascadeService returns the removal set for a single service.
func CascadeService(cfg DashboardConfig, id string) Cascade {
	if !lo.ContainsBy(cfg.Services, func(s Service) bool { return s.ID == id }) {
		return Cascade{}
	}
	return Cascade{Services: []string{id}}
}

// CascadeSubcategory returns the subcategory and every service referencing it.
// Dangling services pointing at a missing subcategory are swept as well.
func CascadeSubcategory(cfg DashboardConfig, id string) Cascade {
	var out Cascade
	if lo.ContainsBy(cfg.Subcategories, func(s Subcategory) bool { return s.ID == id }) {
		out.Subcategories = []string{id}
	}
	out.Services = servicesIn(cfg, map[string]struct{}{id: {}})
	return out
}

// CascadeCategory returns the category, its subcategories and their services.
func CascadeCategory(cfg DashboardConfig, id string) Cascade {
	var out Cascade
	if lo.ContainsBy(cfg.Categories, func(c Category) bool { return c.ID == id }) {
		out.Categories = []string{id}
	}
	subs := lo.FilterMap(cfg.Subcategories, func(s Subcategory, _ int) (string, bool) {
		return s.ID, s.CategoryID == id
	})
	out.Subcategories = subs
	out.Services = servicesIn(cfg, lo.SliceToMap(subs, func(id string) (string, struct{}) {
		return id, struct{}{}
	}))
	return out
}

func servicesIn(cfg DashboardConfig, subcategories map[string]struct{}) []string {
	return lo.FilterMap(cfg.Services, func(s Service, _ int) (string, bool) {
		_, ok := subcategories[s.Subcategory]
		return s.ID, ok
	})
}

// Without returns a copy of cfg with every entity in c removed.
func (c Cascade) Without(cfg DashboardConfig) DashboardConfig {
	cats := lo.Keyify(c.Categories)
	subs := lo.Keyify(c.Subcategories)
	svcs := lo.Keyify(c.Services)
	out := cfg.Clone()
	out.Categories = lo.Reject(out.Categories, func(x Category, _ int) bool { return has(cats, x.ID) })
	out.Subcategories = lo.Reject(out.Subcategories, func(x Subcategory, _ int) bool { return has(subs, x.ID) })
	out.Services = lo.Reject(out.Services, func(x Service, _ int) bool { return has(svcs, x.ID) })
	return out
}

func has(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}

// ErrDanglingReference is wrapped by CheckIntegrity failures.
var ErrDanglingReference = errors.New("startpage: dangling reference")

// CheckIntegrity verifies that every subcategory points at an existing category
// and every service at an existing subcategory.
func CheckIntegrity(cfg DashboardConfig) error {
	cats := lo.Keyify(lo.Map(cfg.Categories, func(c Category, _ int) string { return c.ID }))
	subs := lo.Keyify(lo.Map(cfg.Subcategories, func(s Subcategory, _ int) string { return s.ID }))
	var errs []error
	for _, sub := range cfg.Subcategories {
		if !has(cats, sub.CategoryID) {
			errs = append(errs, fmt.Errorf("%w: subcategory %q references category %q", ErrDanglingReference, sub.ID, sub.CategoryID))
		}
	}
	for _, svc := range cfg.Services {
		if !has(subs, svc.Subcategory) {
			errs = append(errs, fmt.Errorf("%w: service %q references subcategory %q", ErrDanglingReference, svc.ID, svc.Subcategory))
		}
	}
	return errors.Join(errs...)
}
