package startpage

import (
	"errors"
	"testing"
)

func cascadeFixture() DashboardConfig {
	return DashboardConfig{
		Categories: []Category{{ID: "c1"}, {ID: "c2"}},
		Subcategories: []Subcategory{
			{ID: "s1", CategoryID: "c1"},
			{ID: "s2", CategoryID: "c1"},
			{ID: "s3", CategoryID: "c2"},
		},
		Services: []Service{
			{ID: "v1", Subcategory: "s1"},
			{ID: "v2", Subcategory: "s2"},
			{ID: "v3", Subcategory: "s3"},
		},
	}
}

func TestCascadeCategoryRemovesDescendants(t *testing.T) {
	cfg := cascadeFixture()
	c := CascadeCategory(cfg, "c1")
	if len(c.Categories) != 1 || len(c.Subcategories) != 2 || len(c.Services) != 2 {
		t.Fatalf("unexpected cascade %#v", c)
	}
	if c.Count() != 5 {
		t.Fatalf("expected 5 removals, got %d", c.Count())
	}
	out := c.Without(cfg)
	if len(out.Categories) != 1 || len(out.Subcategories) != 1 || len(out.Services) != 1 {
		t.Fatalf("unexpected remaining config %#v", out)
	}
	if len(cfg.Services) != 3 {
		t.Fatalf("expected Without to leave its input untouched")
	}
}

func TestCascadeSubcategorySweepsDanglingServices(t *testing.T) {
	cfg := cascadeFixture()
	cfg.Services = append(cfg.Services, Service{ID: "ghost", Subcategory: "gone"})
	c := CascadeSubcategory(cfg, "gone")
	if len(c.Subcategories) != 0 || len(c.Services) != 1 || c.Services[0] != "ghost" {
		t.Fatalf("expected dangling service sweep, got %#v", c)
	}
}

func TestCascadeUnknownIsEmpty(t *testing.T) {
	if !CascadeService(cascadeFixture(), "nope").Empty() {
		t.Fatalf("expected empty cascade")
	}
	if !CascadeCategory(cascadeFixture(), "nope").Empty() {
		t.Fatalf("expected empty cascade")
	}
}

func TestCheckIntegrityReportsDanglingReferences(t *testing.T) {
	cfg := cascadeFixture()
	if err := CheckIntegrity(cfg); err != nil {
		t.Fatalf("expected fixture to be consistent: %v", err)
	}
	cfg.Subcategories = append(cfg.Subcategories, Subcategory{ID: "s4", CategoryID: "missing"})
	cfg.Services = append(cfg.Services, Service{ID: "v4", Subcategory: "missing"})
	err := CheckIntegrity(cfg)
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}
