package gorouter

import (
	"testing"

	"github.com/goliatone/go-startpage/components/startpage"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestRegisterRequiresController(t *testing.T) {
	cfg := Config[struct{}]{Controller: startpage.NewController(startpage.ControllerOptions{})}
	if err := Register(cfg); err == nil {
		t.Fatalf("expected error when router missing")
	}
}

func TestDefaultRouteConfigFillsEmptyPaths(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{Services: "/tiles"})
	if routes.Services != "/tiles" {
		t.Fatalf("expected custom services path to survive, got %q", routes.Services)
	}
	cases := []struct{ got, want string }{
		{routes.Config, "/config"},
		{routes.Layout, "/layout"},
		{routes.Settings, "/settings"},
		{routes.Reset, "/reset"},
		{routes.Search, "/search"},
		{routes.WebSearch, "/search/web"},
		{routes.Weather, "/weather"},
		{routes.Subcategories, "/subcategories"},
		{routes.Categories, "/categories"},
		{routes.Sandbox, "/sandbox"},
		{routes.WebSocket, "/ws"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected default %q, got %q", tc.want, tc.got)
		}
	}
}
