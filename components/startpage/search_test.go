package startpage

import (
	"fmt"
	"testing"
)

func TestWebSearchURL(t *testing.T) {
	cases := []struct {
		engine SearchEngine
		custom string
		query  string
		want   string
	}{
		{SearchGoogle, "", "go generics", "https://www.google.com/search?q=go%20generics"},
		{SearchBing, "", "a&b", "https://www.bing.com/search?q=a%26b"},
		{SearchDuckDuckGo, "", "x", "https://duckduckgo.com/?q=x"},
		{SearchCustom, "https://search.local/?q=", "hi there", "https://search.local/?q=hi%20there"},
		{SearchCustom, "", "x", "https://www.google.com/search?q=x"},
		{"unknown", "", "x", "https://www.google.com/search?q=x"},
	}
	for _, tc := range cases {
		got, err := WebSearchURL(tc.engine, tc.custom, tc.query)
		if err != nil {
			t.Fatalf("WebSearchURL(%s) returned error: %v", tc.engine, err)
		}
		if got != tc.want {
			t.Fatalf("WebSearchURL(%s, %q) = %s, want %s", tc.engine, tc.query, got, tc.want)
		}
	}
	if _, err := WebSearchURL(SearchGoogle, "", "   "); err == nil {
		t.Fatalf("expected empty query to fail")
	}
}

func TestSearchServicesMatchesNameAndDescription(t *testing.T) {
	got := SearchServices(DefaultConfig().Services, "MEDIA")
	if len(got) != 2 || got[0].ID != "plex" || got[1].ID != "jellyfin" {
		t.Fatalf("expected plex and jellyfin, got %#v", got)
	}
	if SearchServices(DefaultConfig().Services, " ") != nil {
		t.Fatalf("expected blank query to return nothing")
	}
}

func TestSearchServicesCapsResults(t *testing.T) {
	services := make([]Service, 12)
	for i := range services {
		services[i] = Service{ID: fmt.Sprint(i), Name: "node"}
	}
	got := SearchServices(services, "node")
	if len(got) != MaxServiceMatches {
		t.Fatalf("expected %d matches, got %d", MaxServiceMatches, len(got))
	}
	if got[0].ID != "0" {
		t.Fatalf("expected collection order")
	}
}
