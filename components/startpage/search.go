package startpage

import (
	"errors"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// MaxServiceMatches caps the number of services returned by SearchServices.
const MaxServiceMatches = 8

var errEmptyQuery = errors.New("startpage: search query is required")

var searchEngineURLs = map[SearchEngine]string{
	SearchGoogle:     "https://www.google.com/search?q=",
	SearchBing:       "https://www.bing.com/search?q=",
	SearchDuckDuckGo: "https://duckduckgo.com/?q=",
}

// WebSearchURL builds the search URL for query. Custom engines use
// customURL as the prefix; an empty custom URL or unknown engine falls back
// to Google.
func WebSearchURL(engine SearchEngine, customURL, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errEmptyQuery
	}
	base := searchEngineURLs[SearchGoogle]
	if engine == SearchCustom && customURL != "" {
		base = customURL
	} else if known, ok := searchEngineURLs[engine]; ok {
		base = known
	}
	return base + escapeComponent(query), nil
}

// escapeComponent percent-encodes like a URI component (spaces become %20).
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SearchServices returns services whose name or description contains query,
// case-insensitively, up to MaxServiceMatches in collection order.
func SearchServices(services []Service, query string) []Service {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil
	}
	matches := lo.Filter(services, func(svc Service, _ int) bool {
		return strings.Contains(strings.ToLower(svc.Name), term) ||
			strings.Contains(strings.ToLower(svc.Description), term)
	})
	if len(matches) > MaxServiceMatches {
		matches = matches[:MaxServiceMatches]
	}
	return matches
}
