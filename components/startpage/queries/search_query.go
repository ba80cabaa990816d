package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/components/startpage"
)

// SearchInput carries a free-text query.
type SearchInput struct {
	Query string `json:"q"`
}

type serviceSearcher interface {
	SearchServices(query string) []startpage.Service
}

// ServiceSearchQuery finds services by name or description.
type ServiceSearchQuery struct {
	service serviceSearcher
}

// NewServiceSearchQuery builds the query.
func NewServiceSearchQuery(service serviceSearcher) *ServiceSearchQuery {
	return &ServiceSearchQuery{service: service}
}

var _ gocommand.Querier[SearchInput, []startpage.Service] = (*ServiceSearchQuery)(nil)

// Query returns up to startpage.MaxServiceMatches services.
func (q *ServiceSearchQuery) Query(_ context.Context, in SearchInput) ([]startpage.Service, error) {
	matches := q.service.SearchServices(in.Query)
	if matches == nil {
		matches = []startpage.Service{}
	}
	return matches, nil
}

type webSearcher interface {
	WebSearchURL(query string) (string, error)
}

// WebSearchQuery builds the configured search engine URL.
type WebSearchQuery struct {
	service webSearcher
}

// NewWebSearchQuery builds the query.
func NewWebSearchQuery(service webSearcher) *WebSearchQuery {
	return &WebSearchQuery{service: service}
}

var _ gocommand.Querier[SearchInput, string] = (*WebSearchQuery)(nil)

// Query returns the search URL.
func (q *WebSearchQuery) Query(_ context.Context, in SearchInput) (string, error) {
	return q.service.WebSearchURL(in.Query)
}
