package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-startpage/components/startpage"
)

const defaultFetchTimeout = 10 * time.Second

// Response is a decoded endpoint reply.
type Response struct {
	StatusCode int
	Document   any
}

// Fetcher performs one request for an APIConfig.
type Fetcher interface {
	Fetch(ctx context.Context, cfg startpage.APIConfig) (Response, error)
}

// StatusError reports a non-2xx reply.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// HTTPFetcher calls endpoints with a shared http.Client.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher wraps client, defaulting to a client with a 10s timeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTTPFetcher{client: client}
}

// Fetch issues the request described by cfg and decodes the JSON body.
// The body is only sent for POST requests.
func (f *HTTPFetcher) Fetch(ctx context.Context, cfg startpage.APIConfig) (Response, error) {
	if cfg.Endpoint == "" {
		return Response{}, errors.New("poller: endpoint is required")
	}
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if method == http.MethodPost && cfg.Body != "" {
		body = strings.NewReader(cfg.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, cfg.Endpoint, body)
	if err != nil {
		return Response{}, fmt.Errorf("poller: build request: %w", err)
	}
	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Response{StatusCode: resp.StatusCode}, &StatusError{StatusCode: resp.StatusCode}
	}
	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("poller: decode response: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Document: doc}, nil
}
