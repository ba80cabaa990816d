package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/components/startpage/commands"
	"github.com/goliatone/go-startpage/components/startpage/queries"
)

func newTestServer(t *testing.T) (*httptest.Server, *startpage.Store) {
	t.Helper()
	store := startpage.NewStore(startpage.Options{
		Repository: startpage.NewConfigRepository(startpage.NewMemoryKV(), startpage.SchemaVersion),
		IDs:        &startpage.SequenceGenerator{Prefix: "id-"},
	})
	require.NoError(t, store.Load(context.Background()))
	handlers := &Handlers{
		API:        NewCommandExecutor(store, nil, nil),
		Controller: startpage.NewController(startpage.ControllerOptions{Source: store}),
	}
	srv := httptest.NewServer(handlers.Mux("/api"))
	t.Cleanup(srv.Close)
	return srv, store
}

func send(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(ActorHeader, "user-1")
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestHandleAddService(t *testing.T) {
	srv, store := newTestServer(t)

	res := send(t, srv, http.MethodPost, "/api/services",
		`{"name":"Gitea","url":"https://gitea.io","icon":"git","subcategory":"dev-code"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var created startpage.Service
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, "dev-code", created.Subcategory)

	_, ok := store.FindService("id-1")
	assert.True(t, ok)

	res = send(t, srv, http.MethodPost, "/api/services", `{"url":"https://x.test","subcategory":"dev-code"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = send(t, srv, http.MethodPost, "/api/services", `{not json`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHandleUpdateService(t *testing.T) {
	srv, store := newTestServer(t)

	res := send(t, srv, http.MethodPatch, "/api/services/plex", `{"name":"Plex Server"}`)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	svc, ok := store.FindService("plex")
	require.True(t, ok)
	assert.Equal(t, "Plex Server", svc.Name)
	assert.Equal(t, "https://plex.tv", svc.URL)

	res = send(t, srv, http.MethodPatch, "/api/services/missing", `{"name":"Ghost"}`)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestHandleDeleteCategoryReturnsCascade(t *testing.T) {
	srv, store := newTestServer(t)

	res := send(t, srv, http.MethodDelete, "/api/categories/dev", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var removed startpage.Cascade
	require.NoError(t, json.NewDecoder(res.Body).Decode(&removed))
	assert.Equal(t, []string{"dev"}, removed.Categories)
	assert.ElementsMatch(t, []string{"dev-code", "dev-containers"}, removed.Subcategories)
	assert.ElementsMatch(t, []string{"github", "portainer"}, removed.Services)
	assert.NoError(t, startpage.CheckIntegrity(store.Config()))

	res = send(t, srv, http.MethodDelete, "/api/categories/dev", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	removed = startpage.Cascade{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&removed))
	assert.True(t, removed.Empty())
}

func TestHandleMoveCategory(t *testing.T) {
	srv, store := newTestServer(t)

	res := send(t, srv, http.MethodPost, "/api/categories/move", `{"movedId":"network","targetId":"media"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body["moved"])

	ids := make([]string, 0, 4)
	for _, cat := range startpage.SortByOrder(store.Config().Categories) {
		ids = append(ids, cat.ID)
	}
	assert.Equal(t, []string{"network", "media", "dev", "monitoring"}, ids)

	res = send(t, srv, http.MethodPost, "/api/categories/move", `{"movedId":"media","targetId":"media"}`)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.False(t, body["moved"])
}

func TestHandleReorderCategoriesByID(t *testing.T) {
	srv, store := newTestServer(t)

	res := send(t, srv, http.MethodPost, "/api/categories/reorder", `{"ids":["monitoring","dev"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	ids := make([]string, 0, 4)
	for _, cat := range startpage.SortByOrder(store.Config().Categories) {
		ids = append(ids, cat.ID)
	}
	assert.Equal(t, []string{"monitoring", "dev", "media", "network"}, ids)
}

func TestHandleImportAndReset(t *testing.T) {
	srv, store := newTestServer(t)

	cfg := startpage.DefaultConfig()
	cfg.WeatherLocation = "Reykjavik"
	cfg.Services = cfg.Services[:1]
	payload, err := json.Marshal(startpage.NewDocument(cfg))
	require.NoError(t, err)

	res := send(t, srv, http.MethodPut, "/api/config", string(payload))
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "Reykjavik", store.Config().WeatherLocation)
	assert.Len(t, store.Config().Services, 1)

	res = send(t, srv, http.MethodPut, "/api/config", `{"version":"1","schemaVersion":99,"config":{}}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = send(t, srv, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, startpage.DefaultConfig().WeatherLocation, store.Config().WeatherLocation)
	assert.Len(t, store.Config().Services, len(startpage.DefaultConfig().Services))
}

func TestHandleUpdateSettingsRejectsUnknownTheme(t *testing.T) {
	srv, store := newTestServer(t)

	res := send(t, srv, http.MethodPatch, "/api/settings", `{"theme":"neon"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = send(t, srv, http.MethodPatch, "/api/settings", `{"theme":"warm"}`)
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, startpage.ThemeWarm, store.Config().Theme)
}

func TestHandleRefreshWithoutPollers(t *testing.T) {
	srv, _ := newTestServer(t)

	res := send(t, srv, http.MethodPost, "/api/services/plex/refresh", "")
	assert.Equal(t, http.StatusNotImplemented, res.StatusCode)
}

func TestHandleReadEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	res := send(t, srv, http.MethodGet, "/api/search?q=graf", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var found []startpage.Service
	require.NoError(t, json.NewDecoder(res.Body).Decode(&found))
	require.Len(t, found, 1)
	assert.Equal(t, "grafana", found[0].ID)

	res = send(t, srv, http.MethodGet, "/api/layout", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var layout startpage.Layout
	require.NoError(t, json.NewDecoder(res.Body).Decode(&layout))
	assert.Len(t, layout.Tabs, 4)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("wrap: %w", commands.ErrInvalidInput), http.StatusBadRequest},
		{commands.ErrNotFound, http.StatusNotFound},
		{queries.ErrNoLiveData, http.StatusNotFound},
		{ErrCommandUnavailable, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
