package gorouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/components/startpage/commands"
	"github.com/goliatone/go-startpage/components/startpage/httpapi"
	"github.com/goliatone/go-startpage/components/startpage/poller"
	"github.com/goliatone/go-startpage/components/startpage/queries"
	"github.com/goliatone/go-startpage/pkg/sandbox"
)

// ActorResolver extracts the caller id recorded in activity entries.
type ActorResolver func(router.Context) string

// SandboxInspector lists the tables of the embedded database.
type SandboxInspector interface {
	Tables(ctx context.Context) ([]string, error)
	Describe(ctx context.Context, table string) ([]sandbox.Column, error)
}

// Config wires go-router with the start page controller, APIs, and hooks.
type Config[T any] struct {
	Router        router.Router[T]
	Controller    *startpage.Controller
	API           httpapi.Executor
	Broadcast     *startpage.BroadcastHook
	Sandbox       SandboxInspector
	ActorResolver ActorResolver
	BasePath      string
	Routes        RouteConfig
}

// RouteConfig customizes the relative paths used for start page endpoints.
type RouteConfig struct {
	Config        string
	Layout        string
	Settings      string
	Reset         string
	Search        string
	WebSearch     string
	Weather       string
	Services      string
	Subcategories string
	Categories    string
	Sandbox       string
	WebSocket     string
}

// Register mounts start page routes (JSON, REST, WebSocket, SSE) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/startpage"
	}
	resolver := cfg.ActorResolver
	if resolver == nil {
		resolver = defaultActorResolver
	}

	group := cfg.Router.Group(base)
	registerReads(group, cfg.Controller, routes)

	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}
	if cfg.Sandbox != nil {
		registerSandbox(group, cfg.Sandbox, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerReads[T any](r router.Router[T], controller *startpage.Controller, routes RouteConfig) {
	config := queries.NewConfigQuery(controller)
	layout := queries.NewLayoutQuery(controller)
	search := queries.NewServiceSearchQuery(controller)
	webSearch := queries.NewWebSearchQuery(controller)
	weather := queries.NewWeatherQuery(controller)
	live := queries.NewLiveQuery(controller)
	history := queries.NewHistoryChartQuery(controller)

	r.Get(routes.Config, router.WrapHandler(func(ctx router.Context) error {
		payload, err := config.Query(ctx.Context(), queries.ConfigInput{})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	r.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		payload, err := layout.Query(ctx.Context(), queries.LayoutInput{})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	r.Get(routes.Search, router.WrapHandler(func(ctx router.Context) error {
		payload, err := search.Query(ctx.Context(), queries.SearchInput{Query: ctx.Query("q")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	r.Get(routes.WebSearch, router.WrapHandler(func(ctx router.Context) error {
		target, err := webSearch.Query(ctx.Context(), queries.SearchInput{Query: ctx.Query("q")})
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"url": target})
	}))

	r.Get(routes.Weather, router.WrapHandler(func(ctx router.Context) error {
		payload, err := weather.Query(ctx.Context(), queries.WeatherInput{})
		if err != nil {
			return respondError(ctx, http.StatusBadGateway, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	r.Get(routes.Services+"/:id/live", router.WrapHandler(func(ctx router.Context) error {
		payload, err := live.Query(ctx.Context(), queries.ServiceInput{ServiceID: ctx.Param("id")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	r.Get(routes.Services+"/:id/history", router.WrapHandler(func(ctx router.Context) error {
		html, err := history.Query(ctx.Context(), queries.ServiceInput{ServiceID: ctx.Param("id")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send([]byte(html))
	}))
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ActorResolver, routes RouteConfig) {
	registerServices(r, api, resolver, routes.Services)
	registerSubcategories(r, api, resolver, routes.Subcategories)
	registerCategories(r, api, resolver, routes.Categories)

	r.Patch(routes.Settings, router.WrapHandler(func(ctx router.Context) error {
		var patch startpage.SettingsPatch
		if err := json.Unmarshal(ctx.Body(), &patch); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		input := commands.UpdateSettingsInput{Patch: patch, ActorID: resolver(ctx)}
		if err := api.UpdateSettings(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	r.Post(routes.Reset, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Reset(ctx.Context(), commands.ResetConfigInput{ActorID: resolver(ctx)}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reset"})
	}))

	r.Put(routes.Config, router.WrapHandler(func(ctx router.Context) error {
		doc, err := startpage.DecodeDocument(strings.NewReader(string(ctx.Body())), nil)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Import(ctx.Context(), commands.ImportConfigInput{Document: doc, ActorID: resolver(ctx)}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "imported"})
	}))

	r.Post(routes.Sandbox+"/query", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SandboxQueryInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		results := []sandbox.Result{}
		payload.Results = &results
		if err := api.SandboxQuery(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, results)
	}))

	r.Post(routes.Sandbox+"/run", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SandboxRunInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var result sandbox.RunResult
		payload.Result = &result
		if err := api.SandboxRun(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))
}

func registerServices[T any](r router.Router[T], api httpapi.Executor, resolver ActorResolver, path string) {
	r.Post(path, router.WrapHandler(func(ctx router.Context) error {
		var payload startpage.ServiceInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var created startpage.Service
		input := commands.AddServiceInput{Service: payload, ActorID: resolver(ctx), Result: &created}
		if err := api.AddService(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, created)
	}))

	r.Patch(path+"/:id", router.WrapHandler(func(ctx router.Context) error {
		var patch startpage.ServicePatch
		if err := json.Unmarshal(ctx.Body(), &patch); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		input := commands.UpdateServiceInput{ID: ctx.Param("id"), Patch: patch, ActorID: resolver(ctx)}
		if err := api.UpdateService(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Delete(path+"/:id", router.WrapHandler(func(ctx router.Context) error {
		return deleteEntity(ctx, resolver, api.DeleteService)
	}))

	r.Post(path+"/reorder", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ReorderServicesInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ActorID = resolver(ctx)
		if err := api.ReorderServices(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
	}))

	r.Post(path+"/move", router.WrapHandler(func(ctx router.Context) error {
		return moveEntity(ctx, resolver, api.MoveService)
	}))

	r.Post(path+"/:id/refresh", router.WrapHandler(func(ctx router.Context) error {
		var state poller.State
		input := commands.RefreshServiceInput{ServiceID: ctx.Param("id"), Result: &state}
		if err := api.RefreshService(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, state.LiveValue())
	}))
}

func registerSubcategories[T any](r router.Router[T], api httpapi.Executor, resolver ActorResolver, path string) {
	r.Post(path, router.WrapHandler(func(ctx router.Context) error {
		var payload startpage.SubcategoryInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var created startpage.Subcategory
		input := commands.AddSubcategoryInput{Subcategory: payload, ActorID: resolver(ctx), Result: &created}
		if err := api.AddSubcategory(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, created)
	}))

	r.Patch(path+"/:id", router.WrapHandler(func(ctx router.Context) error {
		var patch startpage.SubcategoryPatch
		if err := json.Unmarshal(ctx.Body(), &patch); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		input := commands.UpdateSubcategoryInput{ID: ctx.Param("id"), Patch: patch, ActorID: resolver(ctx)}
		if err := api.UpdateSubcategory(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Delete(path+"/:id", router.WrapHandler(func(ctx router.Context) error {
		return deleteEntity(ctx, resolver, api.DeleteSubcategory)
	}))

	r.Post(path+"/reorder", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ReorderSubcategoriesInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ActorID = resolver(ctx)
		if err := api.ReorderSubcategories(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
	}))

	r.Post(path+"/move", router.WrapHandler(func(ctx router.Context) error {
		return moveEntity(ctx, resolver, api.MoveSubcategory)
	}))
}

func registerCategories[T any](r router.Router[T], api httpapi.Executor, resolver ActorResolver, path string) {
	r.Post(path, router.WrapHandler(func(ctx router.Context) error {
		var payload startpage.CategoryInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var created startpage.Category
		input := commands.AddCategoryInput{Category: payload, ActorID: resolver(ctx), Result: &created}
		if err := api.AddCategory(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, created)
	}))

	r.Patch(path+"/:id", router.WrapHandler(func(ctx router.Context) error {
		var patch startpage.CategoryPatch
		if err := json.Unmarshal(ctx.Body(), &patch); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		input := commands.UpdateCategoryInput{ID: ctx.Param("id"), Patch: patch, ActorID: resolver(ctx)}
		if err := api.UpdateCategory(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Delete(path+"/:id", router.WrapHandler(func(ctx router.Context) error {
		return deleteEntity(ctx, resolver, api.DeleteCategory)
	}))

	r.Post(path+"/reorder", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ReorderCategoriesInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ActorID = resolver(ctx)
		if err := api.ReorderCategories(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
	}))

	r.Post(path+"/move", router.WrapHandler(func(ctx router.Context) error {
		return moveEntity(ctx, resolver, api.MoveCategory)
	}))
}

func registerSandbox[T any](r router.Router[T], db SandboxInspector, routes RouteConfig) {
	tables := queries.NewTablesQuery(db)
	describe := queries.NewDescribeTableQuery(db)

	r.Get(routes.Sandbox+"/tables", router.WrapHandler(func(ctx router.Context) error {
		names, err := tables.Query(ctx.Context(), queries.TablesInput{})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, names)
	}))

	r.Get(routes.Sandbox+"/tables/:name", router.WrapHandler(func(ctx router.Context) error {
		columns, err := describe.Query(ctx.Context(), queries.TableInput{Name: ctx.Param("name")})
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return ctx.JSON(http.StatusOK, columns)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *startpage.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func deleteEntity(ctx router.Context, resolver ActorResolver, remove func(context.Context, commands.DeleteInput) error) error {
	id := ctx.Param("id")
	if id == "" {
		return respondError(ctx, http.StatusBadRequest, errors.New("id is required"))
	}
	var removed startpage.Cascade
	input := commands.DeleteInput{ID: id, ActorID: resolver(ctx), Result: &removed}
	if err := remove(ctx.Context(), input); err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(http.StatusOK, removed)
}

func moveEntity(ctx router.Context, resolver ActorResolver, move func(context.Context, commands.MoveInput) error) error {
	var payload commands.MoveInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	var moved bool
	payload.ActorID = resolver(ctx)
	payload.Moved = &moved
	if err := move(ctx.Context(), payload); err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"moved": moved})
}

func defaultActorResolver(ctx router.Context) string {
	if v, ok := ctx.Locals("user_id").(string); ok && v != "" {
		return v
	}
	return strings.TrimSpace(ctx.Header(httpapi.ActorHeader))
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Config == "" {
		routes.Config = "/config"
	}
	if routes.Layout == "" {
		routes.Layout = "/layout"
	}
	if routes.Settings == "" {
		routes.Settings = "/settings"
	}
	if routes.Reset == "" {
		routes.Reset = "/reset"
	}
	if routes.Search == "" {
		routes.Search = "/search"
	}
	if routes.WebSearch == "" {
		routes.WebSearch = "/search/web"
	}
	if routes.Weather == "" {
		routes.Weather = "/weather"
	}
	if routes.Services == "" {
		routes.Services = "/services"
	}
	if routes.Subcategories == "" {
		routes.Subcategories = "/subcategories"
	}
	if routes.Categories == "" {
		routes.Categories = "/categories"
	}
	if routes.Sandbox == "" {
		routes.Sandbox = "/sandbox"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
