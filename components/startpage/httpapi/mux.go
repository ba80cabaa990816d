package httpapi

import (
	"net/http"
)

// Mux mounts every handler on a standard library ServeMux under base. It is
// the transport used when the service runs without the router adapter.
func (h *Handlers) Mux(base string) *http.ServeMux {
	mux := http.NewServeMux()
	withID := func(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, r.PathValue("id"))
		}
	}

	mux.HandleFunc("POST "+base+"/services", h.HandleAddService)
	mux.HandleFunc("POST "+base+"/services/reorder", h.HandleReorderServices)
	mux.HandleFunc("POST "+base+"/services/move", h.HandleMoveService)
	mux.HandleFunc("PATCH "+base+"/services/{id}", withID(h.HandleUpdateService))
	mux.HandleFunc("DELETE "+base+"/services/{id}", withID(h.HandleDeleteService))
	mux.HandleFunc("POST "+base+"/services/{id}/refresh", withID(h.HandleRefreshService))

	mux.HandleFunc("POST "+base+"/subcategories", h.HandleAddSubcategory)
	mux.HandleFunc("POST "+base+"/subcategories/reorder", h.HandleReorderSubcategories)
	mux.HandleFunc("POST "+base+"/subcategories/move", h.HandleMoveSubcategory)
	mux.HandleFunc("PATCH "+base+"/subcategories/{id}", withID(h.HandleUpdateSubcategory))
	mux.HandleFunc("DELETE "+base+"/subcategories/{id}", withID(h.HandleDeleteSubcategory))

	mux.HandleFunc("POST "+base+"/categories", h.HandleAddCategory)
	mux.HandleFunc("POST "+base+"/categories/reorder", h.HandleReorderCategories)
	mux.HandleFunc("POST "+base+"/categories/move", h.HandleMoveCategory)
	mux.HandleFunc("PATCH "+base+"/categories/{id}", withID(h.HandleUpdateCategory))
	mux.HandleFunc("DELETE "+base+"/categories/{id}", withID(h.HandleDeleteCategory))

	mux.HandleFunc("PATCH "+base+"/settings", h.HandleUpdateSettings)
	mux.HandleFunc("POST "+base+"/reset", h.HandleReset)
	mux.HandleFunc("PUT "+base+"/config", h.HandleImport)

	mux.HandleFunc("POST "+base+"/sandbox/query", h.HandleSandboxQuery)
	mux.HandleFunc("POST "+base+"/sandbox/run", h.HandleSandboxRun)

	if h.Controller != nil {
		mux.HandleFunc("GET "+base+"/config", h.HandleConfig)
		mux.HandleFunc("GET "+base+"/layout", h.HandleLayout)
		mux.HandleFunc("GET "+base+"/search", h.HandleSearch)
	}
	if h.Events != nil {
		mux.HandleFunc("GET "+base+"/ws", h.Events.ServeWebSocket)
		mux.HandleFunc("GET "+base+"/events", h.Events.ServeSSE)
	}
	return mux
}

func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Controller.Config())
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Controller.Layout(r.Context()))
}

func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Controller.SearchServices(r.URL.Query().Get("q")))
}
