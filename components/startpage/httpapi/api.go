package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/components/startpage/commands"
	"github.com/goliatone/go-startpage/components/startpage/poller"
	"github.com/goliatone/go-startpage/pkg/sandbox"
)

// ActorHeader carries the id of the caller recorded in activity entries.
const ActorHeader = "X-Actor-ID"

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	API        Executor
	Controller *startpage.Controller
	Events     *startpage.BroadcastHook
}

func (h *Handlers) HandleAddService(w http.ResponseWriter, r *http.Request) {
	var payload startpage.ServiceInput
	if !decode(w, r, &payload) {
		return
	}
	var created startpage.Service
	input := commands.AddServiceInput{Service: payload, ActorID: actor(r), Result: &created}
	if err := h.API.AddService(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) HandleUpdateService(w http.ResponseWriter, r *http.Request, serviceID string) {
	var patch startpage.ServicePatch
	if !decode(w, r, &patch) {
		return
	}
	input := commands.UpdateServiceInput{ID: serviceID, Patch: patch, ActorID: actor(r)}
	if err := h.API.UpdateService(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleDeleteService(w http.ResponseWriter, r *http.Request, serviceID string) {
	var removed startpage.Cascade
	input := commands.DeleteInput{ID: serviceID, ActorID: actor(r), Result: &removed}
	if err := h.API.DeleteService(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (h *Handlers) HandleReorderServices(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderServicesInput
	if !decode(w, r, &payload) {
		return
	}
	payload.ActorID = actor(r)
	if err := h.API.ReorderServices(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleMoveService(w http.ResponseWriter, r *http.Request) {
	h.handleMove(w, r, h.API.MoveService)
}

func (h *Handlers) HandleAddSubcategory(w http.ResponseWriter, r *http.Request) {
	var payload startpage.SubcategoryInput
	if !decode(w, r, &payload) {
		return
	}
	var created startpage.Subcategory
	input := commands.AddSubcategoryInput{Subcategory: payload, ActorID: actor(r), Result: &created}
	if err := h.API.AddSubcategory(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) HandleUpdateSubcategory(w http.ResponseWriter, r *http.Request, subcategoryID string) {
	var patch startpage.SubcategoryPatch
	if !decode(w, r, &patch) {
		return
	}
	input := commands.UpdateSubcategoryInput{ID: subcategoryID, Patch: patch, ActorID: actor(r)}
	if err := h.API.UpdateSubcategory(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleDeleteSubcategory(w http.ResponseWriter, r *http.Request, subcategoryID string) {
	var removed startpage.Cascade
	input := commands.DeleteInput{ID: subcategoryID, ActorID: actor(r), Result: &removed}
	if err := h.API.DeleteSubcategory(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (h *Handlers) HandleReorderSubcategories(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderSubcategoriesInput
	if !decode(w, r, &payload) {
		return
	}
	payload.ActorID = actor(r)
	if err := h.API.ReorderSubcategories(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleMoveSubcategory(w http.ResponseWriter, r *http.Request) {
	h.handleMove(w, r, h.API.MoveSubcategory)
}

func (h *Handlers) HandleAddCategory(w http.ResponseWriter, r *http.Request) {
	var payload startpage.CategoryInput
	if !decode(w, r, &payload) {
		return
	}
	var created startpage.Category
	input := commands.AddCategoryInput{Category: payload, ActorID: actor(r), Result: &created}
	if err := h.API.AddCategory(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) HandleUpdateCategory(w http.ResponseWriter, r *http.Request, categoryID string) {
	var patch startpage.CategoryPatch
	if !decode(w, r, &patch) {
		return
	}
	input := commands.UpdateCategoryInput{ID: categoryID, Patch: patch, ActorID: actor(r)}
	if err := h.API.UpdateCategory(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleDeleteCategory(w http.ResponseWriter, r *http.Request, categoryID string) {
	var removed startpage.Cascade
	input := commands.DeleteInput{ID: categoryID, ActorID: actor(r), Result: &removed}
	if err := h.API.DeleteCategory(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (h *Handlers) HandleReorderCategories(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderCategoriesInput
	if !decode(w, r, &payload) {
		return
	}
	payload.ActorID = actor(r)
	if err := h.API.ReorderCategories(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleMoveCategory(w http.ResponseWriter, r *http.Request) {
	h.handleMove(w, r, h.API.MoveCategory)
}

func (h *Handlers) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch startpage.SettingsPatch
	if !decode(w, r, &patch) {
		return
	}
	input := commands.UpdateSettingsInput{Patch: patch, ActorID: actor(r)}
	if err := h.API.UpdateSettings(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Reset(r.Context(), commands.ResetConfigInput{ActorID: actor(r)}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImport replaces the whole config with the JSON document in the body.
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	doc, err := startpage.DecodeDocument(r.Body, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Import(r.Context(), commands.ImportConfigInput{Document: doc, ActorID: actor(r)}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleRefreshService(w http.ResponseWriter, r *http.Request, serviceID string) {
	var state poller.State
	input := commands.RefreshServiceInput{ServiceID: serviceID, Result: &state}
	if err := h.API.RefreshService(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, state.LiveValue())
}

func (h *Handlers) HandleSandboxQuery(w http.ResponseWriter, r *http.Request) {
	var payload commands.SandboxQueryInput
	if !decode(w, r, &payload) {
		return
	}
	results := []sandbox.Result{}
	payload.Results = &results
	if err := h.API.SandboxQuery(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handlers) HandleSandboxRun(w http.ResponseWriter, r *http.Request) {
	var payload commands.SandboxRunInput
	if !decode(w, r, &payload) {
		return
	}
	var result sandbox.RunResult
	payload.Result = &result
	if err := h.API.SandboxRun(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleMove(w http.ResponseWriter, r *http.Request, move func(ctx context.Context, in commands.MoveInput) error) {
	var payload commands.MoveInput
	if !decode(w, r, &payload) {
		return
	}
	var moved bool
	payload.ActorID = actor(r)
	payload.Moved = &moved
	if err := move(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func actor(r *http.Request) string {
	return r.Header.Get(ActorHeader)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}
