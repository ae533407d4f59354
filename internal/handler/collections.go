// Package handler exposes the console over HTTP: registry listing, page
// state, record mutations, and view-mode preferences. Handlers are thin;
// all behavior lives in the console orchestrator.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cadencehq/console/internal/console"
	"github.com/cadencehq/console/internal/filter"
	"github.com/cadencehq/console/internal/view"
)

// CollectionHandler serves the collection routes for every tenant.
type CollectionHandler struct {
	mgr *console.Manager
}

// NewCollectionHandler builds the handler over a page manager.
func NewCollectionHandler(mgr *console.Manager) *CollectionHandler {
	return &CollectionHandler{mgr: mgr}
}

// collectionSummary is one row of the registry listing.
type collectionSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	CanCreate   bool   `json:"canCreate"`
	CanUpdate   bool   `json:"canUpdate"`
	CanDelete   bool   `json:"canDelete"`
}

// ListCollections handles GET /v1/collections.
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	reg := h.mgr.Registry()
	out := make([]collectionSummary, 0)
	for _, s := range reg.All() {
		out = append(out, collectionSummary{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			CanCreate:   s.CanCreate,
			CanUpdate:   s.CanUpdate,
			CanDelete:   s.CanDelete,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": out})
}

// GetView handles GET /v1/collections/{id}/view. Every GET re-fetches the
// record list, matching the navigate-to-screen semantics of the interactive
// client; search and filter state stays synchronous and in-memory. Query
// params steer the page before the snapshot: q sets the quick search, and
// filter.<id> (repeatable for multiselect, .from/.to suffixes for ranges)
// sets filters.
func (h *CollectionHandler) GetView(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if q.Has("q") {
		p.SetSearch(q.Get("q"))
	}
	applyFilterParams(p, q)
	// A failed re-fetch lands in the page phase; the snapshot reports it.
	_ = p.Load(r.Context())
	writeJSON(w, http.StatusOK, p.State())
}

// applyFilterParams maps filter.<id> query params onto the page, shaping
// each value by the filter's declared type.
func applyFilterParams(p *console.Page, q map[string][]string) {
	s := p.Schema()
	if s == nil {
		return
	}
	for _, def := range s.Filters {
		key := "filter." + def.ID
		switch def.Type {
		case filter.TypeMultiSelect:
			if vals, ok := q[key]; ok {
				p.SetFilter(def.ID, vals)
			}
		case filter.TypeDateRange:
			from, fromOK := first(q[key+".from"])
			to, toOK := first(q[key+".to"])
			if fromOK || toOK {
				p.SetFilter(def.ID, filter.Range{From: from, To: to})
			}
		default:
			if v, ok := first(q[key]); ok {
				p.SetFilter(def.ID, v)
			}
		}
	}
}

func first(vals []string) (string, bool) {
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// viewModeRequest is the body of PUT .../view-mode.
type viewModeRequest struct {
	Mode string `json:"mode"`
}

// SetViewMode handles PUT /v1/collections/{id}/view-mode.
func (h *CollectionHandler) SetViewMode(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	var req viewModeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := p.SetMode(r.Context(), view.Mode(req.Mode)); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MODE", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mode": string(p.Mode())})
}

// recordRequest carries raw form input, keyed by field, exactly as typed.
// Values pass through the form generator's per-type coercion before being
// sent upstream.
type recordRequest struct {
	Values map[string]string `json:"values"`
}

// CreateRecord handles POST /v1/collections/{id}/records. The mutation runs
// through a throwaway form, so an interactive session's open modal on the
// same page is never disturbed.
func (h *CollectionHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := p.CreateRecord(r.Context(), req.Values); err != nil {
		consoleErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.State())
}

// UpdateRecord handles PUT /v1/collections/{id}/records/{recordID}.
func (h *CollectionHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body")
		return
	}
	if err := p.UpdateRecord(r.Context(), chi.URLParam(r, "recordID"), req.Values); err != nil {
		consoleErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.State())
}

// DeleteRecord handles DELETE /v1/collections/{id}/records/{recordID}.
func (h *CollectionHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	if err := p.Delete(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		consoleErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.State())
}

func (h *CollectionHandler) page(w http.ResponseWriter, r *http.Request) (*console.Page, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_COLLECTION", "collection id is required")
		return nil, false
	}
	p, err := h.mgr.Page(r.Context(), tenantFrom(r), id)
	if err != nil {
		consoleErrorToHTTP(w, err)
		return nil, false
	}
	return p, true
}
