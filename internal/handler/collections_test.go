package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/console/internal/collection"
	"github.com/cadencehq/console/internal/console"
	"github.com/cadencehq/console/internal/filter"
	"github.com/cadencehq/console/internal/gateway"
	"github.com/cadencehq/console/internal/view"
)

type stubGateway struct {
	records   []collection.Record
	createErr error
}

func (g *stubGateway) List(ctx context.Context, endpoint, responseKey string) ([]collection.Record, error) {
	out := make([]collection.Record, len(g.records))
	copy(out, g.records)
	return out, nil
}

func (g *stubGateway) Create(ctx context.Context, endpoint string, payload map[string]any) (collection.Record, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	rec := collection.Record{"id": "new"}
	for k, v := range payload {
		rec[k] = v
	}
	g.records = append(g.records, rec)
	return rec, nil
}

func (g *stubGateway) Update(ctx context.Context, endpoint, id string, payload map[string]any) (collection.Record, error) {
	for _, r := range g.records {
		if r.ID() == id {
			for k, v := range payload {
				r[k] = v
			}
			return r, nil
		}
	}
	return nil, &gateway.APIError{Status: 404, Message: "not found"}
}

func (g *stubGateway) Delete(ctx context.Context, endpoint, id string) error {
	kept := g.records[:0]
	for _, r := range g.records {
		if r.ID() != id {
			kept = append(kept, r)
		}
	}
	g.records = kept
	return nil
}

func testRouter(t *testing.T, gw console.Gateway) http.Handler {
	t.Helper()
	reg := collection.NewRegistry()
	require.NoError(t, reg.Register(&collection.Schema{
		ID:          "orders",
		Title:       "Orders",
		APIEndpoint: "/admin/orders",
		Columns: []collection.Column{
			{ID: "ref", Label: "Reference", Accessor: collection.Path("ref")},
			{ID: "status", Label: "Status", Accessor: collection.Path("status")},
		},
		Fields: []collection.Field{
			{Key: "ref", Label: "Reference", Type: collection.FieldText},
			{Key: "total", Label: "Total", Type: collection.FieldNumber},
		},
		Filters: []filter.Def{
			{ID: "status", Label: "Status", Type: filter.TypeSelect},
			{ID: "placed", Label: "Placed", Type: filter.TypeDateRange, Field: "placed_at"},
		},
		CanCreate: true,
		CanUpdate: true,
		CanDelete: true,
	}))

	mgr := console.NewManager(reg, gw, view.NewMemoryStore(), view.NewMemoryStore(), nil)
	h := NewCollectionHandler(mgr)

	r := chi.NewRouter()
	r.Get("/v1/collections", h.ListCollections)
	r.Route("/v1/collections/{id}", func(r chi.Router) {
		r.Get("/view", h.GetView)
		r.Put("/view-mode", h.SetViewMode)
		r.Post("/records", h.CreateRecord)
		r.Put("/records/{recordID}", h.UpdateRecord)
		r.Delete("/records/{recordID}", h.DeleteRecord)
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Tenant-ID", "acme")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestListCollections(t *testing.T) {
	h := testRouter(t, &stubGateway{})
	rec, body := doJSON(t, h, http.MethodGet, "/v1/collections", "")

	require.Equal(t, http.StatusOK, rec.Code)
	cols := body["collections"].([]any)
	require.Len(t, cols, 1)
	first := cols[0].(map[string]any)
	assert.Equal(t, "orders", first["id"])
	assert.Equal(t, true, first["canDelete"])
}

func TestGetViewUnknownCollection(t *testing.T) {
	h := testRouter(t, &stubGateway{})
	rec, body := doJSON(t, h, http.MethodGet, "/v1/collections/nope/view", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CONFIG_NOT_FOUND", body["code"])
}

func TestGetViewWithSearchAndFilters(t *testing.T) {
	gw := &stubGateway{records: []collection.Record{
		{"id": "1", "ref": "A-100", "status": "open", "placed_at": "2026-01-10T09:00:00Z"},
		{"id": "2", "ref": "A-200", "status": "closed", "placed_at": "2026-02-10T09:00:00Z"},
		{"id": "3", "ref": "B-300", "status": "open", "placed_at": "2026-03-10T09:00:00Z"},
	}}
	h := testRouter(t, gw)

	rec, body := doJSON(t, h, http.MethodGet, "/v1/collections/orders/view?q=A-&filter.status=open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["phase"])
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(1), body["shown"])

	// Range params select the middle record.
	rec, body = doJSON(t, h, http.MethodGet,
		"/v1/collections/orders/view?q=&filter.status=&filter.placed.from=2026-02-01&filter.placed.to=2026-02-28", "")
	require.Equal(t, http.StatusOK, rec.Code)
	// Empty select value is a real constraint that matches nothing here.
	assert.Equal(t, float64(0), body["shown"])
}

func TestViewModeRoundTrip(t *testing.T) {
	h := testRouter(t, &stubGateway{})

	rec, body := doJSON(t, h, http.MethodPut, "/v1/collections/orders/view-mode", `{"mode":"grid"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grid", body["mode"])

	rec, body = doJSON(t, h, http.MethodPut, "/v1/collections/orders/view-mode", `{"mode":"carousel"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_MODE", body["code"])

	rec, body = doJSON(t, h, http.MethodGet, "/v1/collections/orders/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grid", body["mode"])
}

func TestCreateRecordCoercesValues(t *testing.T) {
	gw := &stubGateway{}
	h := testRouter(t, gw)

	rec, body := doJSON(t, h, http.MethodPost, "/v1/collections/orders/records",
		`{"values":{"ref":"C-400","total":"19.99"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["phase"])
	assert.Equal(t, "closed", body["modal"])

	require.Len(t, gw.records, 1)
	assert.Equal(t, "C-400", gw.records[0]["ref"])
	assert.Equal(t, 19.99, gw.records[0]["total"])
}

func TestCreateRecordUpstreamFailure(t *testing.T) {
	gw := &stubGateway{createErr: &gateway.APIError{Status: 422, Message: "ref taken"}}
	h := testRouter(t, gw)

	rec, body := doJSON(t, h, http.MethodPost, "/v1/collections/orders/records",
		`{"values":{"ref":"C-400"}}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "UPSTREAM_ERROR", body["code"])
}

func TestUpdateAndDeleteRecord(t *testing.T) {
	gw := &stubGateway{records: []collection.Record{
		{"id": "1", "ref": "A-100", "status": "open"},
	}}
	h := testRouter(t, gw)
	// Load the page first.
	rec, _ := doJSON(t, h, http.MethodGet, "/v1/collections/orders/view", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPut, "/v1/collections/orders/records/1",
		`{"values":{"status":"closed"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "closed", gw.records[0]["status"])

	rec, body := doJSON(t, h, http.MethodDelete, "/v1/collections/orders/records/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["total"])
}

func TestUpdateUnknownRecord(t *testing.T) {
	h := testRouter(t, &stubGateway{})
	// Page loads empty; editing a missing row is a client error.
	rec, body := doJSON(t, h, http.MethodPut, "/v1/collections/orders/records/missing",
		`{"values":{"status":"closed"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", body["code"])
}

func TestMalformedBody(t *testing.T) {
	h := testRouter(t, &stubGateway{})
	rec, body := doJSON(t, h, http.MethodPost, "/v1/collections/orders/records", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

func TestTenantIsolationOfViewMode(t *testing.T) {
	h := testRouter(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodPut, "/v1/collections/orders/view-mode", strings.NewReader(`{"mode":"list"}`))
	req.Header.Set("X-Tenant-ID", "acme")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// A different tenant still sees the default.
	req = httptest.NewRequest(http.MethodGet, "/v1/collections/orders/view", nil)
	req.Header.Set("X-Tenant-ID", "globex")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "table", body["mode"])
}

func TestUpdateRecordSchemaWithoutCapability(t *testing.T) {
	reg := collection.NewRegistry()
	require.NoError(t, reg.Register(&collection.Schema{
		ID:          "audit",
		Title:       "Audit Log",
		APIEndpoint: "/admin/audit",
		Columns:     []collection.Column{{ID: "at", Label: "At", Accessor: collection.Path("at")}},
	}))
	mgr := console.NewManager(reg, &stubGateway{records: []collection.Record{{"id": "1", "at": "now"}}}, view.NewMemoryStore(), view.NewMemoryStore(), nil)
	h := NewCollectionHandler(mgr)
	r := chi.NewRouter()
	r.Post("/v1/collections/{id}/records", h.CreateRecord)

	rec, body := doJSON(t, r, http.MethodPost, "/v1/collections/audit/records", `{"values":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "does not allow create")
}

func TestGetViewRefetchesUpstream(t *testing.T) {
	gw := &stubGateway{records: []collection.Record{
		{"id": "1", "ref": "A-100", "status": "open"},
	}}
	h := testRouter(t, gw)

	rec, body := doJSON(t, h, http.MethodGet, "/v1/collections/orders/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total"])

	// Records changed upstream between navigations; the next GET sees them.
	gw.records = append(gw.records, collection.Record{"id": "2", "ref": "A-200", "status": "open"})

	rec, body = doJSON(t, h, http.MethodGet, "/v1/collections/orders/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["total"])
}

func TestMutationFailureLeavesOpenModalAlone(t *testing.T) {
	gw := &stubGateway{
		records:   []collection.Record{{"id": "1", "ref": "A-100", "status": "open"}},
		createErr: &gateway.APIError{Status: 503, Message: "unavailable"},
	}
	reg := collection.NewRegistry()
	require.NoError(t, reg.Register(&collection.Schema{
		ID:          "orders",
		Title:       "Orders",
		APIEndpoint: "/admin/orders",
		Columns:     []collection.Column{{ID: "ref", Label: "Reference", Accessor: collection.Path("ref")}},
		Fields:      []collection.Field{{Key: "ref", Label: "Reference", Type: collection.FieldText}},
		CanCreate:   true,
		CanUpdate:   true,
	}))
	mgr := console.NewManager(reg, gw, view.NewMemoryStore(), view.NewMemoryStore(), nil)
	h := NewCollectionHandler(mgr)
	r := chi.NewRouter()
	r.Post("/v1/collections/{id}/records", h.CreateRecord)

	// An interactive session has an edit form open on the same page.
	p, err := mgr.Page(context.Background(), "acme", "orders")
	require.NoError(t, err)
	require.NoError(t, p.OpenEdit("1"))
	require.NoError(t, p.SetField("ref", "A-101"))

	rec, body := doJSON(t, r, http.MethodPost, "/v1/collections/orders/records", `{"values":{"ref":"C-400"}}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "UPSTREAM_ERROR", body["code"])

	// The failed REST create never touched the session's modal.
	assert.Equal(t, console.ModalEditing, p.Modal())
	require.NotNil(t, p.Form())
	assert.Equal(t, "A-101", p.Form().Value("ref"))
}

func TestConsoleErrorMapping(t *testing.T) {
	w := httptest.NewRecorder()
	consoleErrorToHTTP(w, errors.New("plain"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
