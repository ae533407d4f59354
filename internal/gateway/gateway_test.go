package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, nil)
}

func TestList_BareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/widgets", r.URL.Path)
		fmt.Fprint(w, `[{"id":"1","name":"Foo"},{"id":"2","name":"Bar"}]`)
	})

	recs, err := c.List(context.Background(), "/widgets", "")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Foo", recs[0]["name"])
}

func TestList_ResponseKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total":1,"widgets":[{"id":"1","name":"Foo"}]}`)
	})

	recs, err := c.List(context.Background(), "/widgets", "widgets")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Foo", recs[0]["name"])
}

func TestList_EmptyEndpoint(t *testing.T) {
	c := NewClient("http://example.invalid", time.Second, nil)
	_, err := c.List(context.Background(), "", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestList_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":"upstream database unavailable"}`)
	})

	_, err := c.List(context.Background(), "/widgets", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Message, "upstream database unavailable")
}

func TestList_StatusDerivedMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "plain text body")
	})

	_, err := c.List(context.Background(), "/widgets", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not Found", apiErr.Message)
}

func TestList_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // fail at dial time

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.List(context.Background(), "/widgets", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
}

func TestCreate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Foo", payload["name"])
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"9","name":"Foo"}`)
	})

	rec, err := c.Create(context.Background(), "/widgets", map[string]any{"name": "Foo"})
	require.NoError(t, err)
	assert.Equal(t, "9", rec.ID())
}

func TestUpdate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/widgets/9", r.URL.Path)
		fmt.Fprint(w, `{"id":"9","name":"Renamed"}`)
	})

	rec, err := c.Update(context.Background(), "/widgets", "9", map[string]any{"name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", rec["name"])
}

func TestDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/widgets/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "/widgets", "9"))
}

func TestDelete_FailureCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"record has active children"}`)
	})

	err := c.Delete(context.Background(), "/widgets", "9")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "record has active children")
}
