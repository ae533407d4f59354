package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cadencehq/console/internal/console"
	"github.com/cadencehq/console/internal/gateway"
)

// defaultTenant is used when the caller sends no X-Tenant-ID header.
const defaultTenant = "default"

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writeJSON encode error", "error", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// tenantFrom resolves the tenant for a request from the X-Tenant-ID header.
func tenantFrom(r *http.Request) string {
	if t := r.Header.Get("X-Tenant-ID"); t != "" {
		return t
	}
	return defaultTenant
}

// consoleErrorToHTTP maps page and gateway errors to HTTP responses.
// Upstream failures surface as 502 with the server's message; everything
// else is a client error against the console itself.
func consoleErrorToHTTP(w http.ResponseWriter, err error) {
	if errors.Is(err, console.ErrConfigNotFound) {
		writeError(w, http.StatusNotFound, "CONFIG_NOT_FOUND", err.Error())
		return
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", apiErr.Error())
		return
	}
	writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
}
