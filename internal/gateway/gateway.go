// Package gateway is the HTTP adapter between the console and the upstream
// entity API. It fetches record collections, normalizes the response shape,
// and issues create/update/delete verbs. It never retries; the page
// orchestrator decides what a failure means for the screen.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cadencehq/console/internal/collection"
)

// DefaultTimeout bounds every upstream call. A timed-out call fails like any
// other network error.
const DefaultTimeout = 15 * time.Second

// APIError is the typed failure for upstream calls. Status is zero for
// transport-level failures that never produced a response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
}

// Client talks to the upstream entity API.
type Client struct {
	base string
	http *http.Client
	log  *slog.Logger
}

// NewClient creates a gateway client for the given API base URL. A zero
// timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// List fetches the record collection at endpoint and normalizes it into a
// flat slice. responseKey optionally names the array-valued property inside
// the response object. Shape mismatches are not errors: resolution falls
// through the strategy chain and bottoms out at an empty slice.
func (c *Client) List(ctx context.Context, endpoint, responseKey string) ([]collection.Record, error) {
	if endpoint == "" {
		return nil, &APIError{Message: "list: empty endpoint"}
	}
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &APIError{Message: fmt.Sprintf("decoding %s response: %v", endpoint, err)}
	}
	return ExtractRecords(raw, responseKey), nil
}

// Create posts payload to endpoint and returns the created record when the
// server echoes one back.
func (c *Client) Create(ctx context.Context, endpoint string, payload map[string]any) (collection.Record, error) {
	body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body), nil
}

// Update puts payload to endpoint/id and returns the updated record when the
// server echoes one back.
func (c *Client) Update(ctx context.Context, endpoint, id string, payload map[string]any) (collection.Record, error) {
	body, err := c.do(ctx, http.MethodPut, endpoint+"/"+id, payload)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body), nil
}

// Delete removes the record at endpoint/id.
func (c *Client) Delete(ctx context.Context, endpoint, id string) error {
	_, err := c.do(ctx, http.MethodDelete, endpoint+"/"+id, nil)
	return err
}

// do issues one request and returns the response body, mapping transport
// failures and non-2xx statuses to *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload map[string]any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &APIError{Message: fmt.Sprintf("encoding payload: %v", err)}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("%s %s: %v", method, path, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("%s %s: reading response: %v", method, path, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("upstream call failed", "method", method, "path", path, "status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Message: serverMessage(body, resp.StatusCode)}
	}
	return body, nil
}

// serverMessage extracts a human-readable message from an error body,
// preferring the server's own wording over a status-derived one.
func serverMessage(body []byte, status int) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return http.StatusText(status)
}

func decodeRecord(body []byte) collection.Record {
	var rec collection.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil
	}
	return rec
}
