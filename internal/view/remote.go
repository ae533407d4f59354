package view

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteStore talks to the preference service. The contract is minimal:
// GET returns {"value": "..."} or 404, PUT acknowledges {"value": "..."}.
// Failures here are expected and non-fatal — the controller degrades to the
// local fallback.
type RemoteStore struct {
	base string
	http *http.Client
}

// NewRemoteStore creates a preference client for the given base URL. A zero
// timeout falls back to 10 seconds.
func NewRemoteStore(baseURL string, timeout time.Duration) *RemoteStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteStore{
		base: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (s *RemoteStore) Get(ctx context.Context, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/preferences/"+key, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("preference service returned %d", resp.StatusCode)
	}
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding preference: %w", err)
	}
	if body.Value == "" {
		return "", ErrNotFound
	}
	return body.Value, nil
}

func (s *RemoteStore) Put(ctx context.Context, key, value string) error {
	payload := strings.NewReader(`{"value":` + jsonString(value) + `}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.base+"/preferences/"+key, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("preference service returned %d", resp.StatusCode)
	}
	return nil
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
