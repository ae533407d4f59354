// Package view owns the current view mode and search string for a collection
// screen, and persists the mode choice per (collection, tenant).
//
// Persistence is two-tier: a remote preference store shared across devices
// and a local fallback that keeps the choice durable on this device when the
// remote store is unreachable. The local write always happens first and
// synchronously; the remote write is asynchronous and its failure is
// swallowed (logged, never surfaced).
package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Mode is one of the three rendering styles for the same underlying data.
type Mode string

const (
	ModeTable Mode = "table"
	ModeList  Mode = "list"
	ModeGrid  Mode = "grid"
)

// DefaultMode is used when neither store has a preference.
const DefaultMode = ModeTable

// Valid reports whether m is a known view mode.
func (m Mode) Valid() bool {
	return m == ModeTable || m == ModeList || m == ModeGrid
}

// ErrNotFound is returned by Store.Get when no value is stored for the key.
var ErrNotFound = errors.New("preference not found")

// Store is a key-value preference store. Implementations: the remote
// preference service, the SQLite local fallback, and an in-memory store for
// tests.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

// PreferenceKey builds the composite key a view-mode preference is stored
// under. The same key shape is used remotely and locally.
func PreferenceKey(collectionID, tenantID string) string {
	return "collection_view_" + collectionID + "_" + tenantID
}

// Controller manages view mode and search state for one collection screen.
// The tenant ID is injected explicitly; the controller never reads ambient
// application state.
type Controller struct {
	key    string
	remote Store
	local  Store
	log    *slog.Logger

	mu     sync.Mutex
	mode   Mode
	search string

	writes sync.WaitGroup
}

// NewController creates a controller for a (collection, tenant) pair.
// Either store may be nil, which disables that tier.
func NewController(collectionID, tenantID string, remote, local Store, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		key:    PreferenceKey(collectionID, tenantID),
		remote: remote,
		local:  local,
		log:    log,
		mode:   DefaultMode,
	}
}

// Resolve determines the initial view mode: remote preference, then local
// fallback, then DefaultMode. Called once at screen mount.
func (c *Controller) Resolve(ctx context.Context) Mode {
	mode := DefaultMode
	if m, ok := c.lookup(ctx, c.remote); ok {
		mode = m
	} else if m, ok := c.lookup(ctx, c.local); ok {
		mode = m
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	return mode
}

func (c *Controller) lookup(ctx context.Context, s Store) (Mode, bool) {
	if s == nil {
		return "", false
	}
	v, err := s.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Debug("preference lookup failed", "key", c.key, "err", err)
		}
		return "", false
	}
	if m := Mode(v); m.Valid() {
		return m, true
	}
	return "", false
}

// Mode returns the current view mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the view mode. The local fallback is written before this
// returns so the choice survives a reload even if the network write fails;
// the remote write happens in the background and never blocks the caller.
func (c *Controller) SetMode(ctx context.Context, m Mode) error {
	if !m.Valid() {
		return errors.New("invalid view mode: " + string(m))
	}

	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()

	if c.local != nil {
		if err := c.local.Put(ctx, c.key, string(m)); err != nil {
			c.log.Warn("local preference write failed", "key", c.key, "err", err)
		}
	}

	if c.remote != nil {
		// Detached from the request context: the screen may be gone before
		// the write lands, and that is fine.
		bg := context.WithoutCancel(ctx)
		c.writes.Add(1)
		go func() {
			defer c.writes.Done()
			if err := c.remote.Put(bg, c.key, string(m)); err != nil {
				c.log.Warn("remote preference write failed", "key", c.key, "err", err)
			}
		}()
	}
	return nil
}

// Search returns the current quick-search string.
func (c *Controller) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// SetSearch updates the quick-search string. Search is per-screen state and
// is never persisted.
func (c *Controller) SetSearch(q string) {
	c.mu.Lock()
	c.search = q
	c.mu.Unlock()
}

// Flush waits for in-flight remote preference writes. Used on shutdown and
// in tests; normal operation never waits.
func (c *Controller) Flush() {
	c.writes.Wait()
}
