package console

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cadencehq/console/internal/collection"
	"github.com/cadencehq/console/internal/view"
)

// Manager hands out pages keyed by tenant and collection. Pages are created
// lazily and loaded once on creation; later interactions re-fetch through
// the page itself. A page in config error is not cached, so a collection
// registered later becomes reachable without a restart.
type Manager struct {
	reg    *collection.Registry
	gw     Gateway
	remote view.Store
	local  view.Store
	log    *slog.Logger

	mu    sync.Mutex
	pages map[string]*Page
}

// NewManager builds a Manager over the given registry, gateway, and
// preference stores.
func NewManager(reg *collection.Registry, gw Gateway, remote, local view.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		reg:    reg,
		gw:     gw,
		remote: remote,
		local:  local,
		log:    log,
		pages:  map[string]*Page{},
	}
}

// Registry exposes the collection registry for listing endpoints.
func (m *Manager) Registry() *collection.Registry { return m.reg }

// Page returns the page for one tenant and collection, creating and loading
// it on first access. An unknown collection returns ErrConfigNotFound.
func (m *Manager) Page(ctx context.Context, tenantID, collectionID string) (*Page, error) {
	key := tenantID + "\x00" + collectionID

	m.mu.Lock()
	p, ok := m.pages[key]
	m.mu.Unlock()
	if ok {
		return p, nil
	}

	p = NewPage(m.reg, m.gw, m.remote, m.local, collectionID, tenantID, m.log)
	if p.Phase() == PhaseConfigError {
		return nil, p.Err()
	}
	if err := p.Load(ctx); err != nil {
		// Data errors are page state, not creation failures; the page is
		// kept so the client can see the error phase and retry.
		m.log.Warn("initial load failed", "collection", collectionID, "tenant", tenantID, "error", err)
	}

	m.mu.Lock()
	if existing, ok := m.pages[key]; ok {
		p = existing
	} else {
		m.pages[key] = p
	}
	m.mu.Unlock()
	return p, nil
}

// Flush waits for every page's outstanding background writes. Called once
// at shutdown.
func (m *Manager) Flush() {
	m.mu.Lock()
	pages := make([]*Page, 0, len(m.pages))
	for _, p := range m.pages {
		pages = append(pages, p)
	}
	m.mu.Unlock()
	for _, p := range pages {
		p.Flush()
	}
}
