// Package console composes the collection schema, entity gateway, filter
// engine, view-state controller, and form generator into one page: load
// config, load data, apply search and filters, render the chosen view mode,
// and wire CRUD actions back through the gateway.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cadencehq/console/internal/collection"
	"github.com/cadencehq/console/internal/filter"
	"github.com/cadencehq/console/internal/form"
	"github.com/cadencehq/console/internal/view"
)

// ErrConfigNotFound marks a collection ID with no registered schema. It is
// terminal for the page; the caller redirects to a safe default screen.
var ErrConfigNotFound = errors.New("collection configuration not found")

// Phase is the page lifecycle state.
type Phase int

const (
	PhaseLoadingConfig Phase = iota
	PhaseConfigError
	PhaseLoadingData
	PhaseDataError
	PhaseReady
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLoadingConfig:
		return "loading_config"
	case PhaseConfigError:
		return "config_error"
	case PhaseLoadingData:
		return "loading_data"
	case PhaseDataError:
		return "data_error"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ModalState is the CRUD modal sub-state within a ready page.
type ModalState int

const (
	ModalClosed ModalState = iota
	ModalCreating
	ModalEditing
)

// String returns the wire name of the modal state.
func (m ModalState) String() string {
	switch m {
	case ModalCreating:
		return "creating"
	case ModalEditing:
		return "editing"
	default:
		return "closed"
	}
}

// Gateway is the slice of the entity API the page needs.
type Gateway interface {
	List(ctx context.Context, endpoint, responseKey string) ([]collection.Record, error)
	Create(ctx context.Context, endpoint string, payload map[string]any) (collection.Record, error)
	Update(ctx context.Context, endpoint, id string, payload map[string]any) (collection.Record, error)
	Delete(ctx context.Context, endpoint, id string) error
}

// Page orchestrates one collection screen for one tenant. All methods are
// safe for concurrent use; network calls run outside the lock.
type Page struct {
	gw      Gateway
	viewCtl *view.Controller
	log     *slog.Logger

	schema   *collection.Schema
	tenantID string

	mu        sync.Mutex
	phase     Phase
	err       error
	records   []collection.Record
	filters   filter.Active
	modal     ModalState
	form      *form.Form
	editingID string

	// Data fetches are tagged with a monotonic sequence number; a fetch
	// that resolves after a newer one has been applied is discarded, so a
	// slow stale response can never overwrite fresher data.
	issuedSeq  uint64
	appliedSeq uint64
}

// NewPage resolves the collection configuration and prepares a page. A
// missing schema puts the page in PhaseConfigError immediately.
func NewPage(reg *collection.Registry, gw Gateway, remote, local view.Store, collectionID, tenantID string, log *slog.Logger) *Page {
	if log == nil {
		log = slog.Default()
	}
	p := &Page{
		gw:       gw,
		tenantID: tenantID,
		log:      log,
		filters:  filter.Active{},
		viewCtl:  view.NewController(collectionID, tenantID, remote, local, log),
	}
	p.schema = reg.Get(collectionID)
	if p.schema == nil {
		p.phase = PhaseConfigError
		p.err = fmt.Errorf("%w: %s", ErrConfigNotFound, collectionID)
		return p
	}
	p.phase = PhaseLoadingData
	return p
}

// Load resolves the view mode and fetches the record list. Also used to
// re-fetch after a mutation; the list always reflects server state, there is
// no optimistic patching.
func (p *Page) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.phase == PhaseConfigError {
		err := p.err
		p.mu.Unlock()
		return err
	}
	p.phase = PhaseLoadingData
	p.issuedSeq++
	seq := p.issuedSeq
	schema := p.schema
	p.mu.Unlock()

	if seq == 1 {
		// First load only; mode changes afterwards go through SetMode.
		p.viewCtl.Resolve(ctx)
	}

	records, err := p.gw.List(ctx, schema.APIEndpoint, schema.ResponseKey)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq <= p.appliedSeq {
		// A newer fetch already resolved; drop this one.
		p.log.Debug("discarding stale fetch", "collection", schema.ID, "seq", seq)
		return nil
	}
	p.appliedSeq = seq
	if err != nil {
		p.phase = PhaseDataError
		p.err = err
		p.records = nil
		return err
	}
	p.phase = PhaseReady
	p.err = nil
	p.records = records
	return nil
}

// Schema returns the resolved collection schema, or nil on config error.
func (p *Page) Schema() *collection.Schema { return p.schema }

// Phase returns the current lifecycle phase.
func (p *Page) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Err returns the terminal error for config/data failures, or nil.
func (p *Page) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Mode returns the current view mode.
func (p *Page) Mode() view.Mode { return p.viewCtl.Mode() }

// SetMode switches the view mode, persisting per the controller's
// local-then-remote policy.
func (p *Page) SetMode(ctx context.Context, m view.Mode) error {
	return p.viewCtl.SetMode(ctx, m)
}

// SetSearch updates the quick-search string. Filtering is synchronous over
// the in-memory list; no re-fetch happens.
func (p *Page) SetSearch(q string) { p.viewCtl.SetSearch(q) }

// SetFilter activates a filter. A nil value clears it.
func (p *Page) SetFilter(id string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if value == nil {
		delete(p.filters, id)
		return
	}
	p.filters[id] = value
}

// ClearFilters deactivates every filter.
func (p *Page) ClearFilters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = filter.Active{}
}

// Rows returns the records passing the quick search and every active
// filter, in server order.
func (p *Page) Rows() []collection.Record {
	p.mu.Lock()
	records := p.records
	active := make(filter.Active, len(p.filters))
	for k, v := range p.filters {
		active[k] = v
	}
	p.mu.Unlock()

	query := p.viewCtl.Search()
	out := make([]collection.Record, 0, len(records))
	for _, rec := range records {
		if !p.schema.MatchesSearch(rec, query) {
			continue
		}
		if !filter.Matches(rec, p.schema.Filters, active) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// OpenCreate opens the modal with an empty form. Requires the create
// capability and a ready page.
func (p *Page) OpenCreate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != PhaseReady {
		return fmt.Errorf("page not ready")
	}
	if !p.schema.CanCreate {
		return fmt.Errorf("collection %s does not allow create", p.schema.ID)
	}
	p.modal = ModalCreating
	p.editingID = ""
	p.form = form.New(p.schema.Fields, nil)
	return nil
}

// OpenEdit opens the modal seeded with the identified record.
func (p *Page) OpenEdit(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != PhaseReady {
		return fmt.Errorf("page not ready")
	}
	if !p.schema.CanUpdate {
		return fmt.Errorf("collection %s does not allow update", p.schema.ID)
	}
	rec := p.findLocked(id)
	if rec == nil {
		return fmt.Errorf("record %s not found", id)
	}
	p.modal = ModalEditing
	p.editingID = id
	p.form = form.New(p.schema.Fields, rec)
	return nil
}

func (p *Page) findLocked(id string) collection.Record {
	for _, rec := range p.records {
		if rec.ID() == id {
			return rec
		}
	}
	return nil
}

// CloseForm dismisses the modal without submitting.
func (p *Page) CloseForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modal = ModalClosed
	p.form = nil
	p.editingID = ""
}

// Modal returns the current modal sub-state.
func (p *Page) Modal() ModalState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modal
}

// SetField stores one raw form input, coerced by the form generator.
func (p *Page) SetField(key, raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.form == nil {
		return fmt.Errorf("no open form")
	}
	p.form.SetValue(key, raw)
	return nil
}

// Form returns the open form, or nil when the modal is closed.
func (p *Page) Form() *form.Form {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Submit sends the open form through the gateway and, on success, closes
// the modal and re-fetches the list. On failure the modal stays open with
// its state intact so the user can retry.
func (p *Page) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.form == nil {
		p.mu.Unlock()
		return fmt.Errorf("no open form")
	}
	modal := p.modal
	payload := p.form.Submit()
	editingID := p.editingID
	schema := p.schema
	p.mu.Unlock()

	var err error
	switch modal {
	case ModalCreating:
		_, err = p.gw.Create(ctx, schema.APIEndpoint, payload)
	case ModalEditing:
		_, err = p.gw.Update(ctx, schema.APIEndpoint, editingID, payload)
	default:
		return fmt.Errorf("no open form")
	}
	if err != nil {
		return err
	}

	p.CloseForm()
	return p.Load(ctx)
}

// CreateRecord coerces raw values through a throwaway form and creates a
// record. It never touches the modal, so a form open in another session is
// unaffected.
func (p *Page) CreateRecord(ctx context.Context, values map[string]string) error {
	p.mu.Lock()
	if p.phase != PhaseReady {
		p.mu.Unlock()
		return fmt.Errorf("page not ready")
	}
	if !p.schema.CanCreate {
		p.mu.Unlock()
		return fmt.Errorf("collection %s does not allow create", p.schema.ID)
	}
	schema := p.schema
	p.mu.Unlock()

	f := form.New(schema.Fields, nil)
	for k, v := range values {
		f.SetValue(k, v)
	}
	if _, err := p.gw.Create(ctx, schema.APIEndpoint, f.Submit()); err != nil {
		return err
	}
	return p.Load(ctx)
}

// UpdateRecord is the ephemeral-form counterpart of OpenEdit plus Submit:
// the form is seeded from the identified record, overlaid with values, and
// discarded after the gateway call.
func (p *Page) UpdateRecord(ctx context.Context, id string, values map[string]string) error {
	p.mu.Lock()
	if p.phase != PhaseReady {
		p.mu.Unlock()
		return fmt.Errorf("page not ready")
	}
	if !p.schema.CanUpdate {
		p.mu.Unlock()
		return fmt.Errorf("collection %s does not allow update", p.schema.ID)
	}
	rec := p.findLocked(id)
	if rec == nil {
		p.mu.Unlock()
		return fmt.Errorf("record %s not found", id)
	}
	schema := p.schema
	p.mu.Unlock()

	f := form.New(schema.Fields, rec)
	for k, v := range values {
		f.SetValue(k, v)
	}
	if _, err := p.gw.Update(ctx, schema.APIEndpoint, id, f.Submit()); err != nil {
		return err
	}
	return p.Load(ctx)
}

// Delete removes a record through the gateway and re-fetches on success.
// On failure the row stays; state only advances on confirmed success.
func (p *Page) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	if p.phase != PhaseReady {
		p.mu.Unlock()
		return fmt.Errorf("page not ready")
	}
	if !p.schema.CanDelete {
		p.mu.Unlock()
		return fmt.Errorf("collection %s does not allow delete", p.schema.ID)
	}
	schema := p.schema
	p.mu.Unlock()

	if err := p.gw.Delete(ctx, schema.APIEndpoint, id); err != nil {
		return err
	}
	return p.Load(ctx)
}

// Flush waits for background preference writes. Used on shutdown.
func (p *Page) Flush() { p.viewCtl.Flush() }
