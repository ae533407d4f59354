package console

import (
	"github.com/cadencehq/console/internal/collection"
	"github.com/cadencehq/console/internal/form"
)

// State is a serializable snapshot of the page, shaped for the HTTP and
// websocket surfaces. Every field is plain data; the client renders it
// without further lookups.
type State struct {
	Collection  string `json:"collection"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Phase string `json:"phase"`
	Error string `json:"error,omitempty"`

	Mode   string `json:"mode"`
	Search string `json:"search,omitempty"`

	Columns []ColumnState `json:"columns,omitempty"`
	Rows    []RowState    `json:"rows,omitempty"`
	Filters []FilterState `json:"filters,omitempty"`

	Total int `json:"total"`
	Shown int `json:"shown"`

	CanCreate bool `json:"canCreate"`
	CanUpdate bool `json:"canUpdate"`
	CanDelete bool `json:"canDelete"`

	Modal string            `json:"modal"`
	Form  []form.FieldState `json:"form,omitempty"`
}

// ColumnState describes one list column for rendering.
type ColumnState struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Width    string `json:"width,omitempty"`
	Sortable bool   `json:"sortable,omitempty"`
}

// RowState carries a record's identity plus its cell values resolved in
// column order.
type RowState struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

// FilterState describes one filter control plus its active value, if any.
type FilterState struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Type   string `json:"type"`
	Active any    `json:"active,omitempty"`
}

// State renders the page into a snapshot.
func (p *Page) State() State {
	p.mu.Lock()
	phase := p.phase
	err := p.err
	modal := p.modal
	f := p.form
	total := len(p.records)
	active := make(map[string]any, len(p.filters))
	for k, v := range p.filters {
		active[k] = v
	}
	p.mu.Unlock()

	st := State{
		Phase: phase.String(),
		Mode:  string(p.viewCtl.Mode()),
		Modal: modal.String(),
	}
	if err != nil {
		st.Error = err.Error()
	}
	if p.schema == nil {
		return st
	}

	s := p.schema
	st.Collection = s.ID
	st.Title = s.Title
	st.Description = s.Description
	st.Search = p.viewCtl.Search()
	st.CanCreate = s.CanCreate
	st.CanUpdate = s.CanUpdate
	st.CanDelete = s.CanDelete

	st.Columns = make([]ColumnState, 0, len(s.Columns))
	for _, c := range s.Columns {
		st.Columns = append(st.Columns, ColumnState{ID: c.ID, Label: c.Label, Width: c.Width, Sortable: c.Sortable})
	}

	st.Filters = make([]FilterState, 0, len(s.Filters))
	for _, d := range s.Filters {
		st.Filters = append(st.Filters, FilterState{
			ID: d.ID, Label: d.Label, Type: string(d.Type), Active: active[d.ID],
		})
	}

	if phase == PhaseReady {
		rows := p.Rows()
		st.Total = total
		st.Shown = len(rows)
		st.Rows = make([]RowState, 0, len(rows))
		for _, rec := range rows {
			cells := make([]string, 0, len(s.Columns))
			for _, c := range s.Columns {
				cells = append(cells, collection.Stringify(c.Accessor.Resolve(rec)))
			}
			st.Rows = append(st.Rows, RowState{ID: rec.ID(), Cells: cells})
		}
	}

	if f != nil {
		st.Form = f.Fields()
	}
	return st
}
