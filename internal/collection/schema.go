// Package collection provides the declarative schema for resources managed
// through the generic console: columns, editable fields, filters, capability
// flags, and the endpoint records are fetched from.
//
// Schemas are registered once at startup (built-in or loaded from CUE
// definitions) and held read-only afterward. Everything above this package —
// the gateway, filter engine, form generator, and page orchestrator — is
// driven entirely by these descriptions; there is no per-entity code.
package collection

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cadencehq/console/internal/filter"
)

// Record is an opaque entity decoded from an API response. Records are
// fetched fresh on every list and never cached beyond the current page view.
type Record map[string]any

// ID returns the conventional "id" property as a string. Used as the list
// key and for update/delete addressing.
func (r Record) ID() string {
	return Stringify(r["id"])
}

// AccessorKind discriminates the two accessor variants.
type AccessorKind int

const (
	// AccessorPath reads a dotted path out of the record.
	AccessorPath AccessorKind = iota
	// AccessorFunc derives the value with a function.
	AccessorFunc
)

// Accessor reads a display value out of a record. It is a tagged union:
// either a dotted-path string or a derivation function, resolved with a
// single switch on the kind.
type Accessor struct {
	kind AccessorKind
	path string
	fn   func(Record) any
}

// Path returns an accessor reading the given dotted path.
func Path(p string) Accessor {
	return Accessor{kind: AccessorPath, path: p}
}

// Derived returns an accessor computing the value from the whole record.
func Derived(fn func(Record) any) Accessor {
	return Accessor{kind: AccessorFunc, fn: fn}
}

// Kind returns the accessor variant.
func (a Accessor) Kind() AccessorKind { return a.kind }

// Resolve reads the value for this accessor from rec. The zero Accessor
// resolves to nil.
func (a Accessor) Resolve(rec Record) any {
	switch a.kind {
	case AccessorFunc:
		if a.fn == nil {
			return nil
		}
		return a.fn(rec)
	default:
		if a.path == "" {
			return nil
		}
		return filter.Lookup(rec, a.path)
	}
}

// Column describes one list column.
type Column struct {
	ID       string
	Label    string
	Accessor Accessor
	Width    string
	Sortable bool
}

// FieldType drives form rendering and payload coercion for a schema field.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldSelect  FieldType = "select"
	FieldJSON    FieldType = "json"
)

var fieldTypes = map[FieldType]bool{
	FieldText: true, FieldNumber: true, FieldBoolean: true,
	FieldDate: true, FieldSelect: true, FieldJSON: true,
}

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool { return fieldTypes[t] }

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is one editable property of a record.
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Default     any       `json:"default,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Schema identifies one manageable resource and everything the console
// needs to render it.
type Schema struct {
	ID          string
	Title       string
	Description string

	// APIEndpoint is the base path on the upstream entity API.
	APIEndpoint string
	// ResponseKey names the array-valued property inside the list response
	// when the response is not itself an array. Optional.
	ResponseKey string

	Columns []Column
	Fields  []Field
	Filters []filter.Def

	CanCreate bool
	CanUpdate bool
	CanDelete bool
}

// Validate checks the schema invariants: non-empty identity and endpoint,
// unique column IDs, unique field keys, known field and filter types.
func (s *Schema) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("collection schema: missing id")
	}
	if s.APIEndpoint == "" {
		return fmt.Errorf("collection %q: missing api endpoint", s.ID)
	}
	cols := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.ID == "" {
			return fmt.Errorf("collection %q: column with empty id", s.ID)
		}
		if cols[c.ID] {
			return fmt.Errorf("collection %q: duplicate column %q", s.ID, c.ID)
		}
		cols[c.ID] = true
	}
	keys := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Key == "" {
			return fmt.Errorf("collection %q: field with empty key", s.ID)
		}
		if keys[f.Key] {
			return fmt.Errorf("collection %q: duplicate field %q", s.ID, f.Key)
		}
		keys[f.Key] = true
		if !f.Type.Valid() {
			return fmt.Errorf("collection %q: field %q has unknown type %q", s.ID, f.Key, f.Type)
		}
	}
	seen := make(map[string]bool, len(s.Filters))
	for _, d := range s.Filters {
		if d.ID == "" {
			return fmt.Errorf("collection %q: filter with empty id", s.ID)
		}
		if seen[d.ID] {
			return fmt.Errorf("collection %q: duplicate filter %q", s.ID, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// MatchesSearch reports whether the quick-search query matches any column's
// accessor value on rec, case-insensitively. An empty query matches.
func (s *Schema) MatchesSearch(rec Record, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, col := range s.Columns {
		v := Stringify(col.Accessor.Resolve(rec))
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// Stringify renders a record value for display and search. Nil becomes the
// empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
