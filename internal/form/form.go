// Package form turns a schema field list into an editable form and a flat
// payload for create/update, without per-entity form code.
//
// The generator is deliberately permissive: it coerces what it can and
// passes the rest through. Required markers are advisory, numeric garbage
// becomes NaN, and a json field holds either a parsed structure or the raw
// string depending on what last parsed. Validation, when wanted, belongs to
// the caller.
package form

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/cadencehq/console/internal/collection"
)

// Form holds the editable state for one record.
type Form struct {
	fields []collection.Field
	byKey  map[string]collection.Field
	values map[string]any
}

// New builds a form from the schema fields, seeded with initial record
// values where present and field defaults otherwise.
func New(fields []collection.Field, initial collection.Record) *Form {
	f := &Form{
		fields: fields,
		byKey:  make(map[string]collection.Field, len(fields)),
		values: make(map[string]any, len(fields)),
	}
	for _, fld := range fields {
		f.byKey[fld.Key] = fld
		if v, ok := initial[fld.Key]; ok {
			f.values[fld.Key] = seed(fld, v)
			continue
		}
		if d := defaultFor(fld); d != nil {
			f.values[fld.Key] = d
		}
	}
	return f
}

func seed(fld collection.Field, v any) any {
	if fld.Type == collection.FieldDate {
		if s, ok := v.(string); ok {
			return truncateDay(s)
		}
	}
	return v
}

func defaultFor(fld collection.Field) any {
	switch fld.Type {
	case collection.FieldBoolean:
		if b, ok := fld.Default.(bool); ok {
			return b
		}
		return false
	case collection.FieldSelect:
		if s, ok := fld.Default.(string); ok {
			return s
		}
		return ""
	default:
		return fld.Default
	}
}

// SetValue stores the raw input for key, coerced per the field's declared
// type. Keys without a declared field are stored verbatim — submit never
// strips extra keys.
func (f *Form) SetValue(key, raw string) {
	fld, ok := f.byKey[key]
	if !ok {
		f.values[key] = raw
		return
	}
	f.values[key] = coerce(fld.Type, raw)
}

func coerce(t collection.FieldType, raw string) any {
	switch t {
	case collection.FieldNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			// Invalid numeric input passes through as NaN; rejecting it is
			// the caller's call.
			return math.NaN()
		}
		return n
	case collection.FieldBoolean:
		if raw == "on" { // HTML checkbox
			return true
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		return b
	case collection.FieldDate:
		return truncateDay(raw)
	case collection.FieldJSON:
		return sniffJSON(raw)
	default:
		return raw
	}
}

// sniffJSON parses raw only when it looks like a JSON object or array. On
// parse failure the raw string is kept unchanged, so the field's runtime
// type depends on what last parsed — a quirk preserved for compatibility
// with payloads the upstream API already accepts.
func sniffJSON(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return raw
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return raw
	}
	return parsed
}

// truncateDay reduces an ISO-8601 timestamp to its YYYY-MM-DD component.
func truncateDay(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// Value returns the current value for key.
func (f *Form) Value(key string) any {
	return f.values[key]
}

// Submit returns the accumulated form state verbatim as the mutation
// payload. No schema-driven stripping occurs.
func (f *Form) Submit() map[string]any {
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// FieldState describes one field for rendering.
type FieldState struct {
	collection.Field
	Value   any    `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
}

// Fields returns the render state for every declared field, in schema order.
// Required marking is advisory only; submission is never blocked on it.
func (f *Form) Fields() []FieldState {
	out := make([]FieldState, 0, len(f.fields))
	for _, fld := range f.fields {
		v := f.values[fld.Key]
		out = append(out, FieldState{Field: fld, Value: v, Display: display(fld.Type, v)})
	}
	return out
}

func display(t collection.FieldType, v any) string {
	switch t {
	case collection.FieldJSON:
		switch s := v.(type) {
		case nil:
			return ""
		case string:
			return s
		default:
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return ""
			}
			return string(b)
		}
	default:
		return collection.Stringify(v)
	}
}
