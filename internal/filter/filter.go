// Package filter evaluates declarative filter predicates over opaque records.
//
// A record is a plain map decoded from JSON. Filter definitions declare a
// type and a field path; the active-filter state maps definition IDs to
// user-supplied values. Matches reduces all active predicates with logical
// AND. Malformed values and unknown filter types never fail a record — the
// engine degrades to "no constraint" so configuration mistakes show more
// data instead of an error page.
package filter

import (
	"strconv"
	"strings"
	"time"
)

// Type classifies how a filter value is interpreted.
type Type string

const (
	TypeSearch      Type = "search"
	TypeSelect      Type = "select"
	TypeMultiSelect Type = "multiselect"
	TypeDate        Type = "date"
	TypeDateRange   Type = "daterange"
	TypeNumber      Type = "number"
)

// Def describes one filter over a record field.
type Def struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  Type   `json:"type"`

	// Field is a dotted path into the record. Empty means the def ID
	// doubles as the path.
	Field string `json:"field,omitempty"`

	// Extract overrides path lookup when set. Used for derived values.
	Extract func(map[string]any) any `json:"-"`
}

// Range bounds a daterange filter. An empty From or To leaves that side open.
type Range struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Active maps filter IDs to their current values. An absent key means the
// filter is inactive. Value shapes depend on the filter type: string for
// search/select/date/number, a string slice for multiselect, a Range (or a
// from/to map decoded from JSON) for daterange.
type Active map[string]any

// Matches reports whether rec satisfies every active filter in defs.
// Definitions without an entry in active are skipped; an empty active map
// matches everything. Evaluation order follows defs but cannot affect the
// result (pure AND).
func Matches(rec map[string]any, defs []Def, active Active) bool {
	for _, def := range defs {
		val, ok := active[def.ID]
		if !ok {
			continue
		}
		if !matchOne(rec, def, val) {
			return false
		}
	}
	return true
}

func matchOne(rec map[string]any, def Def, val any) bool {
	got := def.value(rec)
	switch def.Type {
	case TypeSearch:
		return matchSearch(got, val)
	case TypeSelect:
		return stringify(got) == stringify(val)
	case TypeMultiSelect:
		return matchMultiSelect(got, val)
	case TypeDate:
		return matchDate(got, val)
	case TypeDateRange:
		return matchDateRange(got, val)
	case TypeNumber:
		return matchNumber(got, val)
	default:
		// Unknown types are non-constraining so new filter kinds can roll
		// out ahead of engine support.
		return true
	}
}

func (d Def) value(rec map[string]any) any {
	if d.Extract != nil {
		return d.Extract(rec)
	}
	path := d.Field
	if path == "" {
		path = d.ID
	}
	return Lookup(rec, path)
}

// Lookup resolves a dotted path against a nested record. Returns nil when
// any segment is missing or not a map.
func Lookup(rec map[string]any, path string) any {
	var cur any = rec
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

func matchSearch(got, val any) bool {
	needle := strings.TrimSpace(stringify(val))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(stringify(got)), strings.ToLower(needle))
}

func matchMultiSelect(got, val any) bool {
	choices := toStrings(val)
	// Multiselect starts empty, so an empty selection means "no constraint".
	// This is deliberately asymmetric with select, where an empty string is
	// a real equality test.
	if len(choices) == 0 {
		return true
	}
	gs := stringify(got)
	for _, c := range choices {
		if gs == c {
			return true
		}
	}
	return false
}

func matchDate(got, val any) bool {
	want, ok := dayOf(val)
	if !ok {
		return true
	}
	have, ok := dayOf(got)
	if !ok {
		return false
	}
	return have == want
}

func matchDateRange(got, val any) bool {
	rng, ok := toRange(val)
	if !ok || (rng.From == "" && rng.To == "") {
		return true
	}
	have, ok := dayOf(got)
	if !ok {
		return false
	}
	if rng.From != "" {
		if from, ok := dayOf(rng.From); ok && have < from {
			return false
		}
	}
	if rng.To != "" {
		if to, ok := dayOf(rng.To); ok && have > to {
			return false
		}
	}
	return true
}

func matchNumber(got, val any) bool {
	// A filter value that cannot be read as a number constrains nothing,
	// same as malformed date ranges.
	want, ok := toFloat(val)
	if !ok {
		return true
	}
	have, ok := toFloat(got)
	if !ok {
		return false
	}
	return have == want
}

func stringify(v any) string {
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
		return ""
	}
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, stringify(e))
		}
		return out
	default:
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toRange(v any) (Range, bool) {
	switch t := v.(type) {
	case Range:
		return t, true
	case *Range:
		if t == nil {
			return Range{}, false
		}
		return *t, true
	case map[string]any:
		return Range{From: stringify(t["from"]), To: stringify(t["to"])}, true
	default:
		return Range{}, false
	}
}

// dayOf truncates a date-like value to its YYYY-MM-DD component.
func dayOf(v any) (string, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02"), true
	case string:
		s := strings.TrimSpace(t)
		if len(s) >= 10 {
			s = s[:10]
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}
