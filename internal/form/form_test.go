package form

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/console/internal/collection"
)

func allTypesFields() []collection.Field {
	return []collection.Field{
		{Key: "name", Type: collection.FieldText, Required: true},
		{Key: "seats", Type: collection.FieldNumber},
		{Key: "active", Type: collection.FieldBoolean, Default: true},
		{Key: "starts", Type: collection.FieldDate},
		{Key: "tier", Type: collection.FieldSelect, Options: []collection.Option{
			{Value: "basic", Label: "Basic"},
			{Value: "pro", Label: "Pro"},
		}, Default: "basic"},
		{Key: "meta", Type: collection.FieldJSON},
	}
}

func TestNew_Defaults(t *testing.T) {
	f := New(allTypesFields(), nil)

	assert.Nil(t, f.Value("name"))
	assert.Equal(t, true, f.Value("active"))
	assert.Equal(t, "basic", f.Value("tier"))
	assert.Nil(t, f.Value("meta"))
}

func TestNew_SelectWithoutDefaultIsEmptyString(t *testing.T) {
	f := New([]collection.Field{{Key: "tier", Type: collection.FieldSelect}}, nil)
	assert.Equal(t, "", f.Value("tier"))
}

func TestNew_BooleanWithoutDefaultIsFalse(t *testing.T) {
	f := New([]collection.Field{{Key: "active", Type: collection.FieldBoolean}}, nil)
	assert.Equal(t, false, f.Value("active"))
}

func TestNew_SeedsDateTruncated(t *testing.T) {
	f := New(allTypesFields(), collection.Record{"starts": "2024-03-05T10:30:00Z"})
	assert.Equal(t, "2024-03-05", f.Value("starts"))
}

func TestSetValue_Coercion(t *testing.T) {
	f := New(allTypesFields(), nil)

	f.SetValue("name", "Widget")
	assert.Equal(t, "Widget", f.Value("name"))

	f.SetValue("seats", "12")
	assert.Equal(t, float64(12), f.Value("seats"))

	f.SetValue("seats", "twelve")
	n, ok := f.Value("seats").(float64)
	require.True(t, ok)
	assert.True(t, math.IsNaN(n))

	f.SetValue("active", "on")
	assert.Equal(t, true, f.Value("active"))
	f.SetValue("active", "false")
	assert.Equal(t, false, f.Value("active"))

	f.SetValue("starts", "2024-03-05T00:00:00+02:00")
	assert.Equal(t, "2024-03-05", f.Value("starts"))

	f.SetValue("tier", "pro")
	assert.Equal(t, "pro", f.Value("tier"))
}

func TestSetValue_JSONSniffing(t *testing.T) {
	f := New(allTypesFields(), nil)

	// Parses when it looks like an object.
	f.SetValue("meta", `{"tags":["a"]}`)
	parsed, ok := f.Value("meta").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"a"}, parsed["tags"])

	// Parses when it looks like an array.
	f.SetValue("meta", `[1,2]`)
	_, ok = f.Value("meta").([]any)
	assert.True(t, ok)

	// Broken object text stays a string.
	f.SetValue("meta", `{"tags": broken`)
	assert.Equal(t, `{"tags": broken`, f.Value("meta"))

	// "5" does not look like JSON, so it stays a string rather than
	// coercing to a number.
	f.SetValue("meta", "5")
	assert.Equal(t, "5", f.Value("meta"))
}

func TestSubmit_RoundTrip(t *testing.T) {
	record := collection.Record{
		"name":   "Widget",
		"seats":  float64(4),
		"active": true,
		"starts": "2024-03-05",
		"tier":   "pro",
		"meta":   map[string]any{"k": "v"},
	}
	payload := New(allTypesFields(), record).Submit()
	assert.Equal(t, map[string]any(record), payload)
}

func TestSubmit_VerbatimNoStripping(t *testing.T) {
	f := New(allTypesFields(), collection.Record{"name": "Widget", "unknown_extra": "kept"})
	// Undeclared keys set later are also kept.
	f.SetValue("another_extra", "raw")

	payload := f.Submit()
	assert.Equal(t, "raw", payload["another_extra"])
	// Initial keys not declared in the schema are not carried (the form only
	// seeds declared fields), but nothing set on the form is ever stripped.
	_, seeded := payload["unknown_extra"]
	assert.False(t, seeded)
}

func TestSubmit_RequiredIsAdvisory(t *testing.T) {
	// Scenario D: an empty required field does not block submission.
	f := New(allTypesFields(), nil)
	f.SetValue("name", "")

	payload := f.Submit()
	assert.Equal(t, "", payload["name"])
}

func TestSubmit_ReturnsCopy(t *testing.T) {
	f := New(allTypesFields(), nil)
	f.SetValue("name", "A")
	p1 := f.Submit()
	p1["name"] = "mutated"
	assert.Equal(t, "A", f.Value("name"))
}

func TestFields_RenderState(t *testing.T) {
	f := New(allTypesFields(), collection.Record{
		"seats": float64(4),
		"meta":  map[string]any{"k": "v"},
	})
	states := f.Fields()
	require.Len(t, states, 6)

	byKey := map[string]FieldState{}
	for _, s := range states {
		byKey[s.Key] = s
	}
	assert.Equal(t, "4", byKey["seats"].Display)
	assert.True(t, byKey["name"].Required)
	assert.Contains(t, byKey["meta"].Display, `"k": "v"`)
	assert.Equal(t, "true", byKey["active"].Display)
}
