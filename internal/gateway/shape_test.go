package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestExtractRecords_ResolutionOrder(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		responseKey string
		wantLen     int
		wantFirstID string
	}{
		{"response key wins", `{"data":[{"id":"d"}],"widgets":[{"id":"w"}]}`, "widgets", 1, "w"},
		{"bare array", `[{"id":"a"},{"id":"b"}]`, "", 2, "a"},
		{"data key", `{"total":2,"data":[{"id":"d"}]}`, "", 1, "d"},
		{"single array-valued key", `{"meta":{"page":1},"things":[{"id":"t"}]}`, "", 1, "t"},
		{"response key absent falls through", `{"data":[{"id":"d"}]}`, "widgets", 1, "d"},
		{"no array anywhere", `{"message":"ok"}`, "", 0, ""},
		{"scalar body", `42`, "", 0, ""},
		{"null body", `null`, "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := ExtractRecords(decode(t, tt.body), tt.responseKey)
			require.NotNil(t, recs)
			require.Len(t, recs, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirstID, recs[0].ID())
			}
		})
	}
}

func TestExtractRecords_AnyKeyName(t *testing.T) {
	// For any response shaped {k: arr} with exactly one array-valued key,
	// extraction returns arr regardless of k's name.
	for _, key := range []string{"widgets", "zzz", "résultats", "0items"} {
		body := map[string]any{key: []any{map[string]any{"id": "1"}}}
		recs := ExtractRecords(body, "")
		require.Len(t, recs, 1, key)
		assert.Equal(t, "1", recs[0].ID())
	}
}

func TestExtractRecords_SkipsNonObjectElements(t *testing.T) {
	recs := ExtractRecords(decode(t, `[{"id":"1"},"stray",3,{"id":"2"}]`), "")
	require.Len(t, recs, 2)
	assert.Equal(t, "2", recs[1].ID())
}
