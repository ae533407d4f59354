package gateway

import (
	"sort"

	"github.com/cadencehq/console/internal/collection"
)

// shapeStrategy tries to locate the record array inside a decoded response
// body. Strategies are attempted in order; the first hit wins.
type shapeStrategy func(body any, responseKey string) ([]collection.Record, bool)

var shapeStrategies = []shapeStrategy{
	byResponseKey,
	bareArray,
	dataKey,
	firstArrayKey,
}

// ExtractRecords resolves the record array out of a decoded response body.
// Resolution order: the configured responseKey, the body itself as an array,
// a "data" property, then the first array-valued property. A body matching
// none of these yields an empty slice — shape mismatch is never an error.
func ExtractRecords(body any, responseKey string) []collection.Record {
	for _, strategy := range shapeStrategies {
		if recs, ok := strategy(body, responseKey); ok {
			return recs
		}
	}
	return []collection.Record{}
}

func byResponseKey(body any, responseKey string) ([]collection.Record, bool) {
	if responseKey == "" {
		return nil, false
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	arr, ok := obj[responseKey].([]any)
	if !ok {
		return nil, false
	}
	return toRecords(arr), true
}

func bareArray(body any, _ string) ([]collection.Record, bool) {
	arr, ok := body.([]any)
	if !ok {
		return nil, false
	}
	return toRecords(arr), true
}

func dataKey(body any, _ string) ([]collection.Record, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	arr, ok := obj["data"].([]any)
	if !ok {
		return nil, false
	}
	return toRecords(arr), true
}

// firstArrayKey scans the object's keys and takes the first array value.
// Keys are visited in sorted order so the result is deterministic when more
// than one property is an array.
func firstArrayKey(body any, _ string) ([]collection.Record, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if arr, ok := obj[k].([]any); ok {
			return toRecords(arr), true
		}
	}
	return nil, false
}

func toRecords(arr []any) []collection.Record {
	out := make([]collection.Record, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(map[string]any); ok {
			out = append(out, collection.Record(m))
		}
	}
	return out
}
