// Package providerdata holds helpers for reading the loosely-typed JSON
// payloads returned by the upstream football data provider. Provider
// responses are decoded into map[string]any trees and analyzers need to
// reach several levels deep without panicking on a missing or
// differently-shaped field.
package providerdata

// Get walks a chain of keys through nested map[string]any values and
// returns the value found at the end, or nil if any step along the way is
// missing, nil, or not a map.
func Get(data any, keys ...string) any {
	return GetDefault(data, nil, keys...)
}

// GetDefault is Get with an explicit fallback value.
func GetDefault(data any, default_ any, keys ...string) any {
	cur := data
	for _, key := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return default_
		}
		v, ok := m[key]
		if !ok || v == nil {
			return default_
		}
		cur = v
	}
	return cur
}

// String reads a string leaf, returning "" if absent or of another type.
func String(data any, keys ...string) string {
	v := Get(data, keys...)
	s, _ := v.(string)
	return s
}

// Float64 reads a numeric leaf as float64. JSON numbers decoded by sonic
// surface as float64, so this covers the common case directly and falls
// back to int/int64 for values built programmatically (e.g. in tests).
func Float64(data any, keys ...string) (float64, bool) {
	v := Get(data, keys...)
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Int reads a numeric leaf truncated to int.
func Int(data any, keys ...string) (int, bool) {
	f, ok := Float64(data, keys...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool reads a boolean leaf.
func Bool(data any, keys ...string) bool {
	v := Get(data, keys...)
	b, _ := v.(bool)
	return b
}

// Slice reads a leaf expected to be a JSON array.
func Slice(data any, keys ...string) []any {
	v := Get(data, keys...)
	s, _ := v.([]any)
	return s
}

// Map reads a leaf expected to be a JSON object.
func Map(data any, keys ...string) map[string]any {
	v := Get(data, keys...)
	m, _ := v.(map[string]any)
	return m
}

// Present reports whether the full key chain resolves to a non-nil value.
// Used by analyzers to populate DataSources without re-deriving the same
// traversal logic as Get.
func Present(data any, keys ...string) bool {
	return Get(data, keys...) != nil
}

// NonEmptySlice reports whether the key chain resolves to a JSON array
// with at least one element. Several provider collections (predictions,
// h2h_history, standings rows) are considered "available" only when they
// carry data, not merely when the key exists.
func NonEmptySlice(data any, keys ...string) bool {
	return len(Slice(data, keys...)) > 0
}
