package model

import (
	"encoding/json"
	"strconv"
)

// Record is one row of a resource table as it travels between the HTTP
// layer and the record store. Keys are column names.
type Record map[string]any

// Clone returns a shallow copy of r
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether column is present, even with a null value
func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// String returns the column as a string, or "" when absent, null or not a string
func (r Record) String(column string) string {
	if s, ok := r[column].(string); ok {
		return s
	}
	return ""
}

// Int returns the column as an integer. Decoded JSON numbers, driver integers
// and numeric strings are accepted; fractional values are not.
func (r Record) Int(column string) (int64, bool) {
	return ToInt(r[column])
}

// ToInt converts a decoded value to an integer
func ToInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
