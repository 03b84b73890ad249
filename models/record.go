package models

import (
	"maps"
	"slices"
	"time"
)

// Record is a single row of a hosted-store table keyed by column name.
// Values use the canonical Go types documented on [Kind].
type Record map[string]any

// ID returns the "id" column as a string, or "" when absent.
func (r Record) ID() string {
	return r.String("id")
}

// String returns the named value when it is a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Strings returns the named value when it is a list of strings.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Time returns the named value when it is a timestamp.
func (r Record) Time(key string) time.Time {
	t, _ := r[key].(time.Time)
	return t
}

// TimePtr returns the named timestamp, or nil when it is absent or null.
func (r Record) TimePtr(key string) *time.Time {
	t, ok := r[key].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

// Object returns the named value when it is a JSON object.
func (r Record) Object(key string) map[string]any {
	m, _ := r[key].(map[string]any)
	return m
}

// Clone returns a shallow copy with list values copied.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := maps.Clone(r)
	for k, v := range out {
		if list, ok := v.([]string); ok {
			out[k] = slices.Clone(list)
		}
	}
	return out
}

// Pick returns a copy holding only the given keys that are present in r.
func (r Record) Pick(keys ...string) Record {
	out := make(Record, len(keys))
	for _, k := range keys {
		if v, ok := r[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Keys returns the record's column names sorted.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}
