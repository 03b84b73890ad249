// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind describes how a column value is represented inside a [Record]
// and how it is persisted by the stores.
type Kind int

const (
	// KindString is a text column. Canonical Go type: string.
	KindString Kind = iota
	// KindInt is an integer column. Canonical Go type: int64.
	KindInt
	// KindBool is a boolean column. Canonical Go type: bool.
	KindBool
	// KindTime is a timestamp column. Canonical Go type: time.Time in UTC.
	KindTime
	// KindList is a JSON list of strings stored as text. Canonical Go type: []string.
	KindList
	// KindObject is a JSON object stored as text. Canonical Go type: map[string]any.
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ErrColumnValue is returned when a value cannot be converted to its column kind.
var ErrColumnValue = errors.New("invalid column value")

// ErrUnknownColumn is returned when a record carries a column the table does not declare.
var ErrUnknownColumn = errors.New("unknown column")

// Column declares a single table column.
type Column struct {
	Name     string
	Kind     Kind
	Nullable bool
	// Unique marks columns backed by a unique constraint.
	Unique bool
}

// Table declares a physical table of the hosted store.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the declaration of the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Has reports whether the table declares the named column.
func (t Table) Has(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// ColumnNames returns column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Normalize converts every value of rec into the canonical Go type of its column.
// Values coming from SQL drivers ([]byte, int64 booleans, text timestamps) and from
// JSON decoding (float64 numbers, RFC 3339 strings, serialized JSON) are accepted.
func (t Table) Normalize(rec Record) (Record, error) {
	out := make(Record, len(rec))
	for name, value := range rec {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.Name, name)
		}
		v, err := col.Normalize(value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Encode converts rec into the representation written to storage:
// list and object columns become JSON text, timestamps are UTC.
func (t Table) Encode(rec Record) (Record, error) {
	norm, err := t.Normalize(rec)
	if err != nil {
		return nil, err
	}
	for name, value := range norm {
		if value == nil {
			continue
		}
		col, _ := t.Column(name)
		if col.Kind == KindList || col.Kind == KindObject {
			raw, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %w", ErrColumnValue, t.Name, name, err)
			}
			norm[name] = string(raw)
		}
	}
	return norm, nil
}

// Normalize converts a single value to the canonical Go type of the column.
func (c Column) Normalize(value any) (any, error) {
	if value == nil {
		if c.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: null for non-nullable column", ErrColumnValue)
	}

	switch c.Kind {
	case KindString:
		switch v := value.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	case KindInt:
		return toInt64(value)
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		case int:
			return v != 0, nil
		case []byte:
			return strconv.ParseBool(string(v))
		case string:
			return strconv.ParseBool(v)
		}
	case KindTime:
		return toTime(value)
	case KindList:
		return toStringList(value)
	case KindObject:
		return toObject(value)
	}

	return nil, fmt.Errorf("%w: %T is not a %s", ErrColumnValue, value, c.Kind)
}

func toInt64(value any) (any, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrColumnValue, v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return nil, fmt.Errorf("%w: %T is not an int", ErrColumnValue, value)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func toTime(value any) (any, error) {
	var s string
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return nil, fmt.Errorf("%w: %T is not a time", ErrColumnValue, value)
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a time", ErrColumnValue, s)
}

func toStringList(value any) (any, error) {
	switch v := value.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: list item %T is not a string", ErrColumnValue, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return decodeJSONText(v, toStringList)
	case []byte:
		return decodeJSONText(string(v), toStringList)
	}
	return nil, fmt.Errorf("%w: %T is not a list", ErrColumnValue, value)
}

func toObject(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		// round trip through JSON so nested values share one representation
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrColumnValue, err)
		}
		out := map[string]any{}
		if err = json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrColumnValue, err)
		}
		return out, nil
	case string:
		return decodeJSONText(v, toObject)
	case []byte:
		return decodeJSONText(string(v), toObject)
	}
	return nil, fmt.Errorf("%w: %T is not an object", ErrColumnValue, value)
}

func decodeJSONText(text string, convert func(any) (any, error)) (any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrColumnValue, err)
	}
	if _, isString := decoded.(string); isString || decoded == nil {
		return nil, fmt.Errorf("%w: %q is not JSON", ErrColumnValue, text)
	}
	return convert(decoded)
}
