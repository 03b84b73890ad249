package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnNormalize(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		col     Column
		in      any
		want    any
		wantErr bool
	}{
		{name: "string", col: Column{Kind: KindString}, in: "x", want: "x"},
		{name: "string from bytes", col: Column{Kind: KindString}, in: []byte("x"), want: "x"},
		{name: "int from float", col: Column{Kind: KindInt}, in: float64(42), want: int64(42)},
		{name: "int from fraction", col: Column{Kind: KindInt}, in: 1.5, wantErr: true},
		{name: "bool from sqlite int", col: Column{Kind: KindBool}, in: int64(1), want: true},
		{name: "time from RFC3339", col: Column{Kind: KindTime}, in: "2026-03-01T10:30:00Z", want: ts},
		{name: "time from sqlite text", col: Column{Kind: KindTime}, in: []byte("2026-03-01 10:30:00+00:00"), want: ts},
		{name: "time to UTC", col: Column{Kind: KindTime}, in: ts.In(time.FixedZone("X", 3600)), want: ts},
		{name: "list from JSON text", col: Column{Kind: KindList}, in: `["a","b"]`, want: []string{"a", "b"}},
		{name: "list from decoded JSON", col: Column{Kind: KindList}, in: []any{"a"}, want: []string{"a"}},
		{name: "list with numbers", col: Column{Kind: KindList}, in: []any{1.0}, wantErr: true},
		{name: "object from text", col: Column{Kind: KindObject}, in: `{"k":1}`, want: map[string]any{"k": 1.0}},
		{name: "object from JSON string literal", col: Column{Kind: KindObject}, in: `"x"`, wantErr: true},
		{name: "null nullable", col: Column{Kind: KindTime, Nullable: true}, in: nil, want: nil},
		{name: "null non-nullable", col: Column{Kind: KindString}, in: nil, wantErr: true},
		{name: "wrong type", col: Column{Kind: KindString}, in: 12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.col.Normalize(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrColumnValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableNormalize_UnknownColumn(t *testing.T) {
	_, err := Categories.Normalize(Record{"colour": "red"})
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestTableEncode(t *testing.T) {
	rec, err := Profiles.Encode(Record{
		"id":           "p1",
		"category_ids": []string{"c1", "c2"},
		"attributes":   map[string]any{"lang": "en"},
	})
	require.NoError(t, err)

	assert.Equal(t, `["c1","c2"]`, rec["category_ids"])
	assert.Equal(t, `{"lang":"en"}`, rec["attributes"])
	assert.Equal(t, "p1", rec["id"])
}

func TestRecordHelpers(t *testing.T) {
	r := Record{"id": "1", "tags": []string{"a"}, "n": nil}

	clone := r.Clone()
	clone.Strings("tags")[0] = "changed"
	assert.Equal(t, []string{"a"}, r.Strings("tags"))

	assert.Equal(t, Record{"id": "1"}, r.Pick("id", "missing"))
	assert.Equal(t, []string{"id", "n", "tags"}, r.Keys())
	assert.Nil(t, r.TimePtr("n"))
}
