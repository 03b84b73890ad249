package querycodec

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	"display_name": models.KindString,
	"age":          models.KindInt,
	"active":       models.KindBool,
	"created_at":   models.KindTime,
	"category_ids": models.KindList,
}

func mustParse(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return values
}

// ── Decode ────────────────────────────────────────────────────────────────────

func TestDecode_Defaults(t *testing.T) {
	params, err := Decode(testSchema, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, models.SearchParams{Limit: DefaultLimit}, params)
}

func TestDecode_FiltersOrderAndPaging(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	params, err := Decode(testSchema, mustParse(t,
		"display_name__like=an%25&age__gte=18&age__in=20,30&active=true"+
			"&created_at__lt=2026-01-01T00:00:00Z&category_ids=c1"+
			"&order=-created_at,display_name&limit=20&offset=40"))
	require.NoError(t, err)

	assert.Equal(t, []models.Filter{
		{Field: "active", Op: models.OpEq, Value: true},
		{Field: "age", Op: models.OpGte, Value: int64(18)},
		{Field: "age", Op: models.OpIn, Value: []any{int64(20), int64(30)}},
		{Field: "category_ids", Op: models.OpContains, Value: "c1"},
		{Field: "created_at", Op: models.OpLt, Value: ts},
		{Field: "display_name", Op: models.OpLike, Value: "an%"},
	}, params.Filters)
	assert.Equal(t, []models.Order{
		{Field: "created_at", Desc: true},
		{Field: "display_name"},
	}, params.Orders)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, 40, params.Offset)
}

func TestDecode_LimitIsCapped(t *testing.T) {
	params, err := Decode(testSchema, mustParse(t, "limit=5000"))
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, params.Limit)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		key   string
	}{
		{name: "unknown field", query: "email=a", key: "email"},
		{name: "unknown operator", query: "age__between=1", key: "age__between"},
		{name: "operator not allowed for kind", query: "active__gt=true", key: "active__gt"},
		{name: "like on int", query: "age__like=1", key: "age__like"},
		{name: "eq on list becomes contains only", query: "category_ids__in=a,b", key: "category_ids__in"},
		{name: "bad int", query: "age=old", key: "age"},
		{name: "bad int in list", query: "age__in=1,x", key: "age__in"},
		{name: "bad time", query: "created_at=yesterday", key: "created_at"},
		{name: "empty string", query: "display_name=", key: "display_name"},
		{name: "negative limit", query: "limit=-1", key: "limit"},
		{name: "zero limit", query: "limit=0", key: "limit"},
		{name: "negative offset", query: "offset=-5", key: "offset"},
		{name: "order by unknown", query: "order=email", key: "order"},
		{name: "order by list", query: "order=category_ids", key: "order"},
		{name: "repeated key", query: "age=1&age=2", key: "age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(testSchema, mustParse(t, tt.query))
			require.ErrorIs(t, err, ErrInvalidParam)

			var verr *validators.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.key)
		})
	}
}

func TestDecode_CollectsEveryError(t *testing.T) {
	_, err := Decode(testSchema, mustParse(t, "age=x&limit=-1&nope=1"))

	var verr *validators.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
}

// ── Encode ────────────────────────────────────────────────────────────────────

func TestEncodeString_Deterministic(t *testing.T) {
	params := models.SearchParams{
		Filters: []models.Filter{
			{Field: "display_name", Op: models.OpLike, Value: "an%"},
			{Field: "age", Op: models.OpIn, Value: []any{int64(1), int64(2)}},
			{Field: "active", Op: models.OpEq, Value: false},
		},
		Orders: []models.Order{{Field: "age", Desc: true}},
		Limit:  10,
		Offset: 5,
	}

	got := EncodeString(params)
	assert.Equal(t, "active=false&age__in=1%2C2&display_name__like=an%25&limit=10&offset=5&order=-age", got)
	assert.Equal(t, got, EncodeString(params))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	params := models.SearchParams{
		Filters: []models.Filter{
			{Field: "active", Op: models.OpNeq, Value: true},
			{Field: "age", Op: models.OpLte, Value: int64(65)},
			{Field: "category_ids", Op: models.OpContains, Value: "c9"},
			{Field: "created_at", Op: models.OpGte, Value: time.Date(2026, 5, 1, 12, 0, 0, 500, time.UTC)},
			{Field: "display_name", Op: models.OpIn, Value: []any{"ann", "bob"}},
		},
		Orders: []models.Order{{Field: "created_at"}, {Field: "age", Desc: true}},
		Limit:  25,
		Offset: 50,
	}

	decoded, err := Decode(testSchema, Encode(params))
	require.NoError(t, err)
	assert.Equal(t, params, decoded)
}
