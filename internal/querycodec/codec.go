// Package querycodec converts typed search parameters to and from URL
// query strings.
//
// A filter key is either "field" (equality) or "field__op":
//
//	display_name__like=an%25&created_at__gte=2026-01-01T00:00:00Z&order=-created_at&limit=20
//
// The reserved keys "order", "limit" and "offset" control sorting and
// pagination. Values are parsed according to the field kind declared in
// a [Schema].
package querycodec

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
)

// Reserved query keys.
const (
	KeyOrder  = "order"
	KeyLimit  = "limit"
	KeyOffset = "offset"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	opSeparator   = "__"
	listSeparator = ","
	descPrefix    = "-"
)

// Schema maps every filterable and sortable field to its kind.
type Schema map[string]models.Kind

var operatorsByKind = map[models.Kind][]models.Operator{
	models.KindString: {models.OpEq, models.OpNeq, models.OpGt, models.OpGte, models.OpLt, models.OpLte, models.OpLike, models.OpIn},
	models.KindInt:    {models.OpEq, models.OpNeq, models.OpGt, models.OpGte, models.OpLt, models.OpLte, models.OpIn},
	models.KindTime:   {models.OpEq, models.OpNeq, models.OpGt, models.OpGte, models.OpLt, models.OpLte, models.OpIn},
	models.KindBool:   {models.OpEq, models.OpNeq},
	models.KindList:   {models.OpContains},
}

// Decode parses values into search parameters. Filters come out sorted by
// key so the result does not depend on map iteration order. Every invalid
// parameter is reported in a *validators.ValidationError wrapping
// ErrInvalidParam.
func Decode(schema Schema, values url.Values) (models.SearchParams, error) {
	params := models.SearchParams{Limit: DefaultLimit}
	verr := &validators.ValidationError{}

	for _, key := range slices.Sorted(maps.Keys(values)) {
		vals := values[key]
		if len(vals) != 1 {
			verr.Add(key, "must be given exactly once")
			continue
		}
		raw := vals[0]

		switch key {
		case KeyOrder:
			orders, msg := decodeOrder(schema, raw)
			if msg != "" {
				verr.Add(key, msg)
				continue
			}
			params.Orders = orders
		case KeyLimit:
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				verr.Add(key, "must be a positive integer")
				continue
			}
			params.Limit = min(n, MaxLimit)
		case KeyOffset:
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				verr.Add(key, "must be a non-negative integer")
				continue
			}
			params.Offset = n
		default:
			filter, msg := decodeFilter(schema, key, raw)
			if msg != "" {
				verr.Add(key, msg)
				continue
			}
			params.Filters = append(params.Filters, filter)
		}
	}

	if err := verr.Err(); err != nil {
		return models.SearchParams{}, fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}
	return params, nil
}

func decodeFilter(schema Schema, key, raw string) (models.Filter, string) {
	field, op := key, models.OpEq
	if i := strings.LastIndex(key, opSeparator); i > 0 {
		field, op = key[:i], models.Operator(key[i+len(opSeparator):])
	}

	kind, ok := schema[field]
	if !ok {
		return models.Filter{}, "is not a filterable field"
	}
	if !op.Valid() {
		return models.Filter{}, fmt.Sprintf("unknown operator %q", op)
	}
	if kind == models.KindList && op == models.OpEq {
		op = models.OpContains
	}
	if !slices.Contains(operatorsByKind[kind], op) {
		return models.Filter{}, fmt.Sprintf("operator %q is not supported for %s fields", op, kind)
	}

	if op == models.OpIn {
		items := strings.Split(raw, listSeparator)
		list := make([]any, 0, len(items))
		for _, item := range items {
			v, err := parseValue(kind, item)
			if err != nil {
				return models.Filter{}, err.Error()
			}
			list = append(list, v)
		}
		return models.Filter{Field: field, Op: op, Value: list}, ""
	}

	v, err := parseValue(kind, raw)
	if err != nil {
		return models.Filter{}, err.Error()
	}
	return models.Filter{Field: field, Op: op, Value: v}, ""
}

func decodeOrder(schema Schema, raw string) ([]models.Order, string) {
	var orders []models.Order
	for _, item := range strings.Split(raw, listSeparator) {
		order := models.Order{Field: item}
		if rest, found := strings.CutPrefix(item, descPrefix); found {
			order = models.Order{Field: rest, Desc: true}
		}
		kind, ok := schema[order.Field]
		if !ok || kind == models.KindList || kind == models.KindObject {
			return nil, fmt.Sprintf("cannot order by %q", order.Field)
		}
		orders = append(orders, order)
	}
	return orders, ""
}

func parseValue(kind models.Kind, raw string) (any, error) {
	switch kind {
	case models.KindString, models.KindList:
		if raw == "" {
			return nil, fmt.Errorf("must not be empty")
		}
		return raw, nil
	case models.KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case models.KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	case models.KindTime:
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an RFC 3339 timestamp", raw)
		}
		return t.UTC(), nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

// Encode is the inverse of Decode. Equality filters are written without an
// operator suffix, contains filters on list fields likewise. Limit and
// offset are written only when positive.
func Encode(params models.SearchParams) url.Values {
	values := url.Values{}

	for _, f := range params.Filters {
		key := f.Field
		if f.Op != models.OpEq && f.Op != models.OpContains && f.Op != "" {
			key += opSeparator + string(f.Op)
		}
		values.Set(key, formatValue(f.Value))
	}

	if len(params.Orders) > 0 {
		items := make([]string, 0, len(params.Orders))
		for _, o := range params.Orders {
			if o.Desc {
				items = append(items, descPrefix+o.Field)
				continue
			}
			items = append(items, o.Field)
		}
		values.Set(KeyOrder, strings.Join(items, listSeparator))
	}

	if params.Limit > 0 {
		values.Set(KeyLimit, strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		values.Set(KeyOffset, strconv.Itoa(params.Offset))
	}

	return values
}

// EncodeString returns Encode(params) as a query string with sorted keys.
func EncodeString(params models.SearchParams) string {
	return Encode(params).Encode()
}

func formatValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case bool:
		return strconv.FormatBool(value)
	case time.Time:
		return value.UTC().Format(time.RFC3339Nano)
	case []any:
		items := make([]string, 0, len(value))
		for _, item := range value {
			items = append(items, formatValue(item))
		}
		return strings.Join(items, listSeparator)
	case []string:
		return strings.Join(value, listSeparator)
	}
	return fmt.Sprint(v)
}
