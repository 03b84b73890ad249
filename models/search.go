package models

// Operator is a comparison applied by a [Filter].
type Operator string

const (
	OpEq   Operator = "eq"
	OpNeq  Operator = "neq"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpLike Operator = "like"
	// OpIn matches any of the values; Filter.Value holds a []any.
	OpIn Operator = "in"
	// OpContains matches list columns holding Filter.Value.
	OpContains Operator = "contains"
)

// Operators lists every supported operator.
var Operators = []Operator{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpLike, OpIn, OpContains}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// Filter restricts a read to records whose Field compares to Value with Op.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Order sorts a read by Field.
type Order struct {
	Field string
	Desc  bool
}

// SearchParams describes a filtered, ordered and paginated read.
//
// A zero Limit means "no limit" at the store level; the HTTP query codec
// always fills it in.
type SearchParams struct {
	Filters []Filter
	Orders  []Order
	Limit   int
	Offset  int
}

// Where returns a copy of p with an extra filter appended.
func (p SearchParams) Where(field string, op Operator, value any) SearchParams {
	out := p
	out.Filters = append(append([]Filter(nil), p.Filters...), Filter{Field: field, Op: op, Value: value})
	return out
}

// FilterFor returns the first filter on field with op.
func (p SearchParams) FilterFor(field string, op Operator) (Filter, bool) {
	for _, f := range p.Filters {
		if f.Field == field && f.Op == op {
			return f, true
		}
	}
	return Filter{}, false
}
