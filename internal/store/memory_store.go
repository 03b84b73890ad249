package store

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-chat-profiles/models"
)

// MemoryStore is an in-process [RecordStore]. It enforces primary keys and
// unique columns but no foreign keys. Used by the "memory" driver and by
// tests of the layers above the store.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

type memoryTable struct {
	rows  map[string]models.Record
	order []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memoryTable)}
}

func (s *MemoryStore) table(name string) *memoryTable {
	t, ok := s.tables[name]
	if !ok {
		t = &memoryTable{rows: make(map[string]models.Record)}
		s.tables[name] = t
	}
	return t
}

func (s *MemoryStore) Get(ctx context.Context, table models.Table, id string) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.table(table.Name).rows[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Create(ctx context.Context, table models.Table, rec models.Record) (models.Record, error) {
	norm, err := table.Normalize(rec)
	if err != nil {
		return nil, err
	}
	id := norm.ID()
	if id == "" {
		return nil, fmt.Errorf("%w: %s record without id", ErrExecutingStatement, table.Name)
	}
	for _, c := range table.Columns {
		if _, ok := norm[c.Name]; !ok && c.Nullable {
			norm[c.Name] = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table.Name)
	if _, exists := t.rows[id]; exists {
		return nil, fmt.Errorf("%w: %s %s", ErrRecordAlreadyExists, table.Name, id)
	}
	if err = t.checkUnique(table, id, norm); err != nil {
		return nil, err
	}

	t.rows[id] = norm
	t.order = append(t.order, id)
	return norm.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, table models.Table, id string, changes models.Record) (models.Record, error) {
	norm, err := table.Normalize(changes)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table.Name)
	current, ok := t.rows[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	updated := current.Clone()
	for k, v := range norm {
		updated[k] = v
	}
	if newID := updated.ID(); newID != id {
		return nil, fmt.Errorf("%w: id of %s cannot change", ErrExecutingStatement, table.Name)
	}
	if err = t.checkUnique(table, id, updated); err != nil {
		return nil, err
	}

	t.rows[id] = updated
	return updated.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, table models.Table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table.Name)
	if _, ok := t.rows[id]; !ok {
		return ErrRecordNotFound
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, table models.Table, params models.SearchParams) ([]models.Record, error) {
	for _, f := range params.Filters {
		if !table.Has(f.Field) {
			return nil, fmt.Errorf("%w: %s has no column %q", ErrInvalidFilter, table.Name, f.Field)
		}
		if !f.Op.Valid() && f.Op != "" {
			return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
		}
	}
	for _, o := range params.Orders {
		if !table.Has(o.Field) {
			return nil, fmt.Errorf("%w: cannot order %s by %q", ErrInvalidFilter, table.Name, o.Field)
		}
	}

	s.mu.RLock()
	t := s.table(table.Name)
	var out []models.Record
	for _, id := range t.order {
		rec := t.rows[id]
		ok, err := matchesAll(rec, params.Filters)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		if ok {
			out = append(out, rec.Clone())
		}
	}
	s.mu.RUnlock()

	if len(params.Orders) > 0 {
		slices.SortStableFunc(out, func(a, b models.Record) int {
			for _, o := range params.Orders {
				c := compareValues(a[o.Field], b[o.Field])
				if o.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && params.Limit < len(out) {
		out = out[:params.Limit]
	}

	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (t *memoryTable) checkUnique(table models.Table, id string, rec models.Record) error {
	for _, c := range table.Columns {
		if !c.Unique || rec[c.Name] == nil {
			continue
		}
		for otherID, other := range t.rows {
			if otherID != id && compareValues(other[c.Name], rec[c.Name]) == 0 {
				return fmt.Errorf("%w: %s.%s", ErrRecordAlreadyExists, table.Name, c.Name)
			}
		}
	}
	return nil
}

func matchesAll(rec models.Record, filters []models.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matches(rec[f.Field], f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matches(value any, f models.Filter) (bool, error) {
	switch f.Op {
	case models.OpEq, "":
		return value != nil && compareValues(value, f.Value) == 0, nil
	case models.OpNeq:
		return value != nil && compareValues(value, f.Value) != 0, nil
	case models.OpGt:
		return value != nil && compareValues(value, f.Value) > 0, nil
	case models.OpGte:
		return value != nil && compareValues(value, f.Value) >= 0, nil
	case models.OpLt:
		return value != nil && compareValues(value, f.Value) < 0, nil
	case models.OpLte:
		return value != nil && compareValues(value, f.Value) <= 0, nil
	case models.OpLike:
		s, ok := value.(string)
		pattern, isString := f.Value.(string)
		if !isString {
			return false, fmt.Errorf("%w: like expects a string", ErrInvalidFilter)
		}
		return ok && likeRegexp(pattern).MatchString(s), nil
	case models.OpIn:
		list, ok := f.Value.([]any)
		if !ok {
			return false, fmt.Errorf("%w: in expects a list", ErrInvalidFilter)
		}
		return value != nil && slices.ContainsFunc(list, func(v any) bool { return compareValues(value, v) == 0 }), nil
	case models.OpContains:
		list, ok := value.([]string)
		item, isString := f.Value.(string)
		if !isString {
			return false, fmt.Errorf("%w: contains expects a string", ErrInvalidFilter)
		}
		return ok && slices.Contains(list, item), nil
	}
	return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
}

// compareValues orders two canonical column values. Nil sorts first and
// values of different types compare by their formatted text.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y)
		case int:
			return cmp.Compare(x, int64(y))
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

var likeCache sync.Map

// likeRegexp compiles a SQL LIKE pattern: % matches any run, _ one character.
func likeRegexp(pattern string) *regexp.Regexp {
	if re, ok := likeCache.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}

	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re := regexp.MustCompile(b.String())
	likeCache.Store(pattern, re)
	return re
}
