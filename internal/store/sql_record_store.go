// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/models"
	sq "github.com/Masterminds/squirrel"
)

// sqlRecordStore is the relational implementation of [RecordStore]. It
// builds every statement with squirrel and works against PostgreSQL (pgx)
// and sqlite alike.
//
// List and object columns are stored as JSON text, so the same schema runs
// on both engines. Values read back are converted by [models.Table.Normalize].
type sqlRecordStore struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLRecordStore constructs a [RecordStore] backed by db.
func NewSQLRecordStore(db *DB, logger *logger.Logger) RecordStore {
	logger.Debug().Str("dialect", db.dialect).Msg("creating sql record store")
	return &sqlRecordStore{
		db:     db,
		logger: logger,
	}
}

func (s *sqlRecordStore) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(s.db.placeholders())
}

func (s *sqlRecordStore) Get(ctx context.Context, table models.Table, id string) (models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := s.builder().
		Select(table.ColumnNames()...).
		From(table.Name).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Get").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var records []models.Record
	err = s.db.withRetry(ctx, func() error {
		records, err = s.query(ctx, table, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Get").Str("table", table.Name).Msg("error reading record")
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}

	return records[0], nil
}

func (s *sqlRecordStore) Create(ctx context.Context, table models.Table, rec models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	encoded, err := table.Encode(rec)
	if err != nil {
		return nil, err
	}

	columns := encoded.Keys()
	values := make([]any, 0, len(columns))
	for _, c := range columns {
		values = append(values, encoded[c])
	}

	query, args, err := s.builder().
		Insert(table.Name).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING " + strings.Join(table.ColumnNames(), ", ")).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Create").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	records, err := s.query(ctx, table, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Create").Str("table", table.Name).Msg("error inserting record")
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: insert returned no row", ErrExecutingStatement)
	}

	return records[0], nil
}

func (s *sqlRecordStore) Update(ctx context.Context, table models.Table, id string, changes models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	if len(changes) == 0 {
		return s.Get(ctx, table, id)
	}

	encoded, err := table.Encode(changes)
	if err != nil {
		return nil, err
	}

	builder := s.builder().Update(table.Name)
	for _, c := range encoded.Keys() {
		builder = builder.Set(c, encoded[c])
	}
	query, args, err := builder.
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(table.ColumnNames(), ", ")).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Update").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	records, err := s.query(ctx, table, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Update").Str("table", table.Name).Msg("error updating record")
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}

	return records[0], nil
}

func (s *sqlRecordStore) Delete(ctx context.Context, table models.Table, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := s.builder().
		Delete(table.Name).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Delete").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Delete").Str("table", table.Name).Msg("error deleting record")
		return s.mapError(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (s *sqlRecordStore) Read(ctx context.Context, table models.Table, params models.SearchParams) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	builder := s.builder().Select(table.ColumnNames()...).From(table.Name)

	for _, f := range params.Filters {
		cond, err := sqlCondition(s.db.dialect, table, f)
		if err != nil {
			return nil, err
		}
		builder = builder.Where(cond)
	}

	for _, o := range params.Orders {
		if !table.Has(o.Field) {
			return nil, fmt.Errorf("%w: cannot order %s by %q", ErrInvalidFilter, table.Name, o.Field)
		}
		direction := " ASC"
		if o.Desc {
			direction = " DESC"
		}
		builder = builder.OrderBy(o.Field + direction)
	}

	switch {
	case params.Limit > 0:
		builder = builder.Limit(uint64(params.Limit))
		if params.Offset > 0 {
			builder = builder.Offset(uint64(params.Offset))
		}
	case params.Offset > 0 && s.db.dialect == DialectSQLite:
		// sqlite only accepts OFFSET after a LIMIT clause
		builder = builder.Suffix(fmt.Sprintf("LIMIT -1 OFFSET %d", params.Offset))
	case params.Offset > 0:
		builder = builder.Offset(uint64(params.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Read").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var records []models.Record
	err = s.db.withRetry(ctx, func() error {
		records, err = s.query(ctx, table, query, args...)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*sqlRecordStore.Read").Str("table", table.Name).Msg("error reading records")
		return nil, err
	}

	return records, nil
}

func (s *sqlRecordStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// query runs a statement returning rows of table and normalizes them.
func (s *sqlRecordStore) query(ctx context.Context, table models.Table, query string, args ...any) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.mapError(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	records, err := scanRecords(rows, table)
	if err != nil {
		return nil, s.mapError(err)
	}
	return records, nil
}

func (s *sqlRecordStore) mapError(err error) error {
	if s.db.dialect == DialectSQLite {
		return mapSQLiteError(err)
	}
	return mapPostgresError(err)
}

func scanRecords(rows *sql.Rows, table models.Table) ([]models.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	var records []models.Record
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		raw := make(models.Record, len(columns))
		for i, c := range columns {
			raw[c] = values[i]
		}
		rec, err := table.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		records = append(records, rec)
	}

	// RETURNING clauses report constraint violations while iterating
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

// sqlCondition converts a filter into a squirrel predicate. Values are
// written in their storage representation.
func sqlCondition(dialect string, table models.Table, f models.Filter) (sq.Sqlizer, error) {
	col, ok := table.Column(f.Field)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no column %q", ErrInvalidFilter, table.Name, f.Field)
	}

	if f.Op == models.OpContains {
		if col.Kind != models.KindList {
			return nil, fmt.Errorf("%w: contains on non-list column %q", ErrInvalidFilter, f.Field)
		}
		item, ok := f.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: contains expects a string", ErrInvalidFilter)
		}
		return containsCondition(dialect, f.Field, item), nil
	}

	value := storageValue(f.Value)
	switch f.Op {
	case models.OpEq, "":
		return sq.Eq{f.Field: value}, nil
	case models.OpNeq:
		return sq.NotEq{f.Field: value}, nil
	case models.OpGt:
		return sq.Gt{f.Field: value}, nil
	case models.OpGte:
		return sq.GtOrEq{f.Field: value}, nil
	case models.OpLt:
		return sq.Lt{f.Field: value}, nil
	case models.OpLte:
		return sq.LtOrEq{f.Field: value}, nil
	case models.OpLike:
		return sq.Like{f.Field: value}, nil
	case models.OpIn:
		list, ok := f.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: in expects a list", ErrInvalidFilter)
		}
		values := make([]any, 0, len(list))
		for _, v := range list {
			values = append(values, storageValue(v))
		}
		return sq.Eq{f.Field: values}, nil
	}

	return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
}

// containsCondition matches rows whose JSON list column holds item exactly.
// column is a checked column name.
func containsCondition(dialect, column, item string) sq.Sqlizer {
	if dialect == DialectSQLite {
		return sq.Expr("EXISTS (SELECT 1 FROM json_each("+column+") WHERE json_each.value = ?)", item)
	}
	return sq.Expr(column+"::jsonb @> jsonb_build_array(CAST(? AS text))", item)
}

func storageValue(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.UTC()
	}
	return v
}
