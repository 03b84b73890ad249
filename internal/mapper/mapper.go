// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package mapper composes logical objects out of a primary table and the
// tables it links to, and decomposes writes back into per-table records.
//
// A [Schema] names the primary table and its links. Each [Link] says that a
// primary column holds the id of a record in another table and which of that
// record's fields belong to the object. Writes touching several tables are
// sequenced so that foreign keys always point at existing records; when a
// later write fails the earlier ones are compensated.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/transaction"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/MKhiriev/go-chat-profiles/models"
)

const (
	columnID        = "id"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
)

// Link attaches a secondary table to the primary one.
type Link struct {
	Table models.Table
	// ForeignKey is the primary column holding the secondary record id.
	ForeignKey string
	// Fields are the secondary columns merged into the object.
	Fields []string
}

// Schema declares a logical object.
type Schema struct {
	Name    string
	Primary models.Table
	Links   []Link
}

func (s Schema) knows(table string) bool {
	if table == s.Primary.Name {
		return true
	}
	return slices.ContainsFunc(s.Links, func(l Link) bool { return l.Table.Name == table })
}

// Mapper reads and writes the objects of one schema.
type Mapper struct {
	schema Schema
	store  store.RecordStore
	ids    utils.IDGenerator
	now    func() time.Time
}

// Option customises a Mapper.
type Option func(*Mapper)

// WithClock replaces time.Now for created_at and updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Mapper) { m.now = now }
}

// WithIDGenerator replaces the UUIDv7 id generator.
func WithIDGenerator(ids utils.IDGenerator) Option {
	return func(m *Mapper) { m.ids = ids }
}

// New returns a mapper of schema backed by rs.
func New(schema Schema, rs store.RecordStore, opts ...Option) *Mapper {
	m := &Mapper{
		schema: schema,
		store:  rs,
		ids:    utils.NewUUIDGenerator(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Schema returns the schema the mapper serves.
func (m *Mapper) Schema() Schema {
	return m.schema
}

// Create creates the object described by parts (records keyed by table name).
// Secondary records are created first and their ids written into the primary
// foreign keys. A link whose part is absent must already be set in the primary
// part and point at an existing record.
//
// Ids and timestamps are assigned here. On failure the records created so far
// are deleted again.
func (m *Mapper) Create(ctx context.Context, parts map[string]models.Record) (models.Record, transaction.Compensation, error) {
	log := logger.FromContext(ctx)
	if err := m.checkParts(parts); err != nil {
		return nil, nil, err
	}

	now := m.now().UTC()
	primary := parts[m.schema.Primary.Name].Clone()

	var created []createdRecord
	linked := make([]models.Record, len(m.schema.Links))

	fail := func(err error) (models.Record, transaction.Compensation, error) {
		log.Err(err).Str("func", "*Mapper.Create").Str("object", m.schema.Name).Msg("error creating object")
		if undoErr := deleteAll(context.WithoutCancel(ctx), m.store, created); undoErr != nil {
			return nil, nil, errors.Join(err, fmt.Errorf("%w: %w", ErrCompensationFailed, undoErr))
		}
		return nil, nil, err
	}

	for i, link := range m.schema.Links {
		part, ok := parts[link.Table.Name]
		if !ok || len(part) == 0 {
			fk := primary.String(link.ForeignKey)
			if fk == "" {
				return fail(fmt.Errorf("%w: %s needs %s", ErrMissingLink, m.schema.Name, link.ForeignKey))
			}
			rec, err := m.store.Get(ctx, link.Table, fk)
			if err != nil {
				return fail(m.linkError(link, fk, err))
			}
			linked[i] = rec
			continue
		}

		rec := m.stamp(link.Table, part.Clone(), now)
		rec, err := m.store.Create(ctx, link.Table, rec)
		if err != nil {
			return fail(err)
		}
		created = append(created, createdRecord{table: link.Table, record: rec})
		primary[link.ForeignKey] = rec.ID()
		linked[i] = rec
	}

	primary = m.stamp(m.schema.Primary, primary, now)
	primary, err := m.store.Create(ctx, m.schema.Primary, primary)
	if err != nil {
		return fail(err)
	}
	created = append(created, createdRecord{table: m.schema.Primary, record: primary})

	undo := func(ctx context.Context) error {
		return deleteAll(ctx, m.store, created)
	}
	return m.compose(primary, linked), undo, nil
}

// Get loads the object with the primary id.
func (m *Mapper) Get(ctx context.Context, id string) (models.Record, error) {
	primary, err := m.getPrimary(ctx, id)
	if err != nil {
		return nil, err
	}

	linked, err := m.loadLinks(ctx, primary)
	if err != nil {
		return nil, err
	}
	return m.compose(primary, linked), nil
}

// List reads the primaries matching params (primary columns only) and
// attaches their linked records. Rows whose links are broken are skipped.
func (m *Mapper) List(ctx context.Context, params models.SearchParams) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	primaries, err := m.store.Read(ctx, m.schema.Primary, params)
	if err != nil {
		return nil, err
	}

	// one read per link instead of one per row
	byLink := make([]map[string]models.Record, len(m.schema.Links))
	for i, link := range m.schema.Links {
		var fks []any
		for _, p := range primaries {
			if fk := p.String(link.ForeignKey); fk != "" {
				fks = append(fks, fk)
			}
		}
		byLink[i] = map[string]models.Record{}
		if len(fks) == 0 {
			continue
		}
		secondaries, err := m.store.Read(ctx, link.Table, models.SearchParams{}.Where(columnID, models.OpIn, fks))
		if err != nil {
			return nil, err
		}
		for _, s := range secondaries {
			byLink[i][s.ID()] = s
		}
	}

	objects := make([]models.Record, 0, len(primaries))
	for _, p := range primaries {
		linked := make([]models.Record, len(m.schema.Links))
		broken := false
		for i, link := range m.schema.Links {
			rec, ok := byLink[i][p.String(link.ForeignKey)]
			if !ok {
				broken = true
				break
			}
			linked[i] = rec
		}
		if broken {
			log.Warn().Str("func", "*Mapper.List").Str("object", m.schema.Name).Str("id", p.ID()).Msg("skipping object with broken link")
			continue
		}
		objects = append(objects, m.compose(p, linked))
	}

	return objects, nil
}

// Update applies parts (records keyed by table name) to the object with the
// primary id. Secondary tables are updated before the primary, whose
// updated_at is always refreshed. The previous values of every touched
// column are restored when a later update fails.
func (m *Mapper) Update(ctx context.Context, id string, parts map[string]models.Record) (models.Record, transaction.Compensation, error) {
	log := logger.FromContext(ctx)
	if err := m.checkParts(parts); err != nil {
		return nil, nil, err
	}

	primary, err := m.getPrimary(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	now := m.now().UTC()
	var applied []snapshot

	fail := func(err error) (models.Record, transaction.Compensation, error) {
		log.Err(err).Str("func", "*Mapper.Update").Str("object", m.schema.Name).Msg("error updating object")
		if undoErr := restoreAll(context.WithoutCancel(ctx), m.store, applied); undoErr != nil {
			return nil, nil, errors.Join(err, fmt.Errorf("%w: %w", ErrCompensationFailed, undoErr))
		}
		return nil, nil, err
	}

	for _, link := range m.schema.Links {
		changes := parts[link.Table.Name]
		if len(changes) == 0 {
			continue
		}
		fk := primary.String(link.ForeignKey)
		current, err := m.store.Get(ctx, link.Table, fk)
		if err != nil {
			return fail(m.linkError(link, fk, err))
		}

		changes = m.touch(link.Table, changes.Clone(), now)
		if _, err = m.store.Update(ctx, link.Table, fk, changes); err != nil {
			return fail(err)
		}
		applied = append(applied, snapshot{table: link.Table, id: fk, values: current.Pick(changes.Keys()...)})
	}

	changes := m.touch(m.schema.Primary, parts[m.schema.Primary.Name].Clone(), now)
	delete(changes, columnID)
	updated, err := m.store.Update(ctx, m.schema.Primary, id, changes)
	if err != nil {
		return fail(err)
	}
	applied = append(applied, snapshot{table: m.schema.Primary, id: id, values: primary.Pick(changes.Keys()...)})

	linked, err := m.loadLinks(ctx, updated)
	if err != nil {
		return fail(err)
	}

	undo := func(ctx context.Context) error {
		return restoreAll(ctx, m.store, applied)
	}
	return m.compose(updated, linked), undo, nil
}

// Delete removes the object: the primary record first, then the linked
// records. When a linked delete fails the deleted records are re-created
// with their original ids. The deleted object is returned.
func (m *Mapper) Delete(ctx context.Context, id string) (models.Record, transaction.Compensation, error) {
	log := logger.FromContext(ctx)

	primary, err := m.getPrimary(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	// a dangling link does not block the delete
	linked := make([]models.Record, len(m.schema.Links))
	for i, link := range m.schema.Links {
		rec, err := m.store.Get(ctx, link.Table, primary.String(link.ForeignKey))
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil, err
		}
		linked[i] = rec
	}

	if err = m.store.Delete(ctx, m.schema.Primary, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %s %s", ErrObjectNotFound, m.schema.Name, id)
		}
		return nil, nil, err
	}
	// secondaries are re-created before the primary so foreign keys resolve
	deleted := []createdRecord{{table: m.schema.Primary, record: primary}}

	for i, link := range m.schema.Links {
		rec := linked[i]
		if rec == nil {
			continue
		}
		err = m.store.Delete(ctx, link.Table, rec.ID())
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			log.Err(err).Str("func", "*Mapper.Delete").Str("object", m.schema.Name).Msg("error deleting linked record")
			if undoErr := recreateAll(context.WithoutCancel(ctx), m.store, deleted); undoErr != nil {
				return nil, nil, errors.Join(err, fmt.Errorf("%w: %w", ErrCompensationFailed, undoErr))
			}
			return nil, nil, err
		}
		deleted = append([]createdRecord{{table: link.Table, record: rec}}, deleted...)
	}

	undo := func(ctx context.Context) error {
		return recreateAll(ctx, m.store, deleted)
	}
	return m.compose(primary, linked), undo, nil
}

func (m *Mapper) getPrimary(ctx context.Context, id string) (models.Record, error) {
	primary, err := m.store.Get(ctx, m.schema.Primary, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s %s", ErrObjectNotFound, m.schema.Name, id)
	}
	return primary, err
}

func (m *Mapper) loadLinks(ctx context.Context, primary models.Record) ([]models.Record, error) {
	linked := make([]models.Record, len(m.schema.Links))
	for i, link := range m.schema.Links {
		fk := primary.String(link.ForeignKey)
		rec, err := m.store.Get(ctx, link.Table, fk)
		if err != nil {
			return nil, m.linkError(link, fk, err)
		}
		linked[i] = rec
	}
	return linked, nil
}

func (m *Mapper) linkError(link Link, fk string, err error) error {
	if fk == "" || errors.Is(err, store.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s.%s = %q", ErrBrokenLink, m.schema.Primary.Name, link.ForeignKey, fk)
	}
	return err
}

// compose merges the linked fields into a copy of the primary. Primary
// columns win on name collisions.
func (m *Mapper) compose(primary models.Record, linked []models.Record) models.Record {
	obj := models.Record{}
	for i, link := range m.schema.Links {
		for _, f := range link.Fields {
			if v, ok := linked[i][f]; ok {
				obj[f] = v
			}
		}
	}
	for k, v := range primary {
		obj[k] = v
	}
	return obj
}

func (m *Mapper) checkParts(parts map[string]models.Record) error {
	for table := range parts {
		if !m.schema.knows(table) {
			return fmt.Errorf("%w: %s has no table %q", ErrUnknownTable, m.schema.Name, table)
		}
	}
	return nil
}

// stamp assigns a fresh id and creation timestamps.
func (m *Mapper) stamp(table models.Table, rec models.Record, now time.Time) models.Record {
	if rec == nil {
		rec = models.Record{}
	}
	rec[columnID] = m.ids.Generate()
	if table.Has(columnCreatedAt) {
		rec[columnCreatedAt] = now
	}
	if table.Has(columnUpdatedAt) {
		rec[columnUpdatedAt] = now
	}
	return rec
}

func (m *Mapper) touch(table models.Table, changes models.Record, now time.Time) models.Record {
	if changes == nil {
		changes = models.Record{}
	}
	if table.Has(columnUpdatedAt) {
		changes[columnUpdatedAt] = now
	}
	return changes
}

type createdRecord struct {
	table  models.Table
	record models.Record
}

type snapshot struct {
	table  models.Table
	id     string
	values models.Record
}

// deleteAll deletes records in reverse creation order.
func deleteAll(ctx context.Context, rs store.RecordStore, records []createdRecord) error {
	var errs []error
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if err := rs.Delete(ctx, r.table, r.record.ID()); err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			errs = append(errs, fmt.Errorf("delete %s %s: %w", r.table.Name, r.record.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// restoreAll writes snapshots back in reverse order.
func restoreAll(ctx context.Context, rs store.RecordStore, snapshots []snapshot) error {
	var errs []error
	for i := len(snapshots) - 1; i >= 0; i-- {
		s := snapshots[i]
		if _, err := rs.Update(ctx, s.table, s.id, s.values); err != nil {
			errs = append(errs, fmt.Errorf("restore %s %s: %w", s.table.Name, s.id, err))
		}
	}
	return errors.Join(errs...)
}

// recreateAll re-creates deleted records in order, keeping their ids.
func recreateAll(ctx context.Context, rs store.RecordStore, records []createdRecord) error {
	var errs []error
	for _, r := range records {
		if _, err := rs.Create(ctx, r.table, r.record); err != nil && !errors.Is(err, store.ErrRecordAlreadyExists) {
			errs = append(errs, fmt.Errorf("recreate %s %s: %w", r.table.Name, r.record.ID(), err))
		}
	}
	return errors.Join(errs...)
}
