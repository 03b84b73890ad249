package mapper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errInjected = errors.New("injected failure")
	testNow     = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
)

type sequenceIDs struct {
	n int
}

func (s *sequenceIDs) Generate() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// faultyStore fails the operations listed in failOn ("create:profiles", ...).
type faultyStore struct {
	store.RecordStore
	failOn map[string]bool
}

func (f *faultyStore) fail(op string, table models.Table) bool {
	return f.failOn[op+":"+table.Name]
}

func (f *faultyStore) Create(ctx context.Context, table models.Table, rec models.Record) (models.Record, error) {
	if f.fail("create", table) {
		return nil, errInjected
	}
	return f.RecordStore.Create(ctx, table, rec)
}

func (f *faultyStore) Update(ctx context.Context, table models.Table, id string, changes models.Record) (models.Record, error) {
	if f.fail("update", table) {
		return nil, errInjected
	}
	return f.RecordStore.Update(ctx, table, id, changes)
}

func (f *faultyStore) Delete(ctx context.Context, table models.Table, id string) error {
	if f.fail("delete", table) {
		return errInjected
	}
	return f.RecordStore.Delete(ctx, table, id)
}

func newTestMapper(t *testing.T, schema Schema) (*Mapper, *faultyStore) {
	t.Helper()
	fs := &faultyStore{RecordStore: store.NewMemoryStore(), failOn: map[string]bool{}}
	m := New(schema, fs, WithIDGenerator(&sequenceIDs{}), WithClock(func() time.Time { return testNow }))
	return m, fs
}

func profileParts(email, name string) map[string]models.Record {
	return map[string]models.Record{
		models.UsersTable: {"email": email, "password_hash": "hash"},
		models.ProfilesTable: {
			"display_name": name,
			"bio":          "",
			"avatar_url":   "",
			"attributes":   map[string]any{},
			"category_ids": []string{},
		},
	}
}

func count(t *testing.T, rs store.RecordStore, table models.Table) int {
	t.Helper()
	records, err := rs.Read(context.Background(), table, models.SearchParams{})
	require.NoError(t, err)
	return len(records)
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreate_SecondaryFirstThenPrimary(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)

	obj, undo, err := m.Create(context.Background(), profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)
	require.NotNil(t, undo)

	// users got the first id, the profile the second
	assert.Equal(t, "id-2", obj.ID())
	assert.Equal(t, "id-1", obj.String("user_id"))
	assert.Equal(t, "ann@example.com", obj.String("email"))
	assert.NotContains(t, obj, "password_hash")
	assert.Equal(t, testNow, obj.Time("created_at"))
	assert.Equal(t, testNow, obj.Time("updated_at"))

	user, err := fs.Get(context.Background(), models.Users, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.String("password_hash"))
}

func TestCreate_PrimaryFailureDeletesSecondary(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	fs.failOn["create:profiles"] = true

	_, _, err := m.Create(context.Background(), profileParts("ann@example.com", "Ann"))
	assert.ErrorIs(t, err, errInjected)
	assert.Zero(t, count(t, fs, models.Users))
}

func TestCreate_CompensationFailureIsJoined(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	fs.failOn["create:profiles"] = true
	fs.failOn["delete:users"] = true

	_, _, err := m.Create(context.Background(), profileParts("ann@example.com", "Ann"))
	assert.ErrorIs(t, err, errInjected)
	assert.ErrorIs(t, err, ErrCompensationFailed)
}

func TestCreate_DuplicateSecondary(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	_, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)

	_, _, err = m.Create(ctx, profileParts("ann@example.com", "Other"))
	assert.ErrorIs(t, err, store.ErrRecordAlreadyExists)
	assert.Equal(t, 1, count(t, fs, models.Profiles))
}

func TestCreate_ExistingLinkByForeignKey(t *testing.T) {
	m, _ := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	first, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)

	// reuse a user id that does not exist
	parts := profileParts("", "Ghost")
	delete(parts, models.UsersTable)
	parts[models.ProfilesTable]["user_id"] = "missing"
	_, _, err = m.Create(ctx, parts)
	assert.ErrorIs(t, err, ErrBrokenLink)

	delete(parts[models.ProfilesTable], "user_id")
	_, _, err = m.Create(ctx, parts)
	assert.ErrorIs(t, err, ErrMissingLink)

	assert.Equal(t, "ann@example.com", first.String("email"))
}

func TestCreate_UnknownTable(t *testing.T) {
	m, _ := newTestMapper(t, CategorySchema)
	_, _, err := m.Create(context.Background(), map[string]models.Record{"users": {"email": "x"}})
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestCreate_UndoRemovesEverything(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	_, undo, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)
	require.NoError(t, undo(ctx))

	assert.Zero(t, count(t, fs, models.Users))
	assert.Zero(t, count(t, fs, models.Profiles))
}

// ── Get / List ────────────────────────────────────────────────────────────────

func TestGet(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	created, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)

	got, err := m.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = m.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, fs.RecordStore.Delete(ctx, models.Users, created.String("user_id")))
	_, err = m.Get(ctx, created.ID())
	assert.ErrorIs(t, err, ErrBrokenLink)
}

func TestGet_PrimaryWinsCollisions(t *testing.T) {
	schema := UserProfileSchema
	schema.Links = []Link{{Table: models.Users, ForeignKey: "user_id", Fields: []string{"email", "created_at"}}}
	m, fs := newTestMapper(t, schema)
	ctx := context.Background()

	created, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	_, err = fs.RecordStore.Update(ctx, models.Profiles, created.ID(), models.Record{"created_at": later})
	require.NoError(t, err)

	got, err := m.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, later, got.Time("created_at"))
}

func TestList_SkipsBrokenLinks(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	ann, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)
	bob, _, err := m.Create(ctx, profileParts("bob@example.com", "Bob"))
	require.NoError(t, err)
	_, _, err = m.Create(ctx, profileParts("cleo@example.com", "Cleo"))
	require.NoError(t, err)

	require.NoError(t, fs.RecordStore.Delete(ctx, models.Users, bob.String("user_id")))

	objects, err := m.List(ctx, models.SearchParams{
		Orders: []models.Order{{Field: "display_name"}},
	}.Where("display_name", models.OpIn, []any{"Ann", "Bob"}))
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, ann, objects[0])
}

// ── Update ────────────────────────────────────────────────────────────────────

func TestUpdate_SpansTables(t *testing.T) {
	m, _ := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	created, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)

	m.now = func() time.Time { return testNow.Add(time.Minute) }
	updated, undo, err := m.Update(ctx, created.ID(), map[string]models.Record{
		models.UsersTable:    {"email": "annie@example.com"},
		models.ProfilesTable: {"bio": "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "annie@example.com", updated.String("email"))
	assert.Equal(t, "hi", updated.String("bio"))
	assert.Equal(t, testNow.Add(time.Minute), updated.Time("updated_at"))
	assert.Equal(t, testNow, updated.Time("created_at"))

	require.NoError(t, undo(ctx))
	restored, err := m.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, restored)
}

func TestUpdate_RestoresSecondaryWhenPrimaryFails(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	created, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)

	fs.failOn["update:profiles"] = true
	_, _, err = m.Update(ctx, created.ID(), map[string]models.Record{
		models.UsersTable:    {"email": "annie@example.com"},
		models.ProfilesTable: {"bio": "hi"},
	})
	assert.ErrorIs(t, err, errInjected)

	delete(fs.failOn, "update:profiles")
	got, err := m.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.String("email"))
}

func TestUpdate_NotFound(t *testing.T) {
	m, _ := newTestMapper(t, CategorySchema)
	_, _, err := m.Update(context.Background(), "nope", map[string]models.Record{
		models.CategoriesTable: {"label": "x"},
	})
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

// ── Delete ────────────────────────────────────────────────────────────────────

func TestDelete_RemovesAllAndUndoRecreates(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	created, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)

	deleted, undo, err := m.Delete(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, deleted)
	assert.Zero(t, count(t, fs, models.Users))
	assert.Zero(t, count(t, fs, models.Profiles))

	require.NoError(t, undo(ctx))
	restored, err := m.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, restored)
}

func TestDelete_SecondaryFailureRecreatesPrimary(t *testing.T) {
	m, fs := newTestMapper(t, UserProfileSchema)
	ctx := context.Background()

	created, _, err := m.Create(ctx, profileParts("ann@example.com", "Ann"))
	require.NoError(t, err)

	fs.failOn["delete:users"] = true
	_, _, err = m.Delete(ctx, created.ID())
	assert.ErrorIs(t, err, errInjected)

	got, err := m.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created.ID(), got.ID())
}

func TestDelete_NotFound(t *testing.T) {
	m, _ := newTestMapper(t, MessageSchema)
	_, _, err := m.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
