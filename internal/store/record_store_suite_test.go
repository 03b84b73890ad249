package store

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-chat-profiles/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var suiteNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s RecordStore, id, email string) models.Record {
	t.Helper()
	rec, err := s.Create(context.Background(), models.Users, models.Record{
		"id":            id,
		"email":         email,
		"password_hash": "hash-" + id,
		"created_at":    suiteNow,
	})
	require.NoError(t, err)
	return rec
}

func seedProfile(t *testing.T, s RecordStore, id, userID, name string, categories []string, offset time.Duration) models.Record {
	t.Helper()
	rec, err := s.Create(context.Background(), models.Profiles, models.Record{
		"id":           id,
		"user_id":      userID,
		"display_name": name,
		"bio":          "",
		"avatar_url":   "",
		"attributes":   map[string]any{"lang": "en"},
		"category_ids": categories,
		"created_at":   suiteNow.Add(offset),
		"updated_at":   suiteNow.Add(offset),
	})
	require.NoError(t, err)
	return rec
}

func ids(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

// runRecordStoreSuite checks the behaviour every RecordStore must share.
func runRecordStoreSuite(t *testing.T, newStore func(t *testing.T) RecordStore) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		created := seedUser(t, s, "u1", "ann@example.com")
		assert.Equal(t, "ann@example.com", created.String("email"))
		assert.True(t, suiteNow.Equal(created.Time("created_at")))

		got, err := s.Get(ctx, models.Users, "u1")
		require.NoError(t, err)
		assert.Equal(t, "hash-u1", got.String("password_hash"))

		_, err = s.Get(ctx, models.Users, "nope")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("list and object columns round trip", func(t *testing.T) {
		s := newStore(t)
		seedUser(t, s, "u1", "ann@example.com")
		seedProfile(t, s, "p1", "u1", "Ann", []string{"c1", "c2"}, 0)

		got, err := s.Get(ctx, models.Profiles, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, got.Strings("category_ids"))
		assert.Equal(t, map[string]any{"lang": "en"}, got.Object("attributes"))
	})

	t.Run("unique violations", func(t *testing.T) {
		s := newStore(t)
		seedUser(t, s, "u1", "ann@example.com")

		_, err := s.Create(ctx, models.Users, models.Record{
			"id": "u2", "email": "ann@example.com", "password_hash": "x", "created_at": suiteNow,
		})
		assert.ErrorIs(t, err, ErrRecordAlreadyExists)

		_, err = s.Create(ctx, models.Users, models.Record{
			"id": "u1", "email": "other@example.com", "password_hash": "x", "created_at": suiteNow,
		})
		assert.ErrorIs(t, err, ErrRecordAlreadyExists)

		seedUser(t, s, "u3", "bob@example.com")
		_, err = s.Update(ctx, models.Users, "u3", models.Record{"email": "ann@example.com"})
		assert.ErrorIs(t, err, ErrRecordAlreadyExists)
	})

	t.Run("update", func(t *testing.T) {
		s := newStore(t)
		seedUser(t, s, "u1", "ann@example.com")
		seedProfile(t, s, "p1", "u1", "Ann", []string{}, 0)

		updated, err := s.Update(ctx, models.Profiles, "p1", models.Record{
			"display_name": "Annie",
			"category_ids": []string{"c9"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Annie", updated.String("display_name"))
		assert.Equal(t, []string{"c9"}, updated.Strings("category_ids"))
		assert.Equal(t, "u1", updated.String("user_id"))

		_, err = s.Update(ctx, models.Profiles, "missing", models.Record{"bio": "x"})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("nullable column", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, models.Conversations, models.Record{
			"id": "c1", "title": "t", "participant_ids": []string{"p1", "p2"},
			"created_at": suiteNow, "updated_at": suiteNow,
		})
		require.NoError(t, err)

		msg, err := s.Create(ctx, models.Messages, models.Record{
			"id": "m1", "conversation_id": "c1", "sender_id": "p1", "recipient_id": "p2",
			"text": "hi", "created_at": suiteNow,
		})
		require.NoError(t, err)
		assert.Nil(t, msg.TimePtr("delivered_at"))

		delivered := suiteNow.Add(time.Minute)
		msg, err = s.Update(ctx, models.Messages, "m1", models.Record{"delivered_at": delivered})
		require.NoError(t, err)
		require.NotNil(t, msg.TimePtr("delivered_at"))
		assert.True(t, delivered.Equal(*msg.TimePtr("delivered_at")))
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		seedUser(t, s, "u1", "ann@example.com")

		require.NoError(t, s.Delete(ctx, models.Users, "u1"))
		_, err := s.Get(ctx, models.Users, "u1")
		assert.ErrorIs(t, err, ErrRecordNotFound)
		assert.ErrorIs(t, s.Delete(ctx, models.Users, "u1"), ErrRecordNotFound)
	})

	t.Run("read filters order and paging", func(t *testing.T) {
		s := newStore(t)
		for i, name := range []string{"Ann", "Bob", "Andy", "Cleo"} {
			uid := "u" + name
			seedUser(t, s, uid, name+"@example.com")
			categories := []string{}
			if i%2 == 0 {
				categories = []string{"work", "home"}
			}
			seedProfile(t, s, "p"+name, uid, name, categories, time.Duration(i)*time.Hour)
		}

		byName := models.SearchParams{Orders: []models.Order{{Field: "display_name"}}}

		all, err := s.Read(ctx, models.Profiles, byName)
		require.NoError(t, err)
		assert.Equal(t, []string{"pAndy", "pAnn", "pBob", "pCleo"}, ids(all))

		tests := []struct {
			name   string
			params models.SearchParams
			want   []string
		}{
			{name: "eq", params: byName.Where("display_name", models.OpEq, "Bob"), want: []string{"pBob"}},
			{name: "neq", params: byName.Where("display_name", models.OpNeq, "Bob"), want: []string{"pAndy", "pAnn", "pCleo"}},
			{name: "like", params: byName.Where("display_name", models.OpLike, "An%"), want: []string{"pAndy", "pAnn"}},
			{name: "in", params: byName.Where("display_name", models.OpIn, []any{"Cleo", "Ann"}), want: []string{"pAnn", "pCleo"}},
			{name: "contains", params: byName.Where("category_ids", models.OpContains, "home"), want: []string{"pAndy", "pAnn"}},
			{name: "contains percent is literal", params: byName.Where("category_ids", models.OpContains, "%"), want: []string{}},
			{name: "contains underscore is literal", params: byName.Where("category_ids", models.OpContains, "h_me"), want: []string{}},
			{name: "contains is case sensitive", params: byName.Where("category_ids", models.OpContains, "HOME"), want: []string{}},
			{name: "contains matches whole items", params: byName.Where("category_ids", models.OpContains, `work","home`), want: []string{}},
			{name: "contains partial item", params: byName.Where("category_ids", models.OpContains, "hom"), want: []string{}},
			{name: "gte time", params: byName.Where("created_at", models.OpGte, suiteNow.Add(2*time.Hour)), want: []string{"pAndy", "pCleo"}},
			{name: "lt time", params: byName.Where("created_at", models.OpLt, suiteNow.Add(time.Hour)), want: []string{"pAnn"}},
			{
				name:   "order desc with paging",
				params: models.SearchParams{Orders: []models.Order{{Field: "created_at", Desc: true}}, Limit: 2, Offset: 1},
				want:   []string{"pAndy", "pBob"},
			},
			{name: "offset without limit", params: models.SearchParams{Orders: byName.Orders, Offset: 3}, want: []string{"pCleo"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.Read(ctx, models.Profiles, tt.params)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(got))
			})
		}
	})

	t.Run("read rejects unknown columns", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Read(ctx, models.Users, models.SearchParams{}.Where("nope", models.OpEq, "x"))
		assert.ErrorIs(t, err, ErrInvalidFilter)

		_, err = s.Read(ctx, models.Users, models.SearchParams{Orders: []models.Order{{Field: "nope"}}})
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}
