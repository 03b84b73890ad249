package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-chat-profiles/internal/transaction"
	"github.com/MKhiriev/go-chat-profiles/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	work, err := f.categories.Create(ctx, models.Payload{"label": "work"})
	require.NoError(t, err)
	assert.NotEmpty(t, work.ID)
	assert.Equal(t, []string{}, work.ConversationIDs)

	_, err = f.categories.Create(ctx, models.Payload{"label": "work"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.categories.Create(ctx, models.Payload{"label": "friends"})
	require.NoError(t, err)

	got, err := f.categories.Get(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, work, got)

	list, err := f.categories.List(ctx, models.SearchParams{Orders: []models.Order{{Field: "label", Desc: true}}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "work", list[0].Label)

	renamed, err := f.categories.Update(ctx, work.ID, models.Payload{"label": "office"})
	require.NoError(t, err)
	assert.Equal(t, "office", renamed.Label)

	_, err = f.categories.Update(ctx, "missing", models.Payload{"label": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.categories.Delete(ctx, work.ID))
	_, err = f.categories.Get(ctx, work.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.categories.Delete(ctx, work.ID), ErrNotFound)
}

func TestCategoryService_DeleteUnlinksProfiles(t *testing.T) {
	f := newFixture(t)
	ann, _ := f.register(t, "ann@example.com", "Ann")
	ctx := context.Background()

	work, err := f.categories.Create(ctx, models.Payload{"label": "work"})
	require.NoError(t, err)
	_, err = f.profiles.LinkCategory(ctx, ann.ID, ann.ID, work.ID)
	require.NoError(t, err)

	require.NoError(t, f.categories.Delete(ctx, work.ID))

	profile, err := f.profiles.Get(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.CategoryIDs)
}

func TestCategoryService_DeleteFailureRestoresLinks(t *testing.T) {
	f := newFixture(t)
	ann, _ := f.register(t, "ann@example.com", "Ann")
	ctx := context.Background()

	work, err := f.categories.Create(ctx, models.Payload{"label": "work"})
	require.NoError(t, err)
	_, err = f.profiles.LinkCategory(ctx, ann.ID, ann.ID, work.ID)
	require.NoError(t, err)

	f.store.failOn["delete:categories"] = true
	err = f.categories.Delete(ctx, work.ID)
	assert.ErrorIs(t, err, errInjected)
	assert.ErrorIs(t, err, transaction.ErrRolledBack)

	profile, err := f.profiles.Get(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{work.ID}, profile.CategoryIDs)
}

func TestCategoryService_Conversations(t *testing.T) {
	f := newFixture(t)
	ann, _ := f.register(t, "ann@example.com", "Ann")
	bob, _ := f.register(t, "bob@example.com", "Bob")
	eve, _ := f.register(t, "eve@example.com", "Eve")
	ctx := context.Background()

	work, err := f.categories.Create(ctx, models.Payload{"label": "work"})
	require.NoError(t, err)
	conv := f.conversation(t, ann.ID, "standup", bob.ID)

	added, err := f.categories.AddConversation(ctx, bob.ID, work.ID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{conv.ID}, added.ConversationIDs)

	_, err = f.categories.AddConversation(ctx, eve.ID, work.ID, conv.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.categories.AddConversation(ctx, ann.ID, work.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.categories.RemoveConversation(ctx, eve.ID, work.ID, conv.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	removed, err := f.categories.RemoveConversation(ctx, ann.ID, work.ID, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, removed.ConversationIDs)

	// dangling ids can be cleaned up by anyone
	_, err = f.mem.Update(ctx, models.Categories, work.ID, models.Record{"conversation_ids": []string{"gone"}})
	require.NoError(t, err)
	removed, err = f.categories.RemoveConversation(ctx, eve.ID, work.ID, "gone")
	require.NoError(t, err)
	assert.Empty(t, removed.ConversationIDs)
}
