package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/mapper"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/transaction"
	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
)

// categoryService manages the shared category catalogue. Labels are unique.
type categoryService struct {
	store     store.RecordStore
	mappers   mappers
	validator validators.PayloadSegregator

	logger *logger.Logger
}

func NewCategoryService(rs store.RecordStore, logger *logger.Logger) CategoryService {
	return newCategoryService(rs, logger)
}

func newCategoryService(rs store.RecordStore, logger *logger.Logger, opts ...mapper.Option) *categoryService {
	return &categoryService{
		store:     rs,
		mappers:   newMappers(rs, opts...),
		validator: validators.NewObjectValidator(validators.CategorySchema),
		logger:    logger,
	}
}

func (s *categoryService) Create(ctx context.Context, payload models.Payload) (models.Category, error) {
	parts, err := s.validator.Segregate(ctx, payload, validators.ModeCreate)
	if err != nil {
		return models.Category{}, err
	}

	obj, _, err := s.mappers.categories.Create(ctx, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*categoryService.Create").Msg("error creating category")
		return models.Category{}, translate(err)
	}
	return models.CategoryFromRecord(obj), nil
}

func (s *categoryService) Get(ctx context.Context, id string) (models.Category, error) {
	obj, err := s.mappers.categories.Get(ctx, id)
	if err != nil {
		return models.Category{}, translate(err)
	}
	return models.CategoryFromRecord(obj), nil
}

func (s *categoryService) List(ctx context.Context, params models.SearchParams) ([]models.Category, error) {
	objects, err := s.mappers.categories.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return models.CategoriesFromRecords(objects), nil
}

func (s *categoryService) Update(ctx context.Context, id string, payload models.Payload) (models.Category, error) {
	parts, err := s.validator.Segregate(ctx, payload, validators.ModeUpdate)
	if err != nil {
		return models.Category{}, err
	}

	obj, _, err := s.mappers.categories.Update(ctx, id, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*categoryService.Update").Str("id", id).Msg("error updating category")
		return models.Category{}, translate(err)
	}
	return models.CategoryFromRecord(obj), nil
}

// Delete unlinks the category from every profile and then deletes it.
// The profile links are restored if the delete fails.
func (s *categoryService) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	err := transaction.ExecTx(ctx, func(ctx context.Context, tx *transaction.Tx) error {
		linked, err := s.store.Read(ctx, models.Profiles,
			models.SearchParams{}.Where(validators.FieldCategoryIDs, models.OpContains, id))
		if err != nil {
			return err
		}

		for _, p := range linked {
			parts := map[string]models.Record{
				models.ProfilesTable: {validators.FieldCategoryIDs: withoutItem(p.Strings(validators.FieldCategoryIDs), id)},
			}
			_, undo, err := s.mappers.profiles.Update(ctx, p.ID(), parts)
			if err != nil {
				return err
			}
			tx.Add("unlink category from profile "+p.ID(), undo)
		}

		_, undo, err := s.mappers.categories.Delete(ctx, id)
		if err != nil {
			return err
		}
		tx.Add("delete category", undo)
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*categoryService.Delete").Str("id", id).Msg("error deleting category")
		return translate(err)
	}
	return nil
}

// AddConversation files conversationID under the category. The caller must
// participate in the conversation.
func (s *categoryService) AddConversation(ctx context.Context, caller, id, conversationID string) (models.Category, error) {
	rec, err := s.store.Get(ctx, models.Conversations, conversationID)
	if err != nil {
		return models.Category{}, translate(err)
	}
	if !models.ConversationFromRecord(rec).HasParticipant(caller) {
		return models.Category{}, ErrForbidden
	}

	return s.updateConversations(ctx, id, func(ids []string) []string {
		return withItem(ids, conversationID)
	})
}

// RemoveConversation takes conversationID out of the category. Conversations
// that no longer exist can be removed by anyone.
func (s *categoryService) RemoveConversation(ctx context.Context, caller, id, conversationID string) (models.Category, error) {
	rec, err := s.store.Get(ctx, models.Conversations, conversationID)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
	case err != nil:
		return models.Category{}, err
	case !models.ConversationFromRecord(rec).HasParticipant(caller):
		return models.Category{}, ErrForbidden
	}

	return s.updateConversations(ctx, id, func(ids []string) []string {
		return withoutItem(ids, conversationID)
	})
}

func (s *categoryService) updateConversations(ctx context.Context, id string, change func([]string) []string) (models.Category, error) {
	current, err := s.mappers.categories.Get(ctx, id)
	if err != nil {
		return models.Category{}, translate(err)
	}

	parts := map[string]models.Record{
		models.CategoriesTable: {validators.FieldConversations: change(current.Strings(validators.FieldConversations))},
	}
	obj, _, err := s.mappers.categories.Update(ctx, id, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*categoryService.updateConversations").Str("id", id).Msg("error updating category conversations")
		return models.Category{}, translate(err)
	}
	return models.CategoryFromRecord(obj), nil
}
