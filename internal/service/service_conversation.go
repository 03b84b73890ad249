// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/mapper"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/transaction"
	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
)

type conversationService struct {
	store     store.RecordStore
	mappers   mappers
	validator validators.PayloadSegregator

	logger *logger.Logger
}

func NewConversationService(rs store.RecordStore, logger *logger.Logger) ConversationService {
	return newConversationService(rs, logger)
}

func newConversationService(rs store.RecordStore, logger *logger.Logger, opts ...mapper.Option) *conversationService {
	return &conversationService{
		store:     rs,
		mappers:   newMappers(rs, opts...),
		validator: validators.NewObjectValidator(validators.ConversationSchema),
		logger:    logger,
	}
}

// Create starts a conversation. The caller is always the first participant;
// every other participant must be an existing profile.
func (s *conversationService) Create(ctx context.Context, caller string, payload models.Payload) (models.Conversation, error) {
	parts, err := s.validator.Segregate(ctx, payload, validators.ModeCreate)
	if err != nil {
		return models.Conversation{}, err
	}

	conv := parts[models.ConversationsTable]
	participants := []string{caller}
	for _, id := range conv.Strings(validators.FieldParticipantIDs) {
		participants = withItem(participants, id)
	}
	if err = s.checkProfilesExist(ctx, participants); err != nil {
		return models.Conversation{}, err
	}
	conv[validators.FieldParticipantIDs] = participants

	obj, _, err := s.mappers.conversations.Create(ctx, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*conversationService.Create").Msg("error creating conversation")
		return models.Conversation{}, translate(err)
	}
	return models.ConversationFromRecord(obj), nil
}

// Get returns the conversation with its participant profiles (in participant
// order, deleted profiles left out) and its messages, oldest first.
func (s *conversationService) Get(ctx context.Context, caller, id string) (models.ConversationView, error) {
	conv, err := s.load(ctx, caller, id)
	if err != nil {
		return models.ConversationView{}, err
	}

	profiles, err := s.mappers.profiles.List(ctx,
		models.SearchParams{}.Where(validators.FieldID, models.OpIn, anyList(conv.ParticipantIDs)))
	if err != nil {
		return models.ConversationView{}, fmt.Errorf("error loading participants: %w", err)
	}
	byID := make(map[string]models.UserProfile, len(profiles))
	for _, p := range models.UserProfilesFromRecords(profiles) {
		byID[p.ID] = p
	}
	participants := make([]models.UserProfile, 0, len(conv.ParticipantIDs))
	for _, pid := range conv.ParticipantIDs {
		if p, ok := byID[pid]; ok {
			participants = append(participants, p)
		}
	}

	messages, err := s.mappers.messages.List(ctx, models.SearchParams{
		Orders: []models.Order{{Field: validators.FieldCreatedAt}, {Field: validators.FieldID}},
	}.Where(validators.FieldConversationID, models.OpEq, id))
	if err != nil {
		return models.ConversationView{}, fmt.Errorf("error loading messages: %w", err)
	}

	return models.ConversationView{
		Conversation: conv,
		Participants: participants,
		Messages:     models.MessagesFromRecords(messages),
	}, nil
}

func (s *conversationService) List(ctx context.Context, caller string, params models.SearchParams) ([]models.Conversation, error) {
	objects, err := s.mappers.conversations.List(ctx, params.Where(validators.FieldParticipantIDs, models.OpContains, caller))
	if err != nil {
		return nil, err
	}
	return models.ConversationsFromRecords(objects), nil
}

// Update changes the title. Participants cannot be changed.
func (s *conversationService) Update(ctx context.Context, caller, id string, payload models.Payload) (models.Conversation, error) {
	if _, err := s.load(ctx, caller, id); err != nil {
		return models.Conversation{}, err
	}

	parts, err := s.validator.Segregate(ctx, payload, validators.ModeUpdate)
	if err != nil {
		return models.Conversation{}, err
	}

	obj, _, err := s.mappers.conversations.Update(ctx, id, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*conversationService.Update").Str("id", id).Msg("error updating conversation")
		return models.Conversation{}, translate(err)
	}
	return models.ConversationFromRecord(obj), nil
}

// Delete removes the messages of the conversation, takes it out of every
// category and finally deletes it. Everything done so far is undone when a
// step fails.
func (s *conversationService) Delete(ctx context.Context, caller, id string) error {
	log := logger.FromContext(ctx)
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}

	err := transaction.ExecTx(ctx, func(ctx context.Context, tx *transaction.Tx) error {
		messages, err := s.store.Read(ctx, models.Messages,
			models.SearchParams{}.Where(validators.FieldConversationID, models.OpEq, id))
		if err != nil {
			return err
		}
		for _, m := range messages {
			_, undo, err := s.mappers.messages.Delete(ctx, m.ID())
			if err != nil {
				return err
			}
			tx.Add("delete message "+m.ID(), undo)
		}

		categories, err := s.store.Read(ctx, models.Categories,
			models.SearchParams{}.Where(validators.FieldConversations, models.OpContains, id))
		if err != nil {
			return err
		}
		for _, c := range categories {
			parts := map[string]models.Record{
				models.CategoriesTable: {validators.FieldConversations: withoutItem(c.Strings(validators.FieldConversations), id)},
			}
			_, undo, err := s.mappers.categories.Update(ctx, c.ID(), parts)
			if err != nil {
				return err
			}
			tx.Add("unlink conversation from category "+c.ID(), undo)
		}

		_, undo, err := s.mappers.conversations.Delete(ctx, id)
		if err != nil {
			return err
		}
		tx.Add("delete conversation", undo)
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*conversationService.Delete").Str("id", id).Msg("error deleting conversation")
		return translate(err)
	}

	log.Info().Str("func", "*conversationService.Delete").Str("id", id).Msg("conversation deleted")
	return nil
}

// load returns the conversation if the caller participates in it.
func (s *conversationService) load(ctx context.Context, caller, id string) (models.Conversation, error) {
	obj, err := s.mappers.conversations.Get(ctx, id)
	if err != nil {
		return models.Conversation{}, translate(err)
	}
	conv := models.ConversationFromRecord(obj)
	if !conv.HasParticipant(caller) {
		return models.Conversation{}, ErrForbidden
	}
	return conv, nil
}

func (s *conversationService) checkProfilesExist(ctx context.Context, ids []string) error {
	found, err := s.store.Read(ctx, models.Profiles,
		models.SearchParams{}.Where(validators.FieldID, models.OpIn, anyList(ids)))
	if err != nil {
		return fmt.Errorf("error checking participants: %w", err)
	}

	known := make(map[string]bool, len(found))
	for _, p := range found {
		known[p.ID()] = true
	}
	for _, id := range ids {
		if !known[id] {
			return validators.NewValidationError(validators.FieldParticipantIDs, fmt.Sprintf("profile %q does not exist", id))
		}
	}
	return nil
}
