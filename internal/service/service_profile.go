package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/mapper"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/transaction"
	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
)

type profileService struct {
	store     store.RecordStore
	mappers   mappers
	validator validators.PayloadSegregator

	logger *logger.Logger
}

func NewProfileService(rs store.RecordStore, logger *logger.Logger) ProfileService {
	return newProfileService(rs, logger)
}

func newProfileService(rs store.RecordStore, logger *logger.Logger, opts ...mapper.Option) *profileService {
	return &profileService{
		store:     rs,
		mappers:   newMappers(rs, opts...),
		validator: validators.NewObjectValidator(validators.UserProfileSchema),
		logger:    logger,
	}
}

func (s *profileService) Get(ctx context.Context, id string) (models.UserProfile, error) {
	obj, err := s.mappers.profiles.Get(ctx, id)
	if err != nil {
		return models.UserProfile{}, translate(err)
	}
	return models.UserProfileFromRecord(obj), nil
}

func (s *profileService) List(ctx context.Context, params models.SearchParams) ([]models.UserProfile, error) {
	objects, err := s.mappers.profiles.List(ctx, params)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*profileService.List").Msg("error listing profiles")
		return nil, err
	}
	return models.UserProfilesFromRecords(objects), nil
}

// Update applies a partial update. Email and password changes go to the
// users table; a new password is bcrypt-hashed first.
func (s *profileService) Update(ctx context.Context, caller, id string, payload models.Payload) (models.UserProfile, error) {
	if caller != id {
		return models.UserProfile{}, ErrForbidden
	}

	parts, err := s.validator.Segregate(ctx, payload, validators.ModeUpdate)
	if err != nil {
		return models.UserProfile{}, err
	}
	if err = prepareCredentials(parts); err != nil {
		return models.UserProfile{}, err
	}

	obj, _, err := s.mappers.profiles.Update(ctx, id, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*profileService.Update").Str("id", id).Msg("error updating profile")
		return models.UserProfile{}, translate(err)
	}
	return models.UserProfileFromRecord(obj), nil
}

// Delete removes the profile, its user and the user's refresh tokens.
func (s *profileService) Delete(ctx context.Context, caller, id string) error {
	log := logger.FromContext(ctx)
	if caller != id {
		return ErrForbidden
	}

	err := transaction.ExecTx(ctx, func(ctx context.Context, tx *transaction.Tx) error {
		obj, undo, err := s.mappers.profiles.Delete(ctx, id)
		if err != nil {
			return err
		}
		tx.Add("delete user profile", undo)

		return s.revokeRefreshTokens(ctx, obj.String(validators.FieldUserID))
	})
	if err != nil {
		log.Err(err).Str("func", "*profileService.Delete").Str("id", id).Msg("error deleting profile")
		return translate(err)
	}

	log.Info().Str("func", "*profileService.Delete").Str("id", id).Msg("profile deleted")
	return nil
}

// LinkCategory adds categoryID to the profile's category list. Linking twice
// is a no-op.
func (s *profileService) LinkCategory(ctx context.Context, caller, id, categoryID string) (models.UserProfile, error) {
	if caller != id {
		return models.UserProfile{}, ErrForbidden
	}
	if _, err := s.store.Get(ctx, models.Categories, categoryID); err != nil {
		return models.UserProfile{}, translate(err)
	}

	return s.updateCategories(ctx, id, func(ids []string) []string {
		return withItem(ids, categoryID)
	})
}

// UnlinkCategory removes categoryID from the profile's category list. The
// category itself need not exist any more.
func (s *profileService) UnlinkCategory(ctx context.Context, caller, id, categoryID string) (models.UserProfile, error) {
	if caller != id {
		return models.UserProfile{}, ErrForbidden
	}

	return s.updateCategories(ctx, id, func(ids []string) []string {
		return withoutItem(ids, categoryID)
	})
}

func (s *profileService) updateCategories(ctx context.Context, id string, change func([]string) []string) (models.UserProfile, error) {
	current, err := s.mappers.profiles.Get(ctx, id)
	if err != nil {
		return models.UserProfile{}, translate(err)
	}

	parts := map[string]models.Record{
		models.ProfilesTable: {validators.FieldCategoryIDs: change(current.Strings(validators.FieldCategoryIDs))},
	}
	obj, _, err := s.mappers.profiles.Update(ctx, id, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*profileService.updateCategories").Str("id", id).Msg("error updating profile categories")
		return models.UserProfile{}, translate(err)
	}
	return models.UserProfileFromRecord(obj), nil
}

func (s *profileService) revokeRefreshTokens(ctx context.Context, userID string) error {
	tokens, err := s.store.Read(ctx, models.RefreshTokens, models.SearchParams{}.Where(validators.FieldUserID, models.OpEq, userID))
	if err != nil {
		return fmt.Errorf("error reading refresh tokens: %w", err)
	}
	for _, t := range tokens {
		if err = s.store.Delete(ctx, models.RefreshTokens, t.ID()); err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
	}
	return nil
}
