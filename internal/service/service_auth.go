package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/mapper"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/transaction"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
	"golang.org/x/crypto/bcrypt"
)

// refreshTokenSize is the number of random bytes of a refresh token.
const refreshTokenSize = 32

// authService is the concrete implementation of AuthService.
// It registers UserProfiles, verifies bcrypt password hashes and manages the
// token pair: a signed access JWT and an opaque refresh token of which only
// an HMAC digest is persisted.
type authService struct {
	// store holds users, profiles and refresh tokens.
	store store.RecordStore

	// profiles composes UserProfiles out of the profiles and users tables.
	profiles *mapper.Mapper

	// validator segregates registration payloads into per-table records.
	validator validators.PayloadSegregator

	// credentials checks login requests before any lookup happens.
	credentials validators.Validator

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// accessTokenDuration controls how long a newly issued JWT remains valid.
	accessTokenDuration time.Duration

	// refreshTokenDuration controls how long a refresh token remains valid.
	refreshTokenDuration time.Duration

	// refreshTokenHashKey is the HMAC secret applied to refresh tokens before
	// they are stored or looked up.
	refreshTokenHashKey string

	ids utils.IDGenerator
	now func() time.Time

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService backed by rs and populated
// with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(rs store.RecordStore, cfg config.App, logger *logger.Logger) AuthService {
	return newAuthService(rs, cfg, logger)
}

func newAuthService(rs store.RecordStore, cfg config.App, logger *logger.Logger, opts ...mapper.Option) *authService {
	hashKey := cfg.RefreshTokenHashKey
	if hashKey == "" {
		hashKey = cfg.TokenSignKey
	}

	return &authService{
		store:                rs,
		profiles:             mapper.New(mapper.UserProfileSchema, rs, opts...),
		validator:            validators.NewObjectValidator(validators.UserProfileSchema),
		credentials:          validators.NewCredentialsValidator(),
		tokenSignKey:         cfg.TokenSignKey,
		tokenIssuer:          cfg.TokenIssuer,
		accessTokenDuration:  cfg.AccessTokenDuration,
		refreshTokenDuration: cfg.RefreshTokenDuration,
		refreshTokenHashKey:  hashKey,
		ids:                  utils.NewUUIDGenerator(),
		now:                  utcNow,
		logger:               logger,
	}
}

// Register creates a UserProfile and signs the new user in.
//
// The payload is validated against the UserProfile schema, the password is
// replaced by its bcrypt hash and the email is lower-cased. The users row is
// created before the profiles row. When issuing the tokens fails, both rows
// are deleted again.
//
// Returns:
//   - a *validators.ValidationError for invalid payloads;
//   - ErrConflict if the email is already registered;
//   - ErrTokenCreationFailed if the access token cannot be signed.
func (a *authService) Register(ctx context.Context, payload models.Payload) (models.UserProfile, models.TokenPair, error) {
	log := logger.FromContext(ctx)

	parts, err := a.validator.Segregate(ctx, payload, validators.ModeCreate)
	if err != nil {
		return models.UserProfile{}, models.TokenPair{}, err
	}
	if err = prepareCredentials(parts); err != nil {
		return models.UserProfile{}, models.TokenPair{}, err
	}

	var (
		profile models.UserProfile
		pair    models.TokenPair
	)
	err = transaction.ExecTx(ctx, func(ctx context.Context, tx *transaction.Tx) error {
		obj, undo, err := a.profiles.Create(ctx, parts)
		if err != nil {
			return err
		}
		tx.Add("create user profile", undo)
		profile = models.UserProfileFromRecord(obj)

		pair, err = a.IssueTokens(ctx, profile.UserID, profile.ID)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Msg("user profile registration ended with error")
		return models.UserProfile{}, models.TokenPair{}, translate(err)
	}

	log.Info().Str("func", "*authService.Register").Str("profile_id", profile.ID).Msg("user profile registered")
	return profile, pair, nil
}

// Login authenticates a user by email and password and issues a token pair.
//
// Unknown emails and wrong passwords both yield ErrInvalidCredentials so the
// response does not reveal which accounts exist.
func (a *authService) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	if err := a.credentials.Validate(ctx, models.LoginRequest{Email: email, Password: password}); err != nil {
		return models.TokenPair{}, err
	}

	rec, err := findOne(ctx, a.store, models.Users, validators.FieldEmail, normalizeEmail(email))
	if errors.Is(err, store.ErrRecordNotFound) {
		log.Warn().Str("func", "*authService.Login").Msg("login attempt for unknown email")
		return models.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Msg("user search by email failed")
		return models.TokenPair{}, fmt.Errorf("user search by email failed: %w", err)
	}

	user := models.UserFromRecord(rec)
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("func", "*authService.Login").Str("user_id", user.ID).Msg("wrong password")
		return models.TokenPair{}, ErrInvalidCredentials
	}

	profile, err := findOne(ctx, a.store, models.Profiles, validators.FieldUserID, user.ID)
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Str("user_id", user.ID).Msg("profile search by user failed")
		return models.TokenPair{}, translate(err)
	}

	return a.IssueTokens(ctx, user.ID, profile.ID())
}

// IssueTokens signs an access JWT bound to userID and profileID and stores a
// fresh refresh token for userID.
//
// Returns ErrTokenCreationFailed wrapping the cause if signing fails.
func (a *authService) IssueTokens(ctx context.Context, userID, profileID string) (models.TokenPair, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, userID, profileID, a.accessTokenDuration, a.tokenSignKey)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	raw, err := utils.NewOpaqueToken(refreshTokenSize)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	now := a.now()
	refresh := models.RefreshToken{
		ID:        a.ids.Generate(),
		UserID:    userID,
		TokenHash: utils.HashString(raw, a.refreshTokenHashKey),
		ExpiresAt: now.Add(a.refreshTokenDuration),
		CreatedAt: now,
	}
	if _, err = a.store.Create(ctx, models.RefreshTokens, refresh.Record()); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*authService.IssueTokens").Str("user_id", userID).Msg("error storing refresh token")
		return models.TokenPair{}, fmt.Errorf("error storing refresh token: %w", err)
	}

	return models.TokenPair{AccessToken: &token, RefreshToken: raw, RefreshExpiresAt: refresh.ExpiresAt}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// deleted before the new one is issued, so each refresh token works once.
// If issuing fails the old token is restored.
//
// Unknown, already used or expired tokens, and tokens of deleted accounts,
// yield ErrRefreshTokenInvalid.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	stored, err := a.lookupRefreshToken(ctx, refreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	if stored.Expired(a.now()) {
		if err = a.store.Delete(ctx, models.RefreshTokens, stored.ID); err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			log.Err(err).Str("func", "*authService.Refresh").Str("user_id", stored.UserID).Msg("error deleting expired refresh token")
		}
		return models.TokenPair{}, ErrRefreshTokenInvalid
	}

	profile, err := findOne(ctx, a.store, models.Profiles, validators.FieldUserID, stored.UserID)
	if errors.Is(err, store.ErrRecordNotFound) {
		log.Warn().Str("func", "*authService.Refresh").Str("user_id", stored.UserID).Msg("refresh token of a deleted account")
		return models.TokenPair{}, ErrRefreshTokenInvalid
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("profile search by user failed: %w", err)
	}

	var pair models.TokenPair
	err = transaction.ExecTx(ctx, func(ctx context.Context, tx *transaction.Tx) error {
		err := tx.Do(ctx, transaction.Step{
			Name: "revoke refresh token",
			Do: func(ctx context.Context) error {
				return a.store.Delete(ctx, models.RefreshTokens, stored.ID)
			},
			Undo: func(ctx context.Context) error {
				_, err := a.store.Create(ctx, models.RefreshTokens, stored.Record())
				return err
			},
		})
		if err != nil {
			return err
		}

		pair, err = a.IssueTokens(ctx, stored.UserID, profile.ID())
		return err
	})
	if errors.Is(err, store.ErrRecordNotFound) {
		log.Warn().Str("func", "*authService.Refresh").Str("user_id", stored.UserID).Msg("refresh token already used")
		return models.TokenPair{}, ErrRefreshTokenInvalid
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.Refresh").Str("user_id", stored.UserID).Msg("error rotating refresh token")
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Logout revokes refreshToken. Unknown tokens are ignored.
func (a *authService) Logout(ctx context.Context, refreshToken string) error {
	stored, err := a.lookupRefreshToken(ctx, refreshToken)
	if errors.Is(err, ErrRefreshTokenInvalid) {
		return nil
	}
	if err != nil {
		return err
	}

	if err = a.store.Delete(ctx, models.RefreshTokens, stored.ID); err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		logger.FromContext(ctx).Err(err).Str("func", "*authService.Logout").Str("user_id", stored.UserID).Msg("error revoking refresh token")
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature and
// the issuer claim. Any validation failure (expired, wrong issuer, malformed)
// is normalised to ErrTokenIsExpiredOrInvalid so that callers do not need to
// inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// PurgeExpiredRefreshTokens deletes every refresh token that expired before
// now. Tokens deleted concurrently are not counted.
func (a *authService) PurgeExpiredRefreshTokens(ctx context.Context) (int, error) {
	expired, err := a.store.Read(ctx, models.RefreshTokens,
		models.SearchParams{}.Where("expires_at", models.OpLte, a.now()))
	if err != nil {
		return 0, fmt.Errorf("error reading expired refresh tokens: %w", err)
	}

	var (
		purged int
		errs   []error
	)
	for _, rec := range expired {
		err := a.store.Delete(ctx, models.RefreshTokens, rec.ID())
		switch {
		case err == nil:
			purged++
		case errors.Is(err, store.ErrRecordNotFound):
		default:
			errs = append(errs, err)
		}
	}

	return purged, errors.Join(errs...)
}

func (a *authService) lookupRefreshToken(ctx context.Context, refreshToken string) (models.RefreshToken, error) {
	if refreshToken == "" {
		return models.RefreshToken{}, ErrRefreshTokenInvalid
	}

	rec, err := findOne(ctx, a.store, models.RefreshTokens, "token_hash", utils.HashString(refreshToken, a.refreshTokenHashKey))
	if errors.Is(err, store.ErrRecordNotFound) {
		return models.RefreshToken{}, ErrRefreshTokenInvalid
	}
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("refresh token lookup failed: %w", err)
	}

	return models.RefreshTokenFromRecord(rec), nil
}
