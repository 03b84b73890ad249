package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/mapper"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

type Services struct {
	AppInfoService      AppInfoService
	AuthService         AuthService
	ProfileService      ProfileService
	CategoryService     CategoryService
	ConversationService ConversationService
	MessageService      MessageService
}

// NewServices wires every service to the configured record store.
func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(storages.RecordStore, cfg.App, logger)
	if err != nil {
		return nil, err
	}

	rs := storages.RecordStore
	return &Services{
		AppInfoService:      appInfo,
		AuthService:         NewAuthService(rs, cfg.App, logger),
		ProfileService:      NewProfileService(rs, logger),
		CategoryService:     NewCategoryService(rs, logger),
		ConversationService: NewConversationService(rs, logger),
		MessageService:      NewMessageService(rs, logger),
	}, nil
}

// mappers holds one object mapper per schema over a shared store.
type mappers struct {
	profiles      *mapper.Mapper
	categories    *mapper.Mapper
	conversations *mapper.Mapper
	messages      *mapper.Mapper
}

func newMappers(rs store.RecordStore, opts ...mapper.Option) mappers {
	return mappers{
		profiles:      mapper.New(mapper.UserProfileSchema, rs, opts...),
		categories:    mapper.New(mapper.CategorySchema, rs, opts...),
		conversations: mapper.New(mapper.ConversationSchema, rs, opts...),
		messages:      mapper.New(mapper.MessageSchema, rs, opts...),
	}
}

// findOne returns the first record of table whose field equals value.
func findOne(ctx context.Context, rs store.RecordStore, table models.Table, field string, value any) (models.Record, error) {
	records, err := rs.Read(ctx, table, models.SearchParams{Limit: 1}.Where(field, models.OpEq, value))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s.%s = %v", store.ErrRecordNotFound, table.Name, field, value)
	}
	return records[0], nil
}

// prepareCredentials lower-cases the email and replaces the plain password
// of the users part with its bcrypt hash.
func prepareCredentials(parts map[string]models.Record) error {
	users, ok := parts[models.UsersTable]
	if !ok {
		return nil
	}
	if email, ok := users[validators.FieldEmail].(string); ok {
		users[validators.FieldEmail] = normalizeEmail(email)
	}
	plain, ok := users[validators.PasswordColumn].(string)
	if !ok {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	users[validators.PasswordColumn] = string(hash)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// withItem returns list with item appended unless already present.
func withItem(list []string, item string) []string {
	for _, v := range list {
		if v == item {
			return list
		}
	}
	return append(append([]string{}, list...), item)
}

// withoutItem returns list without any occurrence of item.
func withoutItem(list []string, item string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}

func anyList(list []string) []any {
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = v
	}
	return out
}

func utcNow() time.Time {
	return time.Now().UTC()
}
