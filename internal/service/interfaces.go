package service

import (
	"context"

	"github.com/MKhiriev/go-chat-profiles/models"
)

// AuthService registers accounts and manages the access/refresh token pair.
type AuthService interface {
	// Register creates a UserProfile from payload and signs the caller in.
	Register(ctx context.Context, payload models.Payload) (models.UserProfile, models.TokenPair, error)
	// Login checks the credentials and signs the caller in.
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
	// IssueTokens signs an access token and stores a new refresh token.
	IssueTokens(ctx context.Context, userID, profileID string) (models.TokenPair, error)
	// Refresh rotates refreshToken into a new pair.
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
	// Logout revokes refreshToken.
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
	// PurgeExpiredRefreshTokens deletes expired refresh tokens and reports how many.
	PurgeExpiredRefreshTokens(ctx context.Context) (int, error)
}

// ProfileService reads and mutates UserProfiles. Mutations are restricted
// to the owner, identified by the caller's profile id.
type ProfileService interface {
	Get(ctx context.Context, id string) (models.UserProfile, error)
	List(ctx context.Context, params models.SearchParams) ([]models.UserProfile, error)
	Update(ctx context.Context, caller, id string, payload models.Payload) (models.UserProfile, error)
	Delete(ctx context.Context, caller, id string) error

	LinkCategory(ctx context.Context, caller, id, categoryID string) (models.UserProfile, error)
	UnlinkCategory(ctx context.Context, caller, id, categoryID string) (models.UserProfile, error)
}

type CategoryService interface {
	Create(ctx context.Context, payload models.Payload) (models.Category, error)
	Get(ctx context.Context, id string) (models.Category, error)
	List(ctx context.Context, params models.SearchParams) ([]models.Category, error)
	Update(ctx context.Context, id string, payload models.Payload) (models.Category, error)
	Delete(ctx context.Context, id string) error

	AddConversation(ctx context.Context, caller, id, conversationID string) (models.Category, error)
	RemoveConversation(ctx context.Context, caller, id, conversationID string) (models.Category, error)
}

// ConversationService manages conversations. Every operation requires the
// caller to participate in the conversation.
type ConversationService interface {
	Create(ctx context.Context, caller string, payload models.Payload) (models.Conversation, error)
	Get(ctx context.Context, caller, id string) (models.ConversationView, error)
	// List returns the conversations the caller participates in.
	List(ctx context.Context, caller string, params models.SearchParams) ([]models.Conversation, error)
	Update(ctx context.Context, caller, id string, payload models.Payload) (models.Conversation, error)
	// Delete removes the conversation, its messages and its category links.
	Delete(ctx context.Context, caller, id string) error
}

type MessageService interface {
	Send(ctx context.Context, caller string, payload models.Payload) (models.Message, error)
	Get(ctx context.Context, caller, id string) (models.Message, error)
	// List returns the messages of the conversation named by the
	// conversation_id filter of params.
	List(ctx context.Context, caller string, params models.SearchParams) ([]models.Message, error)
	Update(ctx context.Context, caller, id string, payload models.Payload) (models.Message, error)
	MarkDelivered(ctx context.Context, caller, id string) (models.Message, error)
	Delete(ctx context.Context, caller, id string) error
}

// AppInfoService reports the build version and the store health.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	Ping(ctx context.Context) error
}
