package http

import (
	"context"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/service"
	"github.com/MKhiriev/go-chat-profiles/models"
)

// ---- Mock: AuthService ----

type mockAuthService struct {
	registerFn   func(ctx context.Context, payload models.Payload) (models.UserProfile, models.TokenPair, error)
	loginFn      func(ctx context.Context, email, password string) (models.TokenPair, error)
	refreshFn    func(ctx context.Context, refreshToken string) (models.TokenPair, error)
	logoutFn     func(ctx context.Context, refreshToken string) error
	parseTokenFn func(ctx context.Context, token string) (models.Token, error)
}

func (m *mockAuthService) Register(ctx context.Context, payload models.Payload) (models.UserProfile, models.TokenPair, error) {
	return m.registerFn(ctx, payload)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuthService) IssueTokens(context.Context, string, string) (models.TokenPair, error) {
	return models.TokenPair{}, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	return m.refreshFn(ctx, refreshToken)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.logoutFn(ctx, refreshToken)
}

func (m *mockAuthService) ParseToken(ctx context.Context, token string) (models.Token, error) {
	return m.parseTokenFn(ctx, token)
}

func (m *mockAuthService) PurgeExpiredRefreshTokens(context.Context) (int, error) {
	return 0, nil
}

// acceptingAuth accepts any token and authenticates it as profile p1 of user u1.
func acceptingAuth() *mockAuthService {
	return &mockAuthService{
		parseTokenFn: func(context.Context, string) (models.Token, error) {
			return models.Token{UserID: "u1", Claims: models.Claims{ProfileID: "p1"}}, nil
		},
	}
}

// ---- Mock: AppInfoService ----

type mockAppInfoService struct {
	version string
	pingErr error
}

func (m *mockAppInfoService) GetAppVersion(context.Context) string {
	return m.version
}

func (m *mockAppInfoService) Ping(context.Context) error {
	return m.pingErr
}

// ---- Mock: ProfileService ----

type mockProfileService struct {
	service.ProfileService

	getFn    func(ctx context.Context, id string) (models.UserProfile, error)
	listFn   func(ctx context.Context, params models.SearchParams) ([]models.UserProfile, error)
	updateFn func(ctx context.Context, caller, id string, payload models.Payload) (models.UserProfile, error)
}

func (m *mockProfileService) Get(ctx context.Context, id string) (models.UserProfile, error) {
	return m.getFn(ctx, id)
}

func (m *mockProfileService) List(ctx context.Context, params models.SearchParams) ([]models.UserProfile, error) {
	return m.listFn(ctx, params)
}

func (m *mockProfileService) Update(ctx context.Context, caller, id string, payload models.Payload) (models.UserProfile, error) {
	return m.updateFn(ctx, caller, id, payload)
}

// newMockedHandler builds a handler over the given services with rate
// limiting disabled.
func newMockedHandler(services *service.Services) *Handler {
	return NewHandler(services, config.StructuredConfig{}, logger.Nop())
}
