package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mcontreras/contact-form-api/internal/config"
	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/models"
	"github.com/mcontreras/contact-form-api/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *token.Service
	auth   *AuthService
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		SeedUserCount:    10,
		SeedFormCount:    25,
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.ContactForm{}))

	tokens := token.NewService(db, cfg)
	return &testEnv{
		db:     db,
		cfg:    cfg,
		tokens: tokens,
		auth:   NewAuthService(db, cfg, tokens),
	}
}

func registerRequest(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:            "Alice Example",
		Email:           email,
		Password:        "Passw0rd",
		ConfirmPassword: "Passw0rd",
	}
}

func TestRegister_Success_TokenClaimsMatchUser(t *testing.T) {
	env := newTestEnv(t, testConfig())

	data, err := env.auth.Register(registerRequest("alice@example.com"))
	require.NoError(t, err)
	require.NotNil(t, data.User)
	require.NotEmpty(t, data.AccessToken)
	require.NotEmpty(t, data.RefreshToken)
	assert.Equal(t, models.RoleUser, data.User.Role)
	assert.True(t, data.User.IsActive)

	claims, err := env.tokens.VerifyAccessToken(data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, data.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)

	valid, err := env.tokens.IsRefreshTokenValid(data.RefreshToken)
	require.NoError(t, err)
	assert.True(t, valid, "refresh token must be persisted at issuance")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.auth.Register(registerRequest("dup@example.com"))
	require.NoError(t, err)

	_, err = env.auth.Register(registerRequest("dup@example.com"))
	require.ErrorIs(t, err, ErrEmailTaken)

	// The first registration is unaffected.
	_, err = env.auth.Login(&dto.LoginRequest{Email: "dup@example.com", Password: "Passw0rd"})
	require.NoError(t, err)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t, testConfig())

	data, err := env.auth.Register(registerRequest("carol@example.com"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		setup func(t *testing.T)
		req   *dto.LoginRequest
	}{
		{
			name: "unknown email",
			req:  &dto.LoginRequest{Email: "nobody@example.com", Password: "Passw0rd"},
		},
		{
			name: "wrong password",
			req:  &dto.LoginRequest{Email: "carol@example.com", Password: "WrongPass1"},
		},
		{
			name: "inactive user",
			setup: func(t *testing.T) {
				require.NoError(t, env.db.Model(&models.User{}).
					Where("id = ?", data.User.ID).
					Update("is_active", false).Error)
			},
			req: &dto.LoginRequest{Email: "carol@example.com", Password: "Passw0rd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup(t)
			}
			_, err := env.auth.Login(tt.req)
			require.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestRefresh_Success_DoesNotRotate(t *testing.T) {
	env := newTestEnv(t, testConfig())

	data, err := env.auth.Register(registerRequest("dave@example.com"))
	require.NoError(t, err)

	refreshed, err := env.auth.Refresh(data.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)

	// The refresh token stays usable: no rotation.
	_, err = env.auth.Refresh(data.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_RejectsRevokedToken(t *testing.T) {
	env := newTestEnv(t, testConfig())

	data, err := env.auth.Register(registerRequest("erin@example.com"))
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(data.RefreshToken))

	_, err = env.auth.Refresh(data.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_RejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWTRefreshExpiry = -time.Minute
	env := newTestEnv(t, cfg)

	user := &models.User{Name: "Frank", Email: "frank@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, env.db.Create(user).Error)

	expired, err := env.tokens.IssueRefreshToken(user)
	require.NoError(t, err)

	_, err = env.auth.Refresh(expired)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.auth.Refresh("definitely-not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_RejectsInactiveUser(t *testing.T) {
	env := newTestEnv(t, testConfig())

	data, err := env.auth.Register(registerRequest("grace@example.com"))
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.User{}).
		Where("id = ?", data.User.ID).
		Update("is_active", false).Error)

	_, err = env.auth.Refresh(data.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogoutAll_InvalidatesEveryToken(t *testing.T) {
	env := newTestEnv(t, testConfig())

	first, err := env.auth.Register(registerRequest("heidi@example.com"))
	require.NoError(t, err)

	second, err := env.auth.Login(&dto.LoginRequest{Email: "heidi@example.com", Password: "Passw0rd"})
	require.NoError(t, err)

	require.NoError(t, env.auth.LogoutAll(first.User.ID))

	_, err = env.auth.Refresh(first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, err = env.auth.Refresh(second.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, testConfig())

	data, err := env.auth.Register(registerRequest("ivan@example.com"))
	require.NoError(t, err)

	err = env.auth.ChangePassword(data.User.ID, &dto.ChangePasswordRequest{
		CurrentPassword:    "WrongPass1",
		NewPassword:        "NewPassw0rd",
		ConfirmNewPassword: "NewPassw0rd",
	})
	require.ErrorIs(t, err, ErrWrongPassword)

	err = env.auth.ChangePassword(data.User.ID, &dto.ChangePasswordRequest{
		CurrentPassword:    "Passw0rd",
		NewPassword:        "NewPassw0rd",
		ConfirmNewPassword: "NewPassw0rd",
	})
	require.NoError(t, err)

	// Access tokens are not revoked; they live until their own expiry.
	_, err = env.tokens.VerifyAccessToken(data.AccessToken)
	require.NoError(t, err)

	// Every refresh token is revoked: other sessions must log in again.
	_, err = env.auth.Refresh(data.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = env.auth.Login(&dto.LoginRequest{Email: "ivan@example.com", Password: "Passw0rd"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(&dto.LoginRequest{Email: "ivan@example.com", Password: "NewPassw0rd"})
	require.NoError(t, err)
}

func TestToggleStatus(t *testing.T) {
	env := newTestEnv(t, testConfig())

	admin, err := env.auth.Register(&dto.RegisterRequest{
		Name:            "Admin",
		Email:           "admin@example.com",
		Password:        "Passw0rd",
		ConfirmPassword: "Passw0rd",
		Role:            "admin",
	})
	require.NoError(t, err)

	target, err := env.auth.Register(registerRequest("target@example.com"))
	require.NoError(t, err)

	_, err = env.auth.ToggleStatus(admin.User.ID, admin.User.ID)
	require.ErrorIs(t, err, ErrSelfToggle)

	_, err = env.auth.ToggleStatus(admin.User.ID, 99999)
	require.ErrorIs(t, err, ErrUserNotFound)

	toggled, err := env.auth.ToggleStatus(admin.User.ID, target.User.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	// Deactivation revokes standing sessions immediately.
	valid, err := env.tokens.IsRefreshTokenValid(target.RefreshToken)
	require.NoError(t, err)
	assert.False(t, valid)

	toggled, err = env.auth.ToggleStatus(admin.User.ID, target.User.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.auth.Register(registerRequest("taken@example.com"))
	require.NoError(t, err)
	data, err := env.auth.Register(registerRequest("judy@example.com"))
	require.NoError(t, err)

	_, err = env.auth.UpdateProfile(data.User.ID, &dto.UpdateProfileRequest{})
	require.ErrorIs(t, err, ErrNothingToUpdate)

	_, err = env.auth.UpdateProfile(data.User.ID, &dto.UpdateProfileRequest{Email: "taken@example.com"})
	require.ErrorIs(t, err, ErrEmailTaken)

	// Re-submitting your own email is not a conflict.
	updated, err := env.auth.UpdateProfile(data.User.ID, &dto.UpdateProfileRequest{
		Name:  "Judy Renamed",
		Email: "judy@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Judy Renamed", updated.Name)
	assert.Equal(t, "judy@example.com", updated.Email)
}

func TestProfile_NotFound(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.auth.Profile(12345)
	require.ErrorIs(t, err, ErrUserNotFound)
}
