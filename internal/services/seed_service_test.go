package services

import (
	"testing"

	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSeedService(env *testEnv) *SeedService {
	return NewSeedService(env.db, env.cfg, env.tokens)
}

func TestSeedRun_Defaults(t *testing.T) {
	env := newTestEnv(t, testConfig())
	seed := newSeedService(env)

	result, err := seed.Run(&dto.SeedRequest{})
	require.NoError(t, err)
	assert.Equal(t, env.cfg.SeedUserCount, result.UsersCreated)
	assert.Equal(t, env.cfg.SeedFormCount, result.FormsCreated)
	assert.False(t, result.DataCleared)

	// Tokens go to roughly 60% of the active users, issued through the real
	// persistence path.
	var tokenCount int64
	require.NoError(t, env.db.Model(&models.RefreshToken{}).Count(&tokenCount).Error)
	assert.EqualValues(t, result.TokensCreated, tokenCount)
	assert.Positive(t, result.TokensCreated)
}

func TestSeedRun_ExplicitCounts(t *testing.T) {
	env := newTestEnv(t, testConfig())
	seed := newSeedService(env)

	result, err := seed.Run(&dto.SeedRequest{UserCount: 7, FormCount: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, result.UsersCreated)
	assert.Equal(t, 3, result.FormsCreated)
}

func TestSeedRun_KnownAccountsLogIn(t *testing.T) {
	env := newTestEnv(t, testConfig())
	seed := newSeedService(env)

	_, err := seed.Run(&dto.SeedRequest{UserCount: 5})
	require.NoError(t, err)

	var admin models.User
	require.NoError(t, env.db.Where("email = ?", "admin@test.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(SeedPassword)))

	// The seeded credentials work through the normal login path.
	data, err := env.auth.Login(&dto.LoginRequest{Email: "user@test.com", Password: SeedPassword})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, data.User.Role)
}

func TestSeedRun_RerunSkipsDuplicates(t *testing.T) {
	env := newTestEnv(t, testConfig())
	seed := newSeedService(env)

	first, err := seed.Run(&dto.SeedRequest{UserCount: 5, FormCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, first.UsersCreated)

	// Without clearing, the five fixed accounts already exist and are skipped.
	second, err := seed.Run(&dto.SeedRequest{UserCount: 5, FormCount: 2})
	require.NoError(t, err)
	assert.Zero(t, second.UsersCreated)

	var userCount int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 5, userCount)
}

func TestSeedRun_ClearData(t *testing.T) {
	env := newTestEnv(t, testConfig())
	seed := newSeedService(env)

	_, err := seed.Run(&dto.SeedRequest{UserCount: 5, FormCount: 4})
	require.NoError(t, err)

	result, err := seed.Run(&dto.SeedRequest{UserCount: 6, FormCount: 2, ClearData: true})
	require.NoError(t, err)
	assert.True(t, result.DataCleared)
	assert.Equal(t, 6, result.UsersCreated)

	var userCount, formCount int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, env.db.Model(&models.ContactForm{}).Count(&formCount).Error)
	assert.EqualValues(t, 6, userCount)
	assert.EqualValues(t, 2, formCount)
}

func TestSeedClear(t *testing.T) {
	env := newTestEnv(t, testConfig())
	seed := newSeedService(env)

	_, err := seed.Run(&dto.SeedRequest{UserCount: 5, FormCount: 3})
	require.NoError(t, err)

	cleared, err := seed.Clear()
	require.NoError(t, err)
	assert.EqualValues(t, 5, cleared.UsersDeleted)
	assert.EqualValues(t, 3, cleared.FormsDeleted)
	assert.Positive(t, cleared.TokensDeleted)

	status, err := seed.Status()
	require.NoError(t, err)
	assert.Zero(t, status.Tables["users"])
	assert.Zero(t, status.Tables["contact_forms"])
	assert.Zero(t, status.Tables["refresh_tokens"])
}

func TestSeedStatus_Breakdowns(t *testing.T) {
	env := newTestEnv(t, testConfig())
	seed := newSeedService(env)

	_, err := seed.Run(&dto.SeedRequest{UserCount: 5, FormCount: 2})
	require.NoError(t, err)

	status, err := seed.Status()
	require.NoError(t, err)

	// The five fixed accounts: two admins, three users, all active.
	assert.EqualValues(t, 2, status.UsersByRole["admin"])
	assert.EqualValues(t, 3, status.UsersByRole["user"])
	assert.EqualValues(t, 5, status.UsersByStatus["active"])
	assert.Zero(t, status.UsersByStatus["inactive"])
	assert.EqualValues(t, 5, status.Tables["users"])
	assert.EqualValues(t, 2, status.Tables["contact_forms"])
}
