package service

import (
	"testing"
	"time"

	"github.com/odvhub/odvhub-backend/config"
	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/odvhub/odvhub-backend/internal/db"
	"github.com/odvhub/odvhub-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthServiceTest(t *testing.T) (AuthService, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	jwtCfg := config.JWTConfig{
		Secret:             "auth-service-test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
	}

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(userRepo, jwtCfg)

	hash, err := util.HashPassword("correct-password")
	require.NoError(t, err)

	user := &model.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}
	testDB.Create(user)

	return authService, user
}

func TestAuthService_Login(t *testing.T) {
	authService, user := setupAuthServiceTest(t)

	loggedIn, tokens, err := authService.Login("admin@example.com", "correct-password")
	require.NoError(t, err)

	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := util.ValidateToken(tokens.AccessToken, "auth-service-test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Login("admin@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	// unknown accounts fail exactly like bad passwords
	_, _, err := authService.Login("nobody@example.com", "correct-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshToken(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, tokens, err := authService.Login("admin@example.com", "correct-password")
	require.NoError(t, err)

	refreshed, err := authService.RefreshToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestAuthService_RefreshToken_Invalid(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.RefreshToken("garbage")
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}
