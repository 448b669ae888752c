package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/db"
	"gorm.io/gorm"
)

const testServiceJWTSecret = "test-jwt-secret-for-service"

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	schoolRepo := repository.NewSchoolRepository(testDB)
	authService := NewAuthService(userRepo, schoolRepo, testServiceJWTSecret, 15*time.Minute, 7*24*time.Hour)

	return authService, testDB
}

func TestAuthService_Register_Success(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, tokens, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "newuser@example.com",
		Password: "password123",
		Nickname: "bookworm",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "bookworm", user.Profile.Nickname)
	assert.Equal(t, 5.0, user.Profile.AvgRating)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestAuthService_Register_DefaultNickname(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "newuser@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "user5678", user.Profile.Nickname)
}

func TestAuthService_Register_WithSchool(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	school := &model.School{Name: "Fudan University", City: "Shanghai", Active: true}
	testDB.Create(school)

	user, _, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "student@example.com",
		Password: "password123",
		SchoolID: &school.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, user.Profile.SchoolID)
	assert.Equal(t, school.ID, *user.Profile.SchoolID)
}

func TestAuthService_Register_UnknownSchool(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	missing := uint(777)
	_, _, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "student@example.com",
		Password: "password123",
		SchoolID: &missing,
	})
	assert.ErrorIs(t, err, ErrSchoolNotFound)
}

func TestAuthService_Register_InvalidPhone(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	tests := []struct {
		name  string
		phone string
	}{
		{"Too short", "1381234"},
		{"Too long", "138123456789"},
		{"Non-digits", "1381234567a"},
		{"Empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := authService.Register(RegisterInput{
				Phone:    tt.phone,
				Email:    "x@example.com",
				Password: "password123",
			})
			assert.ErrorIs(t, err, ErrInvalidPhone)
		})
	}
}

func TestAuthService_Register_DuplicatePhone(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "first@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, _, err = authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "second@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrPhoneAlreadyExists)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "same@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, _, err = authService.Register(RegisterInput{
		Phone:    "13887654321",
		Email:    "same@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Login_ByPhoneOrEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	user, tokens, err := authService.Login("13812345678", "password123")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)

	user, _, err = authService.Login("login@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "13812345678", user.Phone)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, _, err = authService.Login("13812345678", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshTokens(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, tokens, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "refresh@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	refreshed, err := authService.RefreshTokens(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)

	_, err = authService.RefreshTokens("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	registered, _, err := authService.Register(RegisterInput{
		Phone:    "13812345678",
		Email:    "me@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	user, err := authService.GetUserByID(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", user.Email)

	_, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
