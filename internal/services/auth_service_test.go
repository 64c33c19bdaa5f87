package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"church_community_backend/internal/models"
)

func TestRegisterUser_AlwaysStartsAsMember(t *testing.T) {
	authRepo := &mockAuthRepo{}
	svc := NewAuthService(authRepo, nil)

	user, err := svc.RegisterUser(RegisterUserRequest{
		Username: "joao",
		Email:    "joao@example.com",
		Password: "long-enough-secret",
		FullName: "Joao Silva",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleMember, user.Role, "roles are granted through the roster workflow, never at signup")
	assert.Equal(t, "generated-id", user.ID)
	require.Len(t, authRepo.createdUsers, 1)
}

func TestLoginUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	authRepo := &mockAuthRepo{
		user: &models.User{
			ID:       "u1",
			Username: "joao",
			FullName: "Joao Silva",
			Role:     models.RoleMember,
			IsActive: true,
		},
		passwordHash: string(hash),
	}
	svc := NewAuthService(authRepo, nil)

	resp, err := svc.LoginUser(LoginRequest{Username: "joao", Password: "correct-password"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.LoginUser(LoginRequest{Username: "joao", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LoginUser(LoginRequest{Username: "nobody", Password: "correct-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown users get the same error as bad passwords")
}

func TestLoginUser_DeactivatedAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	authRepo := &mockAuthRepo{
		user:         &models.User{ID: "u1", Username: "joao", Role: models.RoleMember, IsActive: false},
		passwordHash: string(hash),
	}
	svc := NewAuthService(authRepo, nil)

	_, err = svc.LoginUser(LoginRequest{Username: "joao", Password: "correct-password"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestGetUserProfile_NotFound(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil)

	_, err := svc.GetUserProfile("ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
