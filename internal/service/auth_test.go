package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/security"
)

func newAuthService() (AuthService, *MockAuthorityRepo, *MockStudentRepo) {
	mockAuthorityRepo := new(MockAuthorityRepo)
	mockStudentRepo := new(MockStudentRepo)
	tokens := security.NewTokenManager("test-secret-at-least-32-characters!!", time.Hour)
	return NewAuthService(mockAuthorityRepo, mockStudentRepo, tokens), mockAuthorityRepo, mockStudentRepo
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	return string(h)
}

func TestAuthService_RegisterAuthority(t *testing.T) {
	ctx := context.Background()

	valid := RegisterAuthorityInput{
		Email: "new@test.edu", Password: "supersecret", FullName: "New Authority",
		Position: "LIBRARIAN", FacultyID: 7,
	}

	t.Run("StartsPendingAndInactive", func(t *testing.T) {
		svc, mockAuthorityRepo, _ := newAuthService()
		mockAuthorityRepo.On("GetByEmail", ctx, "new@test.edu").Return(nil, domain.ErrNotFound)
		mockAuthorityRepo.On("Create", ctx, mock.MatchedBy(func(a *domain.Authority) bool {
			return a.PendingApproval && !a.Active && a.Role == domain.RoleAuthority && a.PasswordHash != "supersecret"
		})).Return(nil)

		authority, err := svc.RegisterAuthority(ctx, valid)
		assert.NoError(t, err)
		assert.True(t, authority.PendingApproval)
		mockAuthorityRepo.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		svc, mockAuthorityRepo, _ := newAuthService()
		mockAuthorityRepo.On("GetByEmail", ctx, "new@test.edu").
			Return(&domain.Authority{ID: 1}, nil)

		_, err := svc.RegisterAuthority(ctx, valid)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		svc, _, _ := newAuthService()
		input := valid
		input.Password = "short"
		_, err := svc.RegisterAuthority(ctx, input)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("AuthoritySucceeds", func(t *testing.T) {
		svc, mockAuthorityRepo, _ := newAuthService()
		mockAuthorityRepo.On("GetByEmail", ctx, "staff@test.edu").Return(&domain.Authority{
			ID: 2, Email: "staff@test.edu", FullName: "Staff",
			PasswordHash: hash(t, "password123"),
			Role:         domain.RoleAuthority, Active: true,
		}, nil)

		token, principal, err := svc.Login(ctx, "staff@test.edu", "password123")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "authority", principal.Kind)
	})

	t.Run("AdminKindFromRole", func(t *testing.T) {
		svc, mockAuthorityRepo, _ := newAuthService()
		mockAuthorityRepo.On("GetByEmail", ctx, "admin@test.edu").Return(&domain.Authority{
			ID: 3, Email: "admin@test.edu", FullName: "Admin",
			PasswordHash: hash(t, "password123"),
			Role:         domain.RoleAdmin, Active: true,
		}, nil)

		_, principal, err := svc.Login(ctx, "admin@test.edu", "password123")
		assert.NoError(t, err)
		assert.Equal(t, "admin", principal.Kind)
	})

	t.Run("PendingAuthorityRefused", func(t *testing.T) {
		svc, mockAuthorityRepo, _ := newAuthService()
		mockAuthorityRepo.On("GetByEmail", ctx, "pending@test.edu").Return(&domain.Authority{
			ID: 4, Email: "pending@test.edu",
			PasswordHash:    hash(t, "password123"),
			PendingApproval: true,
		}, nil)

		_, _, err := svc.Login(ctx, "pending@test.edu", "password123")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("FallsThroughToStudent", func(t *testing.T) {
		svc, mockAuthorityRepo, mockStudentRepo := newAuthService()
		mockAuthorityRepo.On("GetByEmail", ctx, "student@test.edu").Return(nil, domain.ErrNotFound)
		mockStudentRepo.On("GetByEmail", ctx, "student@test.edu").Return(&domain.Student{
			ID: 5, Email: "student@test.edu", FullName: "Student",
			PasswordHash: hash(t, "password123"),
		}, nil)

		_, principal, err := svc.Login(ctx, "student@test.edu", "password123")
		assert.NoError(t, err)
		assert.Equal(t, "student", principal.Kind)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		svc, mockAuthorityRepo, _ := newAuthService()
		mockAuthorityRepo.On("GetByEmail", ctx, "staff@test.edu").Return(&domain.Authority{
			ID: 2, PasswordHash: hash(t, "password123"), Active: true,
		}, nil)

		_, _, err := svc.Login(ctx, "staff@test.edu", "nope")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		svc, mockAuthorityRepo, mockStudentRepo := newAuthService()
		mockAuthorityRepo.On("GetByEmail", ctx, "nobody@test.edu").Return(nil, domain.ErrNotFound)
		mockStudentRepo.On("GetByEmail", ctx, "nobody@test.edu").Return(nil, domain.ErrNotFound)

		_, _, err := svc.Login(ctx, "nobody@test.edu", "password123")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
