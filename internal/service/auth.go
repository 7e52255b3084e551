package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/logger"
	"clearance-backend/internal/repository"
	"clearance-backend/internal/security"
)

type authService struct {
	authorityRepo repository.AuthorityRepository
	studentRepo   repository.StudentRepository
	tokens        security.TokenManager
}

func NewAuthService(
	authorityRepo repository.AuthorityRepository,
	studentRepo repository.StudentRepository,
	tokens security.TokenManager,
) AuthService {
	return &authService{
		authorityRepo: authorityRepo,
		studentRepo:   studentRepo,
		tokens:        tokens,
	}
}

func (s *authService) RegisterAuthority(ctx context.Context, input RegisterAuthorityInput) (*domain.Authority, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	switch {
	case input.Email == "" || !strings.Contains(input.Email, "@"):
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	case len(input.Password) < 8:
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	case input.FullName == "":
		return nil, fmt.Errorf("%w: full name is required", domain.ErrValidation)
	case input.Position == "":
		return nil, fmt.Errorf("%w: position is required", domain.ErrValidation)
	case input.FacultyID <= 0:
		return nil, fmt.Errorf("%w: faculty is required", domain.ErrValidation)
	}

	if _, err := s.authorityRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", domain.ErrValidation, input.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	authority := &domain.Authority{
		Email:           input.Email,
		PasswordHash:    string(hash),
		FullName:        input.FullName,
		Position:        input.Position,
		FacultyID:       input.FacultyID,
		DepartmentID:    input.DepartmentID,
		Role:            domain.RoleAuthority,
		Phone:           input.Phone,
		Active:          false,
		PendingApproval: true,
	}
	if err := s.authorityRepo.Create(ctx, authority); err != nil {
		return nil, err
	}
	logger.Info("authority registered, awaiting review",
		"authority_id", authority.ID, "position", authority.Position, "faculty_id", authority.FacultyID)
	return authority, nil
}

// Login checks authorities before students because staff accounts carry
// state (pending review, deactivation) that must refuse the login with
// a specific message rather than fall through.
func (s *authService) Login(ctx context.Context, email, password string) (string, *Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	authority, err := s.authorityRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.loginAuthority(authority, password)
	case errors.Is(err, domain.ErrNotFound):
		// fall through to students
	default:
		return "", nil, err
	}

	student, err := s.studentRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrUnauthorized
		}
		return "", nil, err
	}
	return s.loginStudent(student, password)
}

func (s *authService) loginAuthority(authority *domain.Authority, password string) (string, *Principal, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(authority.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrUnauthorized
	}
	if authority.PendingApproval {
		return "", nil, fmt.Errorf("%w: registration is still under review", domain.ErrUnauthorized)
	}
	if !authority.Active {
		return "", nil, fmt.Errorf("%w: account is deactivated", domain.ErrUnauthorized)
	}

	kind := security.KindAuthority
	if authority.Role == domain.RoleAdmin {
		kind = security.KindAdmin
	}
	token, err := s.tokens.GenerateAccessToken(authority.ID, authority.Email, authority.FullName, kind)
	if err != nil {
		return "", nil, err
	}
	return token, &Principal{ID: authority.ID, Kind: string(kind), Email: authority.Email, FullName: authority.FullName}, nil
}

func (s *authService) loginStudent(student *domain.Student, password string) (string, *Principal, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrUnauthorized
	}
	token, err := s.tokens.GenerateAccessToken(student.ID, student.Email, student.FullName, security.KindStudent)
	if err != nil {
		return "", nil, err
	}
	return token, &Principal{ID: student.ID, Kind: string(security.KindStudent), Email: student.Email, FullName: student.FullName}, nil
}
