package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/repository"
)

// MockStudentRepo
type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) Create(ctx context.Context, student *domain.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}
func (m *MockStudentRepo) GetByID(ctx context.Context, id int32) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}
func (m *MockStudentRepo) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}
func (m *MockStudentRepo) GetByNumber(ctx context.Context, number string) (*domain.Student, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}
func (m *MockStudentRepo) Update(ctx context.Context, student *domain.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

// MockStageRepo
type MockStageRepo struct {
	mock.Mock
}

func (m *MockStageRepo) Create(ctx context.Context, stage *domain.StageDefinition) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}
func (m *MockStageRepo) GetByID(ctx context.Context, id int32) (*domain.StageDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StageDefinition), args.Error(1)
}
func (m *MockStageRepo) GetByPosition(ctx context.Context, category domain.StudentCategory, position domain.StagePosition) (*domain.StageDefinition, error) {
	args := m.Called(ctx, category, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StageDefinition), args.Error(1)
}
func (m *MockStageRepo) ListActive(ctx context.Context, category domain.StudentCategory) ([]domain.StageDefinition, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StageDefinition), args.Error(1)
}
func (m *MockStageRepo) List(ctx context.Context) ([]domain.StageDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StageDefinition), args.Error(1)
}
func (m *MockStageRepo) SetActive(ctx context.Context, id int32, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

// MockAuthorityRepo
type MockAuthorityRepo struct {
	mock.Mock
}

func (m *MockAuthorityRepo) Create(ctx context.Context, authority *domain.Authority) error {
	args := m.Called(ctx, authority)
	return args.Error(0)
}
func (m *MockAuthorityRepo) GetByID(ctx context.Context, id int32) (*domain.Authority, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Authority), args.Error(1)
}
func (m *MockAuthorityRepo) GetByEmail(ctx context.Context, email string) (*domain.Authority, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Authority), args.Error(1)
}
func (m *MockAuthorityRepo) Update(ctx context.Context, authority *domain.Authority) error {
	args := m.Called(ctx, authority)
	return args.Error(0)
}
func (m *MockAuthorityRepo) ListEligible(ctx context.Context, position domain.StagePosition, scope domain.StageScope, facultyID, departmentID int32) ([]domain.Authority, error) {
	args := m.Called(ctx, position, scope, facultyID, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Authority), args.Error(1)
}
func (m *MockAuthorityRepo) ListPending(ctx context.Context) ([]domain.Authority, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Authority), args.Error(1)
}
func (m *MockAuthorityRepo) ListAdmins(ctx context.Context) ([]domain.Authority, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Authority), args.Error(1)
}
func (m *MockAuthorityRepo) CountActiveForScope(ctx context.Context, position domain.StagePosition, scope domain.StageScope, facultyID, departmentID int32) (int32, error) {
	args := m.Called(ctx, position, scope, facultyID, departmentID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockAuthorityRepo) CountPendingDecisions(ctx context.Context, authorityID int32) (int32, error) {
	args := m.Called(ctx, authorityID)
	return args.Get(0).(int32), args.Error(1)
}

// MockApplicationRepo
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) GetByStudent(ctx context.Context, studentID int32) (*domain.Application, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) GetWithDecisions(ctx context.Context, id int32) (*domain.Application, []domain.StageDecision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Application), args.Get(1).([]domain.StageDecision), args.Error(2)
}
func (m *MockApplicationRepo) CreateWithDecisions(ctx context.Context, app *domain.Application, decisions []domain.StageDecision, purgeApplicationID int32) error {
	args := m.Called(ctx, app, decisions, purgeApplicationID)
	return args.Error(0)
}
func (m *MockApplicationRepo) ApplyDecision(ctx context.Context, upd *repository.DecisionUpdate) error {
	args := m.Called(ctx, upd)
	return args.Error(0)
}
func (m *MockApplicationRepo) Revert(ctx context.Context, applicationID, targetStage int32, regenerated []domain.StageDecision) error {
	args := m.Called(ctx, applicationID, targetStage, regenerated)
	return args.Error(0)
}
func (m *MockApplicationRepo) ListActionable(ctx context.Context, authorityID int32, position domain.StagePosition, facultyID int32, departmentID *int32) ([]domain.StageDecision, error) {
	args := m.Called(ctx, authorityID, position, facultyID, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StageDecision), args.Error(1)
}
func (m *MockApplicationRepo) ListOverduePending(ctx context.Context, asOf time.Time) ([]repository.OverdueDecision, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.OverdueDecision), args.Error(1)
}
func (m *MockApplicationRepo) Stats(ctx context.Context) (*domain.ApplicationStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApplicationStats), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, kind domain.RecipientKind, recipientID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, kind, recipientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id int32, kind domain.RecipientKind, recipientID int32) error {
	args := m.Called(ctx, id, kind, recipientID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendAuthorityReviewNotification(ctx context.Context, email, name string, approved bool, reason string) error {
	args := m.Called(ctx, email, name, approved, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendAssignmentNotification(ctx context.Context, email, name, studentName, stageName string, applicationID int32) error {
	args := m.Called(ctx, email, name, studentName, stageName, applicationID)
	return args.Error(0)
}
func (m *MockEmailService) SendApplicationStatusNotification(ctx context.Context, email, name, studentNumber, appType string, status domain.ApplicationStatus, reason string) error {
	args := m.Called(ctx, email, name, studentNumber, appType, status, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendDecisionReminder(ctx context.Context, email, name, stageName, studentName string, daysPending int32) error {
	args := m.Called(ctx, email, name, stageName, studentName, daysPending)
	return args.Error(0)
}
func (m *MockEmailService) SendAdminDigest(ctx context.Context, email, subject, body string) error {
	args := m.Called(ctx, email, subject, body)
	return args.Error(0)
}

// MockSMSService
type MockSMSService struct {
	mock.Mock
}

func (m *MockSMSService) Send(ctx context.Context, phone, message string) error {
	args := m.Called(ctx, phone, message)
	return args.Error(0)
}
