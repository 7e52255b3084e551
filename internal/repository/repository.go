package repository

import (
	"context"
	"time"

	"clearance-backend/internal/domain"
)

type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id int32) (*domain.Student, error)
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)
	GetByNumber(ctx context.Context, number string) (*domain.Student, error)
	Update(ctx context.Context, student *domain.Student) error
}

type FacultyRepository interface {
	ListFaculties(ctx context.Context) ([]domain.Faculty, error)
	ListDepartments(ctx context.Context, facultyID int32) ([]domain.Department, error)
	GetDepartment(ctx context.Context, id int32) (*domain.Department, error)
}

type StageRepository interface {
	Create(ctx context.Context, stage *domain.StageDefinition) error
	GetByID(ctx context.Context, id int32) (*domain.StageDefinition, error)
	// GetByPosition finds the active definition a position key maps to
	// within a category. Used by the guard to re-derive stage scope.
	GetByPosition(ctx context.Context, category domain.StudentCategory, position domain.StagePosition) (*domain.StageDefinition, error)
	// ListActive returns the active pipeline of a category ordered by
	// stage order ascending.
	ListActive(ctx context.Context, category domain.StudentCategory) ([]domain.StageDefinition, error)
	List(ctx context.Context) ([]domain.StageDefinition, error)
	SetActive(ctx context.Context, id int32, active bool) error
}

type AuthorityRepository interface {
	Create(ctx context.Context, authority *domain.Authority) error
	GetByID(ctx context.Context, id int32) (*domain.Authority, error)
	GetByEmail(ctx context.Context, email string) (*domain.Authority, error)
	Update(ctx context.Context, authority *domain.Authority) error
	// ListEligible returns active, approved authorities for a stage's
	// position, narrowed by the stage scope: COMMON ignores geography,
	// FACULTY filters on facultyID, DEPARTMENT requires the exact
	// department (fail closed).
	ListEligible(ctx context.Context, position domain.StagePosition, scope domain.StageScope, facultyID, departmentID int32) ([]domain.Authority, error)
	ListPending(ctx context.Context) ([]domain.Authority, error)
	ListAdmins(ctx context.Context) ([]domain.Authority, error)
	// CountActiveForScope counts active (or still pending) authorities
	// holding a position within one scope instance, for the
	// MaxAuthorityCount cap at registration review.
	CountActiveForScope(ctx context.Context, position domain.StagePosition, scope domain.StageScope, facultyID, departmentID int32) (int32, error)
	// CountPendingDecisions is the authority's current workload, the
	// ranking key of the least-loaded assignment policy.
	CountPendingDecisions(ctx context.Context, authorityID int32) (int32, error)
}

// DecisionUpdate carries one verdict through the transactional decision
// processor. The repository re-validates the expected state inside the
// transaction; a concurrent decision makes the conditional updates match
// zero rows and the whole operation rolls back with domain.ErrConflict.
type DecisionUpdate struct {
	ApplicationID int32
	StageOrder    int32
	AuthorityID   int32
	AuthorityName string
	Verdict       domain.Verdict
	Note          string
	DecidedAt     time.Time
	// NextStageOrder is the order of the following stage row, nil when
	// this verdict approves the final stage. Ignored for rejections.
	NextStageOrder *int32
	TotalStages    int32
	// ResponseDays feeds the authority's rolling average response time.
	ResponseDays float64
}

// OverdueDecision is a pending decision row that outstayed its stage's
// maximum duration, joined with enough context to send a reminder.
type OverdueDecision struct {
	Decision       domain.StageDecision
	AuthorityEmail string
	AuthorityName  string
	StudentName    string
	DaysPending    int32
}

type ApplicationRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Application, error)
	// GetByStudent returns the student's single application, or
	// domain.ErrNotFound when none exists.
	GetByStudent(ctx context.Context, studentID int32) (*domain.Application, error)
	GetWithDecisions(ctx context.Context, id int32) (*domain.Application, []domain.StageDecision, error)
	// CreateWithDecisions inserts the application and all its stage rows
	// in one transaction. purgeApplicationID > 0 deletes that prior
	// (rejected) application and its rows first, inside the same
	// transaction, enabling resubmission.
	CreateWithDecisions(ctx context.Context, app *domain.Application, decisions []domain.StageDecision, purgeApplicationID int32) error
	// ApplyDecision commits one verdict atomically: decision row,
	// application row and authority counters move in lockstep or not at
	// all.
	ApplyDecision(ctx context.Context, upd *DecisionUpdate) error
	// Revert deletes decision rows at and beyond target and installs the
	// regenerated replacements while resetting the application to
	// pending at the target stage, all in one transaction.
	Revert(ctx context.Context, applicationID, targetStage int32, regenerated []domain.StageDecision) error
	// ListActionable returns pending decision rows an authority could act
	// on: rows for its position assigned to it or still unassigned,
	// scoped to the expected faculty/department when set.
	ListActionable(ctx context.Context, authorityID int32, position domain.StagePosition, facultyID int32, departmentID *int32) ([]domain.StageDecision, error)
	ListOverduePending(ctx context.Context, asOf time.Time) ([]OverdueDecision, error)
	Stats(ctx context.Context) (*domain.ApplicationStats, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, kind domain.RecipientKind, recipientID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int32, kind domain.RecipientKind, recipientID int32) error
}
