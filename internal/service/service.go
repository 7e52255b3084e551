package service

import (
	"context"
	"io"

	"clearance-backend/internal/domain"
)

// ApplicationStatusView is an application together with its full stage
// decision trail.
type ApplicationStatusView struct {
	Application *domain.Application    `json:"application"`
	Decisions   []domain.StageDecision `json:"decisions"`
}

type WorkflowService interface {
	// CreateApplication submits a clearance request for a student. A
	// pending application blocks it, an approved one blocks it
	// permanently, a rejected one is purged and replaced.
	CreateApplication(ctx context.Context, studentID int32, appType, description string, attachment *domain.Attachment) (*domain.Application, error)
	// DecideStage records one authority's verdict on the application's
	// current stage and advances or terminates the workflow.
	DecideStage(ctx context.Context, applicationID, authorityID int32, verdict domain.Verdict, note string) (*domain.Application, error)
	// RevertStage is the administrative escape hatch: it rewinds the
	// application to targetStage and regenerates the stage rows from
	// that point with freshly resolved assignments.
	RevertStage(ctx context.Context, applicationID, targetStage int32) error
	GetApplicationStatus(ctx context.Context, applicationID int32) (*ApplicationStatusView, error)
	GetStudentApplication(ctx context.Context, studentID int32) (*ApplicationStatusView, error)
	// ListAssignableWork returns the decision rows an authority can act
	// on right now, filtered through the eligibility guard.
	ListAssignableWork(ctx context.Context, authorityID int32) ([]domain.StageDecision, error)
	Stats(ctx context.Context) (*domain.ApplicationStats, error)
	AuthorityStats(ctx context.Context, authorityID int32) (*domain.AuthorityStats, error)
}

// ReviewResult reports one item of a bulk authority review; bulk
// operations collect per-item failures instead of aborting.
type ReviewResult struct {
	AuthorityID int32  `json:"authority_id"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
}

type AdminService interface {
	ListPendingAuthorities(ctx context.Context) ([]domain.Authority, error)
	// ReviewAuthority approves or rejects a pending registration.
	// Approval enforces the stage's MaxAuthorityCount cap for the
	// authority's scope instance.
	ReviewAuthority(ctx context.Context, adminID, authorityID int32, verdict domain.Verdict, reason string) error
	BulkReviewAuthorities(ctx context.Context, adminID int32, authorityIDs []int32, verdict domain.Verdict, reason string) ([]ReviewResult, error)
	SetAuthorityActive(ctx context.Context, authorityID int32, active bool) error
	ListStages(ctx context.Context) ([]domain.StageDefinition, error)
	CreateStage(ctx context.Context, stage *domain.StageDefinition) error
	DeactivateStage(ctx context.Context, stageID int32) error
}

// RegisterAuthorityInput is an authority self-registration; the account
// starts pending and inactive until an admin review.
type RegisterAuthorityInput struct {
	Email        string               `json:"email"`
	Password     string               `json:"password"`
	FullName     string               `json:"full_name"`
	Position     domain.StagePosition `json:"position"`
	FacultyID    int32                `json:"faculty_id"`
	DepartmentID *int32               `json:"department_id,omitempty"`
	Phone        string               `json:"phone"`
}

// Principal identifies an authenticated caller across the two account
// populations.
type Principal struct {
	ID       int32  `json:"id"`
	Kind     string `json:"kind"` // "student", "authority" or "admin"
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type AuthService interface {
	RegisterAuthority(ctx context.Context, input RegisterAuthorityInput) (*domain.Authority, error)
	// Login authenticates against authorities first, then students, and
	// returns a signed access token with the principal.
	Login(ctx context.Context, email, password string) (string, *Principal, error)
}

type NotificationService interface {
	List(ctx context.Context, kind domain.RecipientKind, recipientID, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, kind domain.RecipientKind, recipientID, notificationID int32) error
}

// EmailService is the mail collaborator. Workflow callers treat every
// method as best-effort: failures are logged, never propagated.
type EmailService interface {
	SendAuthorityReviewNotification(ctx context.Context, email, name string, approved bool, reason string) error
	SendAssignmentNotification(ctx context.Context, email, name, studentName, stageName string, applicationID int32) error
	SendApplicationStatusNotification(ctx context.Context, email, name, studentNumber, appType string, status domain.ApplicationStatus, reason string) error
	SendDecisionReminder(ctx context.Context, email, name, stageName, studentName string, daysPending int32) error
	SendAdminDigest(ctx context.Context, email, subject, body string) error
}

// SMSService sends a short status text to a student's phone, best-effort.
type SMSService interface {
	Send(ctx context.Context, phone, message string) error
}

// AttachmentStorage stores supporting documents outside the workflow
// state machine.
type AttachmentStorage interface {
	Save(ctx context.Context, reader io.Reader, filename string) (key string, size int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CertificateRenderer produces the clearance certificate for an approved
// application.
type CertificateRenderer interface {
	Render(app *domain.Application, student *domain.Student, decisions []domain.StageDecision) ([]byte, error)
}
