package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/logger"
	"clearance-backend/internal/repository"
)

type workflowService struct {
	appRepo       repository.ApplicationRepository
	studentRepo   repository.StudentRepository
	stageRepo     repository.StageRepository
	authorityRepo repository.AuthorityRepository
	noteRepo      repository.NotificationRepository
	resolver      *AssignmentResolver
	emailSvc      EmailService
	smsSvc        SMSService
}

func NewWorkflowService(
	appRepo repository.ApplicationRepository,
	studentRepo repository.StudentRepository,
	stageRepo repository.StageRepository,
	authorityRepo repository.AuthorityRepository,
	noteRepo repository.NotificationRepository,
	resolver *AssignmentResolver,
	emailSvc EmailService,
	smsSvc SMSService,
) WorkflowService {
	return &workflowService{
		appRepo:       appRepo,
		studentRepo:   studentRepo,
		stageRepo:     stageRepo,
		authorityRepo: authorityRepo,
		noteRepo:      noteRepo,
		resolver:      resolver,
		emailSvc:      emailSvc,
		smsSvc:        smsSvc,
	}
}

func (s *workflowService) CreateApplication(ctx context.Context, studentID int32, appType, description string, attachment *domain.Attachment) (*domain.Application, error) {
	if appType == "" || description == "" {
		return nil, fmt.Errorf("%w: application type and description are required", domain.ErrValidation)
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	// One application per student. A rejected predecessor is purged in
	// the creation transaction so resubmission starts clean.
	var purgeID int32
	existing, err := s.appRepo.GetByStudent(ctx, studentID)
	switch {
	case err == nil:
		switch existing.Status {
		case domain.ApplicationPending:
			return nil, domain.ErrActiveApplication
		case domain.ApplicationApproved:
			return nil, domain.ErrApplicationApproved
		case domain.ApplicationRejected:
			purgeID = existing.ID
		}
	case errors.Is(err, domain.ErrNotFound):
		// first application
	default:
		return nil, err
	}

	stages, err := s.stageRepo.ListActive(ctx, student.Category)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoStagesConfigured, student.Category)
	}

	now := time.Now()
	decisions := make([]domain.StageDecision, 0, len(stages))
	for i := range stages {
		d, err := s.buildDecision(ctx, &stages[i], student, now)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, *d)
	}
	decisions[0].Status = domain.DecisionPending

	app := &domain.Application{
		StudentID:    studentID,
		Type:         appType,
		Description:  description,
		CurrentStage: 1,
		TotalStages:  int32(len(stages)),
		Status:       domain.ApplicationPending,
		SubmittedAt:  now,
		Attachment:   attachment,
	}

	if err := s.appRepo.CreateWithDecisions(ctx, app, decisions, purgeID); err != nil {
		return nil, err
	}
	logger.Info("application created",
		"application_id", app.ID, "student_id", studentID, "total_stages", app.TotalStages, "resubmission", purgeID > 0)

	s.notifyAssignedAuthority(ctx, &decisions[0], student, app.ID)
	return app, nil
}

// buildDecision snapshots one stage into a decision row with a resolved
// assignment. Rows start awaiting; the caller promotes the first to
// pending.
func (s *workflowService) buildDecision(ctx context.Context, stage *domain.StageDefinition, student *domain.Student, now time.Time) (*domain.StageDecision, error) {
	authority, err := s.resolver.Resolve(ctx, stage, student.FacultyID, student.DepartmentID)
	if err != nil {
		return nil, err
	}

	d := &domain.StageDecision{
		StageOrder: stage.Order,
		StageName:  stage.Name,
		Position:   stage.Position,
		Status:     domain.DecisionAwaiting,
		CreatedAt:  now,
	}
	if authority != nil {
		d.AuthorityID = &authority.ID
		d.AuthorityName = authority.FullName
	}
	switch stage.Scope {
	case domain.ScopeDepartment:
		d.ExpectedFacultyID = &student.FacultyID
		d.ExpectedDepartmentID = &student.DepartmentID
	case domain.ScopeFaculty:
		d.ExpectedFacultyID = &student.FacultyID
	}
	return d, nil
}

func (s *workflowService) DecideStage(ctx context.Context, applicationID, authorityID int32, verdict domain.Verdict, note string) (*domain.Application, error) {
	if !verdict.Valid() {
		return nil, fmt.Errorf("%w: unknown verdict %q", domain.ErrValidation, verdict)
	}
	if verdict == domain.VerdictReject && note == "" {
		return nil, fmt.Errorf("%w: a rejection requires a note", domain.ErrValidation)
	}

	app, decisions, err := s.appRepo.GetWithDecisions(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	authority, err := s.authorityRepo.GetByID(ctx, authorityID)
	if err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetByID(ctx, app.StudentID)
	if err != nil {
		return nil, err
	}

	stage, err := s.stageRepo.GetByPosition(ctx, student.Category, authority.Position)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if stage != nil && stage.NoteRequired && note == "" {
		return nil, fmt.Errorf("%w: stage %q requires a note", domain.ErrValidation, stage.Name)
	}

	if res := CheckEligibility(app, decisions, authority, stage, student); !res.Allowed {
		return nil, res.Err()
	}

	now := time.Now()
	upd := &repository.DecisionUpdate{
		ApplicationID: applicationID,
		StageOrder:    app.CurrentStage,
		AuthorityID:   authorityID,
		AuthorityName: authority.FullName,
		Verdict:       verdict,
		Note:          note,
		DecidedAt:     now,
		TotalStages:   app.TotalStages,
		ResponseDays:  now.Sub(app.SubmittedAt).Hours() / 24,
		NextStageOrder: nextStageOrder(decisions, app.CurrentStage),
	}
	if err := s.appRepo.ApplyDecision(ctx, upd); err != nil {
		return nil, err
	}

	updated, refreshed, err := s.appRepo.GetWithDecisions(ctx, applicationID)
	if err != nil {
		// The decision committed; only the fresh read failed.
		logger.Error("decision committed but reload failed", "application_id", applicationID, "error", err)
		return app, nil
	}
	logger.Info("stage decided",
		"application_id", applicationID, "stage", upd.StageOrder, "authority_id", authorityID, "verdict", verdict, "status", updated.Status)

	s.notifyAfterDecision(ctx, updated, refreshed, student, verdict, note)
	return updated, nil
}

// nextStageOrder finds the stage following current, nil when current is
// the last (orders are contiguous, so there is at most one next).
func nextStageOrder(decisions []domain.StageDecision, current int32) *int32 {
	var next *int32
	for i := range decisions {
		d := &decisions[i]
		if d.StageOrder > current && (next == nil || d.StageOrder < *next) {
			order := d.StageOrder
			next = &order
		}
	}
	return next
}

func (s *workflowService) RevertStage(ctx context.Context, applicationID, targetStage int32) error {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if targetStage < 1 || targetStage > app.TotalStages {
		return fmt.Errorf("%w: target stage %d out of range 1..%d", domain.ErrValidation, targetStage, app.TotalStages)
	}

	student, err := s.studentRepo.GetByID(ctx, app.StudentID)
	if err != nil {
		return err
	}
	stages, err := s.stageRepo.ListActive(ctx, student.Category)
	if err != nil {
		return err
	}
	byOrder := make(map[int32]*domain.StageDefinition, len(stages))
	for i := range stages {
		byOrder[stages[i].Order] = &stages[i]
	}

	// Regenerate the rows being discarded from the current catalog so
	// the application never holds fewer rows than its snapshot implies.
	now := time.Now()
	var regenerated []domain.StageDecision
	for order := targetStage; order <= app.TotalStages; order++ {
		stage, ok := byOrder[order]
		if !ok {
			return fmt.Errorf("%w: catalog no longer defines stage %d for %s", domain.ErrNoStagesConfigured, order, student.Category)
		}
		d, err := s.buildDecision(ctx, stage, student, now)
		if err != nil {
			return err
		}
		if order == targetStage {
			d.Status = domain.DecisionPending
		}
		regenerated = append(regenerated, *d)
	}

	if err := s.appRepo.Revert(ctx, applicationID, targetStage, regenerated); err != nil {
		return err
	}
	logger.Info("application reverted", "application_id", applicationID, "target_stage", targetStage)

	s.notifyAssignedAuthority(ctx, &regenerated[0], student, applicationID)
	return nil
}

func (s *workflowService) GetApplicationStatus(ctx context.Context, applicationID int32) (*ApplicationStatusView, error) {
	app, decisions, err := s.appRepo.GetWithDecisions(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return &ApplicationStatusView{Application: app, Decisions: decisions}, nil
}

func (s *workflowService) GetStudentApplication(ctx context.Context, studentID int32) (*ApplicationStatusView, error) {
	app, err := s.appRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.GetApplicationStatus(ctx, app.ID)
}

func (s *workflowService) ListAssignableWork(ctx context.Context, authorityID int32) ([]domain.StageDecision, error) {
	authority, err := s.authorityRepo.GetByID(ctx, authorityID)
	if err != nil {
		return nil, err
	}
	if !authority.Eligible() {
		return nil, nil
	}

	candidates, err := s.appRepo.ListActionable(ctx, authorityID, authority.Position, authority.FacultyID, authority.DepartmentID)
	if err != nil {
		return nil, err
	}

	// Re-run the guard per row: the SQL filter is a superset of true
	// eligibility (it cannot see ordering or scope drift).
	var actionable []domain.StageDecision
	for _, cand := range candidates {
		app, decisions, err := s.appRepo.GetWithDecisions(ctx, cand.ApplicationID)
		if err != nil {
			return nil, err
		}
		student, err := s.studentRepo.GetByID(ctx, app.StudentID)
		if err != nil {
			return nil, err
		}
		stage, err := s.stageRepo.GetByPosition(ctx, student.Category, authority.Position)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if res := CheckEligibility(app, decisions, authority, stage, student); res.Allowed {
			actionable = append(actionable, cand)
		}
	}
	return actionable, nil
}

func (s *workflowService) Stats(ctx context.Context) (*domain.ApplicationStats, error) {
	return s.appRepo.Stats(ctx)
}

func (s *workflowService) AuthorityStats(ctx context.Context, authorityID int32) (*domain.AuthorityStats, error) {
	authority, err := s.authorityRepo.GetByID(ctx, authorityID)
	if err != nil {
		return nil, err
	}
	pending, err := s.authorityRepo.CountPendingDecisions(ctx, authorityID)
	if err != nil {
		return nil, err
	}
	return &domain.AuthorityStats{
		AuthorityID:     authorityID,
		PendingCount:    pending,
		ApprovedCount:   authority.ApprovedCount,
		RejectedCount:   authority.RejectedCount,
		ApprovalRate:    authority.ApprovalRate(),
		AvgResponseDays: authority.AvgResponseDays,
	}, nil
}

// notifyAssignedAuthority tells the authority of a freshly pending stage
// that work arrived. Best-effort: failures are logged only.
func (s *workflowService) notifyAssignedAuthority(ctx context.Context, d *domain.StageDecision, student *domain.Student, applicationID int32) {
	if d.AuthorityID == nil {
		return
	}
	authority, err := s.authorityRepo.GetByID(ctx, *d.AuthorityID)
	if err != nil {
		logger.Warn("assignment notification skipped", "authority_id", *d.AuthorityID, "error", err)
		return
	}
	if err := s.emailSvc.SendAssignmentNotification(ctx, authority.Email, authority.FullName, student.FullName, d.StageName, applicationID); err != nil {
		logger.Warn("assignment email failed", "authority_id", authority.ID, "error", err)
	}
	note := &domain.Notification{
		RecipientKind: domain.RecipientAuthority,
		RecipientID:   authority.ID,
		Title:         "New application awaiting your decision",
		Message:       fmt.Sprintf("%s is waiting for your decision at stage %q", student.FullName, d.StageName),
		Attributes: map[string]string{
			"type":           "STAGE_ASSIGNED",
			"application_id": fmt.Sprintf("%d", applicationID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("assignment notification row failed", "authority_id", authority.ID, "error", err)
	}
}

func (s *workflowService) notifyAfterDecision(ctx context.Context, app *domain.Application, decisions []domain.StageDecision, student *domain.Student, verdict domain.Verdict, note string) {
	switch app.Status {
	case domain.ApplicationApproved:
		s.notifyStudent(ctx, student, "Clearance approved",
			"Your clearance application has been approved. You can download your certificate.",
			app, domain.ApplicationApproved, "")
	case domain.ApplicationRejected:
		s.notifyStudent(ctx, student, "Clearance rejected",
			fmt.Sprintf("Your clearance application was rejected: %s", note),
			app, domain.ApplicationRejected, note)
	default:
		s.notifyStudent(ctx, student, "Clearance progressed",
			fmt.Sprintf("Your application advanced to stage %d of %d.", app.CurrentStage, app.TotalStages),
			app, domain.ApplicationPending, "")
		for i := range decisions {
			d := &decisions[i]
			if d.StageOrder == app.CurrentStage && d.Status == domain.DecisionPending {
				s.notifyAssignedAuthority(ctx, d, student, app.ID)
				break
			}
		}
	}
}

func (s *workflowService) notifyStudent(ctx context.Context, student *domain.Student, title, message string, app *domain.Application, status domain.ApplicationStatus, reason string) {
	if err := s.emailSvc.SendApplicationStatusNotification(ctx, student.Email, student.FullName, student.Number, app.Type, status, reason); err != nil {
		logger.Warn("student status email failed", "student_id", student.ID, "error", err)
	}
	if student.Phone != "" {
		if err := s.smsSvc.Send(ctx, student.Phone, message); err != nil {
			logger.Warn("student status sms failed", "student_id", student.ID, "error", err)
		}
	}
	n := &domain.Notification{
		RecipientKind: domain.RecipientStudent,
		RecipientID:   student.ID,
		Title:         title,
		Message:       message,
		Attributes: map[string]string{
			"type":           "APPLICATION_" + string(status),
			"application_id": fmt.Sprintf("%d", app.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, n); err != nil {
		logger.Warn("student notification row failed", "student_id", student.ID, "error", err)
	}
}
