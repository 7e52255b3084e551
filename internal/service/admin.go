package service

import (
	"context"
	"fmt"
	"time"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/logger"
	"clearance-backend/internal/repository"
)

type adminService struct {
	authorityRepo repository.AuthorityRepository
	stageRepo     repository.StageRepository
	noteRepo      repository.NotificationRepository
	emailSvc      EmailService
}

func NewAdminService(
	authorityRepo repository.AuthorityRepository,
	stageRepo repository.StageRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
) AdminService {
	return &adminService{
		authorityRepo: authorityRepo,
		stageRepo:     stageRepo,
		noteRepo:      noteRepo,
		emailSvc:      emailSvc,
	}
}

func (s *adminService) ListPendingAuthorities(ctx context.Context) ([]domain.Authority, error) {
	return s.authorityRepo.ListPending(ctx)
}

func (s *adminService) ReviewAuthority(ctx context.Context, adminID, authorityID int32, verdict domain.Verdict, reason string) error {
	if !verdict.Valid() {
		return fmt.Errorf("%w: unknown verdict %q", domain.ErrValidation, verdict)
	}
	authority, err := s.authorityRepo.GetByID(ctx, authorityID)
	if err != nil {
		return err
	}
	if !authority.PendingApproval {
		return fmt.Errorf("%w: authority %d is not awaiting review", domain.ErrValidation, authorityID)
	}

	now := time.Now()
	authority.PendingApproval = false
	authority.ReviewedBy = &adminID
	authority.ReviewedAt = &now

	switch verdict {
	case domain.VerdictApprove:
		if err := s.checkStaffingCap(ctx, authority); err != nil {
			return err
		}
		authority.Active = true
	case domain.VerdictReject:
		if reason == "" {
			return fmt.Errorf("%w: a registration rejection requires a reason", domain.ErrValidation)
		}
		authority.Active = false
		authority.RejectionReason = reason
	}

	if err := s.authorityRepo.Update(ctx, authority); err != nil {
		return err
	}
	logger.Info("authority registration reviewed",
		"authority_id", authorityID, "admin_id", adminID, "verdict", verdict)

	if err := s.emailSvc.SendAuthorityReviewNotification(ctx, authority.Email, authority.FullName, verdict == domain.VerdictApprove, reason); err != nil {
		logger.Warn("review email failed", "authority_id", authorityID, "error", err)
	}
	return nil
}

// checkStaffingCap rejects an approval that would overfill the
// authority's position within its scope instance. The candidate is
// still pending and therefore already included in the count.
func (s *adminService) checkStaffingCap(ctx context.Context, authority *domain.Authority) error {
	stage, err := s.stageForPosition(ctx, authority.Position)
	if err != nil {
		return err
	}
	if stage == nil || stage.MaxAuthorityCount <= 0 {
		return nil
	}
	var departmentID int32
	if authority.DepartmentID != nil {
		departmentID = *authority.DepartmentID
	}
	count, err := s.authorityRepo.CountActiveForScope(ctx, authority.Position, stage.Scope, authority.FacultyID, departmentID)
	if err != nil {
		return err
	}
	if count > stage.MaxAuthorityCount {
		return fmt.Errorf("%w: position %q already has %d of %d allowed authorities",
			domain.ErrValidation, authority.Position, count-1, stage.MaxAuthorityCount)
	}
	return nil
}

// stageForPosition finds any active stage carrying the position, since
// the staffing cap is defined per position rather than per category.
func (s *adminService) stageForPosition(ctx context.Context, position domain.StagePosition) (*domain.StageDefinition, error) {
	stages, err := s.stageRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stages {
		if stages[i].Active && stages[i].Position == position {
			return &stages[i], nil
		}
	}
	return nil, nil
}

func (s *adminService) BulkReviewAuthorities(ctx context.Context, adminID int32, authorityIDs []int32, verdict domain.Verdict, reason string) ([]ReviewResult, error) {
	if len(authorityIDs) == 0 {
		return nil, fmt.Errorf("%w: no authorities selected", domain.ErrValidation)
	}
	results := make([]ReviewResult, 0, len(authorityIDs))
	for _, id := range authorityIDs {
		res := ReviewResult{AuthorityID: id, OK: true}
		if err := s.ReviewAuthority(ctx, adminID, id, verdict, reason); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *adminService) SetAuthorityActive(ctx context.Context, authorityID int32, active bool) error {
	authority, err := s.authorityRepo.GetByID(ctx, authorityID)
	if err != nil {
		return err
	}
	if active && authority.PendingApproval {
		return fmt.Errorf("%w: authority %d has not passed registration review", domain.ErrValidation, authorityID)
	}
	if authority.Active == active {
		return nil
	}
	authority.Active = active
	if err := s.authorityRepo.Update(ctx, authority); err != nil {
		return err
	}
	logger.Info("authority activation changed", "authority_id", authorityID, "active", active)
	return nil
}

func (s *adminService) ListStages(ctx context.Context) ([]domain.StageDefinition, error) {
	return s.stageRepo.List(ctx)
}

func (s *adminService) CreateStage(ctx context.Context, stage *domain.StageDefinition) error {
	switch {
	case stage.Name == "":
		return fmt.Errorf("%w: stage name is required", domain.ErrValidation)
	case stage.Position == "":
		return fmt.Errorf("%w: stage position is required", domain.ErrValidation)
	case !stage.Category.Valid():
		return fmt.Errorf("%w: unknown student category %q", domain.ErrValidation, stage.Category)
	case !stage.Scope.Valid():
		return fmt.Errorf("%w: unknown stage scope %q", domain.ErrValidation, stage.Scope)
	case stage.Order < 1:
		return fmt.Errorf("%w: stage order must be positive", domain.ErrValidation)
	}

	// The active pipeline of a category stays contiguous 1..N: a new
	// stage may only append or reuse a vacated slot.
	active, err := s.stageRepo.ListActive(ctx, stage.Category)
	if err != nil {
		return err
	}
	if stage.Order > int32(len(active))+1 {
		return fmt.Errorf("%w: stage order %d would leave a gap, next free order is %d",
			domain.ErrValidation, stage.Order, len(active)+1)
	}
	for i := range active {
		if active[i].Order == stage.Order {
			return fmt.Errorf("%w: stage order %d is already taken by %q",
				domain.ErrValidation, stage.Order, active[i].Name)
		}
	}

	stage.Active = true
	if err := s.stageRepo.Create(ctx, stage); err != nil {
		return err
	}
	logger.Info("stage created", "stage_id", stage.ID, "category", stage.Category, "order", stage.Order, "name", stage.Name)
	return nil
}

func (s *adminService) DeactivateStage(ctx context.Context, stageID int32) error {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return err
	}
	if !stage.Active {
		return nil
	}
	active, err := s.stageRepo.ListActive(ctx, stage.Category)
	if err != nil {
		return err
	}
	if len(active) > 0 && active[len(active)-1].ID != stageID {
		return fmt.Errorf("%w: only the last stage of a pipeline can be deactivated", domain.ErrValidation)
	}
	if err := s.stageRepo.SetActive(ctx, stageID, false); err != nil {
		return err
	}
	logger.Info("stage deactivated", "stage_id", stageID, "category", stage.Category, "order", stage.Order)
	return nil
}
