package service

import (
	"context"
	"sort"
	"time"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/logger"
	"clearance-backend/internal/repository"
)

// AssignmentResolver picks the authority to evaluate one stage of an
// application. Selection is pure: the caller persists the assignment.
type AssignmentResolver struct {
	authorityRepo repository.AuthorityRepository
}

func NewAssignmentResolver(authorityRepo repository.AuthorityRepository) *AssignmentResolver {
	return &AssignmentResolver{authorityRepo: authorityRepo}
}

// Resolve returns the authority for a stage given the applicant's faculty
// and department, or nil when no eligible authority exists. An empty pool
// is not an error: the stage row stays unassigned and the first eligible
// authority to act claims it.
func (r *AssignmentResolver) Resolve(ctx context.Context, stage *domain.StageDefinition, facultyID, departmentID int32) (*domain.Authority, error) {
	eligible, err := r.authorityRepo.ListEligible(ctx, stage.Position, stage.Scope, facultyID, departmentID)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		logger.Warn("no eligible authority for stage",
			"stage", stage.Name, "scope", stage.Scope, "faculty_id", facultyID, "department_id", departmentID)
		return nil, nil
	}

	// Department pools are small, usually a single advisor: take the
	// first match. Faculty and common pools are load-balanced.
	if stage.Scope == domain.ScopeDepartment {
		return &eligible[0], nil
	}
	return r.leastLoaded(ctx, eligible)
}

type candidateLoad struct {
	authority    domain.Authority
	pendingCount int32
}

// leastLoaded ranks candidates by (pending decisions ascending, last
// activity ascending with never-active first) and returns the top one.
func (r *AssignmentResolver) leastLoaded(ctx context.Context, eligible []domain.Authority) (*domain.Authority, error) {
	candidates := make([]candidateLoad, 0, len(eligible))
	for _, a := range eligible {
		count, err := r.authorityRepo.CountPendingDecisions(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidateLoad{authority: a, pendingCount: count})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].pendingCount != candidates[j].pendingCount {
			return candidates[i].pendingCount < candidates[j].pendingCount
		}
		return activityOrDistantPast(candidates[i].authority).Before(activityOrDistantPast(candidates[j].authority))
	})

	top := candidates[0]
	logger.Debug("least-loaded assignment",
		"authority", top.authority.FullName, "pending", top.pendingCount)
	return &top.authority, nil
}

func activityOrDistantPast(a domain.Authority) time.Time {
	if a.LastActivityAt == nil {
		return time.Time{}
	}
	return *a.LastActivityAt
}
