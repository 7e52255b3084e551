package service

import (
	"fmt"

	"clearance-backend/internal/domain"
)

// CheckEligibility answers "can this authority decide this application's
// stage right now". It is pure: all state comes in as arguments, so the
// same predicate backs both the decision pre-check and the read-only
// worklist. The transactional decision processor re-enforces the ordering
// independently, this check alone never authorizes a write.
//
// Checks run in order and short-circuit on the first failure:
//  1. the application has a row for this authority's position, assigned
//     to it or still unassigned;
//  2. that row has not already been decided or cancelled;
//  3. the row's stage is the application's current stage;
//  4. no earlier stage is still undecided;
//  5. the authority's faculty/department still matches the stage scope.
func CheckEligibility(app *domain.Application, decisions []domain.StageDecision, authority *domain.Authority, stage *domain.StageDefinition, student *domain.Student) domain.EligibilityResult {
	var own *domain.StageDecision
	for i := range decisions {
		d := &decisions[i]
		if d.Position == authority.Position && (d.AuthorityID == nil || *d.AuthorityID == authority.ID) {
			own = d
			break
		}
	}
	if own == nil {
		return domain.EligibilityResult{
			Reason:  domain.ReasonNotYourStage,
			Message: "this application has no stage assigned to you",
		}
	}

	switch own.Status {
	case domain.DecisionApproved, domain.DecisionRejected:
		verb := "approved"
		if own.Status == domain.DecisionRejected {
			verb = "rejected"
		}
		return domain.EligibilityResult{
			Reason:        domain.ReasonAlreadyDecided,
			Message:       fmt.Sprintf("you already %s this application", verb),
			OwnStage:      true,
			PriorDecision: own.Status,
		}
	case domain.DecisionCancelled:
		return domain.EligibilityResult{
			Reason:        domain.ReasonAlreadyDecided,
			Message:       "this stage was cancelled by an earlier rejection",
			OwnStage:      true,
			PriorDecision: own.Status,
		}
	case domain.DecisionAwaiting:
		return domain.EligibilityResult{
			Reason:   domain.ReasonNotReached,
			Message:  "the application has not reached your stage yet",
			OwnStage: true,
		}
	}

	if own.StageOrder != app.CurrentStage {
		return domain.EligibilityResult{
			Reason:   domain.ReasonNotReached,
			Message:  "the application has not reached your stage yet",
			OwnStage: true,
		}
	}

	// Defensive double-check against races: a pending or awaiting row
	// before the current stage means ordering has been violated upstream.
	for i := range decisions {
		d := &decisions[i]
		if d.StageOrder < app.CurrentStage && (d.Status == domain.DecisionPending || d.Status == domain.DecisionAwaiting) {
			return domain.EligibilityResult{
				Reason:   domain.ReasonEarlierIncomplete,
				Message:  fmt.Sprintf("stage %q must be completed first", d.StageName),
				OwnStage: true,
			}
		}
	}

	// Scope re-validation: the authority's own faculty/department may
	// have changed since assignment.
	if stage != nil && student != nil {
		switch stage.Scope {
		case domain.ScopeDepartment:
			if authority.DepartmentID == nil || *authority.DepartmentID != student.DepartmentID {
				return domain.EligibilityResult{
					Reason:   domain.ReasonScopeMismatch,
					Message:  "this application belongs to a different department",
					OwnStage: true,
				}
			}
			fallthrough
		case domain.ScopeFaculty:
			if authority.FacultyID != student.FacultyID {
				return domain.EligibilityResult{
					Reason:   domain.ReasonScopeMismatch,
					Message:  "this application belongs to a different faculty",
					OwnStage: true,
				}
			}
		}
	}

	return domain.EligibilityResult{Allowed: true, OwnStage: true}
}
