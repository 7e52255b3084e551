package domain

import "time"

// StageScope determines which authorities may act on a stage.
type StageScope string

const (
	// ScopeCommon stages draw from a university-wide authority pool.
	ScopeCommon StageScope = "COMMON"
	// ScopeFaculty stages require the authority's faculty to match the student's.
	ScopeFaculty StageScope = "FACULTY"
	// ScopeDepartment stages require an exact department match. No fallback
	// to the faculty pool: an empty department pool leaves the stage unassigned.
	ScopeDepartment StageScope = "DEPARTMENT"
)

func (s StageScope) Valid() bool {
	switch s {
	case ScopeCommon, ScopeFaculty, ScopeDepartment:
		return true
	}
	return false
}

// StagePosition is the typed key linking a StageDefinition to the
// authorities allowed to decide it. Both sides carry the same key, so a
// typo cannot silently detach a stage from its pool.
type StagePosition string

// StudentCategory selects which stage pipeline applies to a student.
type StudentCategory string

const (
	CategoryAssociate     StudentCategory = "ASSOCIATE"
	CategoryUndergraduate StudentCategory = "UNDERGRADUATE"
	CategoryGraduate      StudentCategory = "GRADUATE"
	CategoryDoctorate     StudentCategory = "DOCTORATE"
)

func (c StudentCategory) Valid() bool {
	switch c {
	case CategoryAssociate, CategoryUndergraduate, CategoryGraduate, CategoryDoctorate:
		return true
	}
	return false
}

// StageDefinition is one ordered step in a category's approval pipeline.
// Active definitions of a category keep contiguous orders starting at 1.
type StageDefinition struct {
	ID                int32           `json:"id"`
	Name              string          `json:"name"`
	Order             int32           `json:"order"`
	Category          StudentCategory `json:"category"`
	Scope             StageScope      `json:"scope"`
	Position          StagePosition   `json:"position"`
	MaxAuthorityCount int32           `json:"max_authority_count"`
	MaxDurationDays   int32           `json:"max_duration_days"`
	NoteRequired      bool            `json:"note_required"`
	Active            bool            `json:"active"`
	Description       string          `json:"description"`
	CreatedAt         time.Time       `json:"created_at"`
}

// DecisionStatus is the state of a single stage decision row.
type DecisionStatus string

const (
	// DecisionAwaiting marks a created row whose stage has not been reached.
	DecisionAwaiting DecisionStatus = "AWAITING"
	// DecisionPending marks the single actionable row of an application.
	DecisionPending   DecisionStatus = "PENDING"
	DecisionApproved  DecisionStatus = "APPROVED"
	DecisionRejected  DecisionStatus = "REJECTED"
	DecisionCancelled DecisionStatus = "CANCELLED"
)

// StageDecision is the per-application snapshot of one pipeline stage.
// Rows are created together with the application and only the workflow
// engine writes them. Catalog edits never touch existing rows.
type StageDecision struct {
	ID            int32          `json:"id"`
	ApplicationID int32          `json:"application_id"`
	StageOrder    int32          `json:"stage_order"`
	StageName     string         `json:"stage_name"`
	Position      StagePosition  `json:"position"`
	AuthorityID   *int32         `json:"authority_id,omitempty"`
	AuthorityName string         `json:"authority_name"`
	// Expected faculty/department of the deciding authority, snapshotted
	// from the applicant for scoped stages. Nil for common stages.
	ExpectedFacultyID    *int32         `json:"expected_faculty_id,omitempty"`
	ExpectedDepartmentID *int32         `json:"expected_department_id,omitempty"`
	Status               DecisionStatus `json:"status"`
	DecidedAt            *time.Time     `json:"decided_at,omitempty"`
	Note                 string         `json:"note"`
	CreatedAt            time.Time      `json:"created_at"`
}

// Decided reports whether this row carries a final verdict.
func (d *StageDecision) Decided() bool {
	return d.Status == DecisionApproved || d.Status == DecisionRejected
}

// Assigned reports whether an authority has been resolved for this row.
func (d *StageDecision) Assigned() bool {
	return d.AuthorityID != nil
}
