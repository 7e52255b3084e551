package domain

import "time"

type AuthorityRole string

const (
	RoleAuthority AuthorityRole = "AUTHORITY"
	RoleAdmin     AuthorityRole = "ADMIN"
)

// Authority is a staff account empowered to decide stages matching its
// Position. Self-registered authorities start pending and inactive; an
// admin review activates or rejects them. Deactivation keeps history.
type Authority struct {
	ID           int32         `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	FullName     string        `json:"full_name"`
	Position     StagePosition `json:"position"`
	FacultyID    int32         `json:"faculty_id"`
	DepartmentID *int32        `json:"department_id,omitempty"`
	Role         AuthorityRole `json:"role"`
	Phone        string        `json:"phone"`
	Active       bool          `json:"active"`

	PendingApproval bool       `json:"pending_approval"`
	ReviewedBy      *int32     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason"`

	ApprovedCount   int32      `json:"approved_count"`
	RejectedCount   int32      `json:"rejected_count"`
	AvgResponseDays *float64   `json:"avg_response_days,omitempty"`
	LastActivityAt  *time.Time `json:"last_activity_at,omitempty"`
	RegisteredAt    time.Time  `json:"registered_at"`
}

// Eligible reports whether the authority may receive work at all.
func (a *Authority) Eligible() bool {
	return a.Active && !a.PendingApproval
}

// DecidedTotal is the number of verdicts this authority has issued.
func (a *Authority) DecidedTotal() int32 {
	return a.ApprovedCount + a.RejectedCount
}

// ApprovalRate is the percentage of approvals among issued verdicts, or
// nil before the first verdict.
func (a *Authority) ApprovalRate() *float64 {
	total := a.DecidedTotal()
	if total == 0 {
		return nil
	}
	rate := float64(a.ApprovedCount) / float64(total) * 100
	return &rate
}
