package domain

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// Verdict is a single stage decision outcome.
type Verdict string

const (
	VerdictApprove Verdict = "APPROVE"
	VerdictReject  Verdict = "REJECT"
)

func (v Verdict) Valid() bool {
	return v == VerdictApprove || v == VerdictReject
}

// Attachment holds the metadata of the optional supporting document
// uploaded with an application. The bytes live in AttachmentStorage under
// StorageKey; the attachment is not part of the workflow state machine.
type Attachment struct {
	StorageKey  string    `json:"storage_key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Application is a student's clearance request. TotalStages is snapshotted
// from the stage catalog at creation time; later catalog changes never
// alter an in-flight application.
type Application struct {
	ID              int32             `json:"id"`
	StudentID       int32             `json:"student_id"`
	Type            string            `json:"type"`
	Description     string            `json:"description"`
	CurrentStage    int32             `json:"current_stage"`
	TotalStages     int32             `json:"total_stages"`
	Status          ApplicationStatus `json:"status"`
	SubmittedAt     time.Time         `json:"submitted_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	RejectionReason string            `json:"rejection_reason"`
	LastActionAt    *time.Time        `json:"last_action_at,omitempty"`
	LastAuthorityID *int32            `json:"last_authority_id,omitempty"`
	Attachment      *Attachment       `json:"attachment,omitempty"`
}

// Terminal reports whether no further stage transitions can occur.
func (a *Application) Terminal() bool {
	return a.Status == ApplicationApproved || a.Status == ApplicationRejected
}

// RemainingStages is the number of stages still ahead of the application.
func (a *Application) RemainingStages() int32 {
	if a.TotalStages <= a.CurrentStage {
		return 0
	}
	return a.TotalStages - a.CurrentStage
}

// ProcessingTime is the elapsed time between submission and completion,
// or until now for in-flight applications.
func (a *Application) ProcessingTime(now time.Time) time.Duration {
	end := now
	if a.CompletedAt != nil {
		end = *a.CompletedAt
	}
	return end.Sub(a.SubmittedAt)
}
