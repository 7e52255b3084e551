package domain

import (
	"errors"
	"fmt"
)

// Workflow error taxonomy. Handlers map these onto HTTP status codes;
// services wrap them with %w so callers can errors.Is against the
// sentinels.
var (
	// ErrNoStagesConfigured: no active stage definitions exist for the
	// student's category. Application creation fails hard; there is no
	// fallback stage count.
	ErrNoStagesConfigured = errors.New("no active approval stages configured for category")

	// ErrActiveApplication: the student already has a pending application.
	ErrActiveApplication = errors.New("an application is already in progress")

	// ErrApplicationApproved: the student's clearance is already complete.
	ErrApplicationApproved = errors.New("an approved application already exists")

	// ErrConflict: concurrent mutation lost the race, or the targeted row
	// was no longer in the expected state. Nothing was changed.
	ErrConflict = errors.New("state changed concurrently, operation aborted")

	// ErrValidation: malformed or missing input, rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized: credentials are wrong or the account may not log
	// in yet. Deliberately vague toward the caller.
	ErrUnauthorized = errors.New("invalid credentials")
)

// EligibilityReason identifies which guard check refused a decision.
type EligibilityReason string

const (
	ReasonNotYourStage      EligibilityReason = "NOT_YOUR_STAGE"
	ReasonAlreadyDecided    EligibilityReason = "ALREADY_DECIDED"
	ReasonNotReached        EligibilityReason = "NOT_REACHED"
	ReasonEarlierIncomplete EligibilityReason = "EARLIER_INCOMPLETE"
	ReasonScopeMismatch     EligibilityReason = "SCOPE_MISMATCH"
)

// EligibilityError refuses a decision attempt with the specific guard
// failure. It is always raised before any state is written.
type EligibilityError struct {
	Reason  EligibilityReason
	Message string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("not eligible (%s): %s", e.Reason, e.Message)
}

// EligibilityResult is the guard's full answer, also consumed by
// read-only views that gray out the decision buttons.
type EligibilityResult struct {
	Allowed bool              `json:"allowed"`
	Reason  EligibilityReason `json:"reason,omitempty"`
	Message string            `json:"message,omitempty"`
	// OwnStage reports whether the application has a row for this
	// authority's position at all.
	OwnStage bool `json:"own_stage"`
	// PriorDecision carries the earlier verdict when the refusal is
	// ReasonAlreadyDecided.
	PriorDecision DecisionStatus `json:"prior_decision,omitempty"`
}

// Err converts a refusal into an *EligibilityError, nil when allowed.
func (r EligibilityResult) Err() error {
	if r.Allowed {
		return nil
	}
	return &EligibilityError{Reason: r.Reason, Message: r.Message}
}
