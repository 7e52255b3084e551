package domain

// TypeCount counts applications of one application type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int32  `json:"count"`
}

// MonthStats summarizes the current calendar month.
type MonthStats struct {
	Submitted int32 `json:"submitted"`
	Approved  int32 `json:"approved"`
	Rejected  int32 `json:"rejected"`
}

// ApplicationStats is the system-wide application summary shown on the
// admin dashboard.
type ApplicationStats struct {
	Total             int32       `json:"total"`
	Pending           int32       `json:"pending"`
	Approved          int32       `json:"approved"`
	Rejected          int32       `json:"rejected"`
	AvgCompletionDays float64     `json:"avg_completion_days"`
	ByType            []TypeCount `json:"by_type"`
	ThisMonth         MonthStats  `json:"this_month"`
}

// AuthorityStats is the per-authority workload and performance summary.
type AuthorityStats struct {
	AuthorityID     int32    `json:"authority_id"`
	PendingCount    int32    `json:"pending_count"`
	ApprovedCount   int32    `json:"approved_count"`
	RejectedCount   int32    `json:"rejected_count"`
	ApprovalRate    *float64 `json:"approval_rate,omitempty"`
	AvgResponseDays *float64 `json:"avg_response_days,omitempty"`
}
