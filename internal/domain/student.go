package domain

import "time"

// Student is a clearance applicant. Category drives which stage pipeline
// the application snapshots.
type Student struct {
	ID           int32           `json:"id"`
	Number       string          `json:"number"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	FullName     string          `json:"full_name"`
	Phone        string          `json:"phone"`
	FacultyID    int32           `json:"faculty_id"`
	DepartmentID int32           `json:"department_id"`
	Category     StudentCategory `json:"category"`
	Active       bool            `json:"active"`
	RegisteredAt time.Time       `json:"registered_at"`
}

type Faculty struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Department belongs to a faculty and carries the default program
// category for its students.
type Department struct {
	ID        int32           `json:"id"`
	FacultyID int32           `json:"faculty_id"`
	Name      string          `json:"name"`
	Category  StudentCategory `json:"category"`
}
