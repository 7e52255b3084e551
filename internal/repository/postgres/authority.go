package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/repository"
)

type authorityRepository struct {
	db *sql.DB
}

func NewAuthorityRepository(db *sql.DB) repository.AuthorityRepository {
	return &authorityRepository{db: db}
}

const authorityColumns = `id, email, password_hash, full_name, position, faculty_id, department_id, role, phone, active, pending_approval, reviewed_by, reviewed_at, rejection_reason, approved_count, rejected_count, avg_response_days, last_activity_at, registered_at`

func scanAuthority(row interface{ Scan(...any) error }) (*domain.Authority, error) {
	a := &domain.Authority{}
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Position, &a.FacultyID, &a.DepartmentID, &a.Role, &a.Phone, &a.Active, &a.PendingApproval, &a.ReviewedBy, &a.ReviewedAt, &a.RejectionReason, &a.ApprovedCount, &a.RejectedCount, &a.AvgResponseDays, &a.LastActivityAt, &a.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *authorityRepository) Create(ctx context.Context, a *domain.Authority) error {
	query := `INSERT INTO authorities (email, password_hash, full_name, position, faculty_id, department_id, role, phone, active, pending_approval, rejection_reason, approved_count, rejected_count, registered_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, 0, $12) RETURNING id`
	return r.db.QueryRowContext(ctx, query, a.Email, a.PasswordHash, a.FullName, a.Position, a.FacultyID, a.DepartmentID, a.Role, a.Phone, a.Active, a.PendingApproval, a.RejectionReason, time.Now()).Scan(&a.ID)
}

func (r *authorityRepository) GetByID(ctx context.Context, id int32) (*domain.Authority, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorities WHERE id = $1`, authorityColumns)
	return scanAuthority(r.db.QueryRowContext(ctx, query, id))
}

func (r *authorityRepository) GetByEmail(ctx context.Context, email string) (*domain.Authority, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorities WHERE email = $1`, authorityColumns)
	return scanAuthority(r.db.QueryRowContext(ctx, query, email))
}

func (r *authorityRepository) Update(ctx context.Context, a *domain.Authority) error {
	query := `UPDATE authorities SET email=$1, full_name=$2, position=$3, faculty_id=$4, department_id=$5, phone=$6, active=$7, pending_approval=$8, reviewed_by=$9, reviewed_at=$10, rejection_reason=$11 WHERE id=$12`
	_, err := r.db.ExecContext(ctx, query, a.Email, a.FullName, a.Position, a.FacultyID, a.DepartmentID, a.Phone, a.Active, a.PendingApproval, a.ReviewedBy, a.ReviewedAt, a.RejectionReason, a.ID)
	return err
}

func (r *authorityRepository) ListEligible(ctx context.Context, position domain.StagePosition, scope domain.StageScope, facultyID, departmentID int32) ([]domain.Authority, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorities WHERE position = $1 AND active = true AND pending_approval = false`, authorityColumns)
	args := []interface{}{position}

	switch scope {
	case domain.ScopeDepartment:
		query += ` AND faculty_id = $2 AND department_id = $3`
		args = append(args, facultyID, departmentID)
	case domain.ScopeFaculty:
		query += ` AND faculty_id = $2`
		args = append(args, facultyID)
	}
	query += ` ORDER BY id`

	return r.list(ctx, query, args...)
}

func (r *authorityRepository) ListPending(ctx context.Context) ([]domain.Authority, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorities WHERE pending_approval = true ORDER BY registered_at ASC`, authorityColumns)
	return r.list(ctx, query)
}

func (r *authorityRepository) ListAdmins(ctx context.Context) ([]domain.Authority, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorities WHERE role = $1 AND active = true`, authorityColumns)
	return r.list(ctx, query, domain.RoleAdmin)
}

func (r *authorityRepository) list(ctx context.Context, query string, args ...any) ([]domain.Authority, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authorities []domain.Authority
	for rows.Next() {
		var a domain.Authority
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Position, &a.FacultyID, &a.DepartmentID, &a.Role, &a.Phone, &a.Active, &a.PendingApproval, &a.ReviewedBy, &a.ReviewedAt, &a.RejectionReason, &a.ApprovedCount, &a.RejectedCount, &a.AvgResponseDays, &a.LastActivityAt, &a.RegisteredAt); err != nil {
			return nil, err
		}
		authorities = append(authorities, a)
	}
	return authorities, rows.Err()
}

func (r *authorityRepository) CountActiveForScope(ctx context.Context, position domain.StagePosition, scope domain.StageScope, facultyID, departmentID int32) (int32, error) {
	query := `SELECT count(*) FROM authorities WHERE position = $1 AND (active = true OR pending_approval = true)`
	args := []interface{}{position}

	switch scope {
	case domain.ScopeDepartment:
		query += ` AND faculty_id = $2 AND department_id = $3`
		args = append(args, facultyID, departmentID)
	case domain.ScopeFaculty:
		query += ` AND faculty_id = $2`
		args = append(args, facultyID)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *authorityRepository) CountPendingDecisions(ctx context.Context, authorityID int32) (int32, error) {
	// Awaiting rows count as load too: they are already committed to this
	// authority and will become actionable as their applications advance.
	query := `SELECT count(*) FROM stage_decisions WHERE authority_id = $1 AND status IN ($2, $3)`
	var count int32
	if err := r.db.QueryRowContext(ctx, query, authorityID, domain.DecisionPending, domain.DecisionAwaiting).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
