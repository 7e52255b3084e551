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

type studentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) repository.StudentRepository {
	return &studentRepository{db: db}
}

const studentColumns = `id, number, email, password_hash, full_name, phone, faculty_id, department_id, category, active, registered_at`

func scanStudent(row interface{ Scan(...any) error }) (*domain.Student, error) {
	s := &domain.Student{}
	err := row.Scan(&s.ID, &s.Number, &s.Email, &s.PasswordHash, &s.FullName, &s.Phone, &s.FacultyID, &s.DepartmentID, &s.Category, &s.Active, &s.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *studentRepository) Create(ctx context.Context, s *domain.Student) error {
	query := `INSERT INTO students (number, email, password_hash, full_name, phone, faculty_id, department_id, category, active, registered_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.Number, s.Email, s.PasswordHash, s.FullName, s.Phone, s.FacultyID, s.DepartmentID, s.Category, s.Active, time.Now()).Scan(&s.ID)
}

func (r *studentRepository) GetByID(ctx context.Context, id int32) (*domain.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	return scanStudent(r.db.QueryRowContext(ctx, query, id))
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE email = $1`, studentColumns)
	return scanStudent(r.db.QueryRowContext(ctx, query, email))
}

func (r *studentRepository) GetByNumber(ctx context.Context, number string) (*domain.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE number = $1`, studentColumns)
	return scanStudent(r.db.QueryRowContext(ctx, query, number))
}

func (r *studentRepository) Update(ctx context.Context, s *domain.Student) error {
	query := `UPDATE students SET email=$1, password_hash=$2, full_name=$3, phone=$4, faculty_id=$5, department_id=$6, category=$7, active=$8 WHERE id=$9`
	_, err := r.db.ExecContext(ctx, query, s.Email, s.PasswordHash, s.FullName, s.Phone, s.FacultyID, s.DepartmentID, s.Category, s.Active, s.ID)
	return err
}
