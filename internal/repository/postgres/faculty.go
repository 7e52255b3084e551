package postgres

import (
	"context"
	"database/sql"
	"errors"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/repository"
)

type facultyRepository struct {
	db *sql.DB
}

func NewFacultyRepository(db *sql.DB) repository.FacultyRepository {
	return &facultyRepository{db: db}
}

func (r *facultyRepository) ListFaculties(ctx context.Context) ([]domain.Faculty, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM faculties ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faculties []domain.Faculty
	for rows.Next() {
		var f domain.Faculty
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		faculties = append(faculties, f)
	}
	return faculties, rows.Err()
}

func (r *facultyRepository) ListDepartments(ctx context.Context, facultyID int32) ([]domain.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, faculty_id, name, category FROM departments WHERE faculty_id = $1 ORDER BY name`, facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.FacultyID, &d.Name, &d.Category); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *facultyRepository) GetDepartment(ctx context.Context, id int32) (*domain.Department, error) {
	d := &domain.Department{}
	err := r.db.QueryRowContext(ctx, `SELECT id, faculty_id, name, category FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.FacultyID, &d.Name, &d.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}
