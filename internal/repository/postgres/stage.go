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

type stageRepository struct {
	db *sql.DB
}

func NewStageRepository(db *sql.DB) repository.StageRepository {
	return &stageRepository{db: db}
}

const stageColumns = `id, name, stage_order, category, scope, position, max_authority_count, max_duration_days, note_required, active, description, created_at`

func scanStage(row interface{ Scan(...any) error }) (*domain.StageDefinition, error) {
	st := &domain.StageDefinition{}
	err := row.Scan(&st.ID, &st.Name, &st.Order, &st.Category, &st.Scope, &st.Position, &st.MaxAuthorityCount, &st.MaxDurationDays, &st.NoteRequired, &st.Active, &st.Description, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return st, nil
}

func (r *stageRepository) Create(ctx context.Context, st *domain.StageDefinition) error {
	query := `INSERT INTO stage_definitions (name, stage_order, category, scope, position, max_authority_count, max_duration_days, note_required, active, description, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	return r.db.QueryRowContext(ctx, query, st.Name, st.Order, st.Category, st.Scope, st.Position, st.MaxAuthorityCount, st.MaxDurationDays, st.NoteRequired, st.Active, st.Description, time.Now()).Scan(&st.ID)
}

func (r *stageRepository) GetByID(ctx context.Context, id int32) (*domain.StageDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM stage_definitions WHERE id = $1`, stageColumns)
	return scanStage(r.db.QueryRowContext(ctx, query, id))
}

func (r *stageRepository) GetByPosition(ctx context.Context, category domain.StudentCategory, position domain.StagePosition) (*domain.StageDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM stage_definitions WHERE category = $1 AND position = $2 AND active = true`, stageColumns)
	return scanStage(r.db.QueryRowContext(ctx, query, category, position))
}

func (r *stageRepository) ListActive(ctx context.Context, category domain.StudentCategory) ([]domain.StageDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM stage_definitions WHERE category = $1 AND active = true ORDER BY stage_order ASC`, stageColumns)
	return r.list(ctx, query, category)
}

func (r *stageRepository) List(ctx context.Context) ([]domain.StageDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM stage_definitions ORDER BY category, stage_order ASC`, stageColumns)
	return r.list(ctx, query)
}

func (r *stageRepository) list(ctx context.Context, query string, args ...any) ([]domain.StageDefinition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []domain.StageDefinition
	for rows.Next() {
		var st domain.StageDefinition
		if err := rows.Scan(&st.ID, &st.Name, &st.Order, &st.Category, &st.Scope, &st.Position, &st.MaxAuthorityCount, &st.MaxDurationDays, &st.NoteRequired, &st.Active, &st.Description, &st.CreatedAt); err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, rows.Err()
}

func (r *stageRepository) SetActive(ctx context.Context, id int32, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE stage_definitions SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
