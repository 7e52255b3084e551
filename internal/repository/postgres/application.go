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

type applicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `id, student_id, app_type, description, current_stage, total_stages, status, submitted_at, completed_at, rejection_reason, last_action_at, last_authority_id, attachment_key, attachment_filename, attachment_content_type, attachment_size, attachment_uploaded_at`

const decisionColumns = `id, application_id, stage_order, stage_name, position, authority_id, authority_name, expected_faculty_id, expected_department_id, status, decided_at, note, created_at`

func scanApplication(row interface{ Scan(...any) error }) (*domain.Application, error) {
	app := &domain.Application{}
	var (
		attKey, attName, attType sql.NullString
		attSize                  sql.NullInt64
		attUploaded              sql.NullTime
	)
	err := row.Scan(&app.ID, &app.StudentID, &app.Type, &app.Description, &app.CurrentStage, &app.TotalStages, &app.Status, &app.SubmittedAt, &app.CompletedAt, &app.RejectionReason, &app.LastActionAt, &app.LastAuthorityID, &attKey, &attName, &attType, &attSize, &attUploaded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if attKey.Valid {
		app.Attachment = &domain.Attachment{
			StorageKey:  attKey.String,
			Filename:    attName.String,
			ContentType: attType.String,
			Size:        attSize.Int64,
			UploadedAt:  attUploaded.Time,
		}
	}
	return app, nil
}

func scanDecision(row interface{ Scan(...any) error }) (*domain.StageDecision, error) {
	d := &domain.StageDecision{}
	err := row.Scan(&d.ID, &d.ApplicationID, &d.StageOrder, &d.StageName, &d.Position, &d.AuthorityID, &d.AuthorityName, &d.ExpectedFacultyID, &d.ExpectedDepartmentID, &d.Status, &d.DecidedAt, &d.Note, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)
	return scanApplication(r.db.QueryRowContext(ctx, query, id))
}

func (r *applicationRepository) GetByStudent(ctx context.Context, studentID int32) (*domain.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE student_id = $1`, applicationColumns)
	return scanApplication(r.db.QueryRowContext(ctx, query, studentID))
}

func (r *applicationRepository) GetWithDecisions(ctx context.Context, id int32) (*domain.Application, []domain.StageDecision, error) {
	app, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	decisions, err := r.listDecisions(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return app, decisions, nil
}

func (r *applicationRepository) listDecisions(ctx context.Context, applicationID int32) ([]domain.StageDecision, error) {
	query := fmt.Sprintf(`SELECT %s FROM stage_decisions WHERE application_id = $1 ORDER BY stage_order ASC`, decisionColumns)
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []domain.StageDecision
	for rows.Next() {
		var d domain.StageDecision
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.StageOrder, &d.StageName, &d.Position, &d.AuthorityID, &d.AuthorityName, &d.ExpectedFacultyID, &d.ExpectedDepartmentID, &d.Status, &d.DecidedAt, &d.Note, &d.CreatedAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func (r *applicationRepository) CreateWithDecisions(ctx context.Context, app *domain.Application, decisions []domain.StageDecision, purgeApplicationID int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if purgeApplicationID > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stage_decisions WHERE application_id = $1`, purgeApplicationID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, purgeApplicationID); err != nil {
			return err
		}
	}

	var (
		attKey, attName, attType sql.NullString
		attSize                  sql.NullInt64
		attUploaded              sql.NullTime
	)
	if app.Attachment != nil {
		attKey = sql.NullString{String: app.Attachment.StorageKey, Valid: true}
		attName = sql.NullString{String: app.Attachment.Filename, Valid: true}
		attType = sql.NullString{String: app.Attachment.ContentType, Valid: true}
		attSize = sql.NullInt64{Int64: app.Attachment.Size, Valid: true}
		attUploaded = sql.NullTime{Time: app.Attachment.UploadedAt, Valid: true}
	}

	insertApp := `INSERT INTO applications (student_id, app_type, description, current_stage, total_stages, status, submitted_at, rejection_reason, attachment_key, attachment_filename, attachment_content_type, attachment_size, attachment_uploaded_at)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8, $9, $10, $11, $12) RETURNING id`
	if err := tx.QueryRowContext(ctx, insertApp, app.StudentID, app.Type, app.Description, app.CurrentStage, app.TotalStages, app.Status, app.SubmittedAt, attKey, attName, attType, attSize, attUploaded).Scan(&app.ID); err != nil {
		return err
	}

	insertDecision := `INSERT INTO stage_decisions (application_id, stage_order, stage_name, position, authority_id, authority_name, expected_faculty_id, expected_department_id, status, note, created_at)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '', $10) RETURNING id`
	for i := range decisions {
		d := &decisions[i]
		d.ApplicationID = app.ID
		if err := tx.QueryRowContext(ctx, insertDecision, app.ID, d.StageOrder, d.StageName, d.Position, d.AuthorityID, d.AuthorityName, d.ExpectedFacultyID, d.ExpectedDepartmentID, d.Status, d.CreatedAt).Scan(&d.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ApplyDecision moves the decision row, the application and the authority
// counters in one transaction. Every update is conditional on the state
// the caller validated; a concurrent verdict makes one of them match zero
// rows and the transaction rolls back with domain.ErrConflict, so two
// decisions against the same application serialize here regardless of
// what the pre-checks saw.
func (r *applicationRepository) ApplyDecision(ctx context.Context, upd *repository.DecisionUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	status := domain.DecisionApproved
	if upd.Verdict == domain.VerdictReject {
		status = domain.DecisionRejected
	}

	decide := `UPDATE stage_decisions SET status = $1, decided_at = $2, note = $3, authority_id = $4, authority_name = $5
	           WHERE application_id = $6 AND stage_order = $7 AND status = $8
	           AND (authority_id IS NULL OR authority_id = $4)`
	result, err := tx.ExecContext(ctx, decide, status, upd.DecidedAt, upd.Note, upd.AuthorityID, upd.AuthorityName, upd.ApplicationID, upd.StageOrder, domain.DecisionPending)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	switch {
	case upd.Verdict == domain.VerdictReject:
		reject := `UPDATE applications SET status = $1, rejection_reason = $2, completed_at = $3, last_action_at = $3, last_authority_id = $4
		           WHERE id = $5 AND current_stage = $6 AND status = $7`
		result, err = tx.ExecContext(ctx, reject, domain.ApplicationRejected, upd.Note, upd.DecidedAt, upd.AuthorityID, upd.ApplicationID, upd.StageOrder, domain.ApplicationPending)
		if err != nil {
			return err
		}
		if err := requireRow(result); err != nil {
			return err
		}
		// Later stages will never be decided.
		if _, err := tx.ExecContext(ctx, `UPDATE stage_decisions SET status = $1 WHERE application_id = $2 AND status = $3`, domain.DecisionCancelled, upd.ApplicationID, domain.DecisionAwaiting); err != nil {
			return err
		}

	case upd.NextStageOrder != nil:
		next := `UPDATE stage_decisions SET status = $1 WHERE application_id = $2 AND stage_order = $3 AND status = $4`
		result, err = tx.ExecContext(ctx, next, domain.DecisionPending, upd.ApplicationID, *upd.NextStageOrder, domain.DecisionAwaiting)
		if err != nil {
			return err
		}
		if err := requireRow(result); err != nil {
			return err
		}
		advance := `UPDATE applications SET current_stage = $1, last_action_at = $2, last_authority_id = $3
		            WHERE id = $4 AND current_stage = $5 AND status = $6`
		result, err = tx.ExecContext(ctx, advance, *upd.NextStageOrder, upd.DecidedAt, upd.AuthorityID, upd.ApplicationID, upd.StageOrder, domain.ApplicationPending)
		if err != nil {
			return err
		}
		if err := requireRow(result); err != nil {
			return err
		}

	default: // final stage approved
		complete := `UPDATE applications SET status = $1, completed_at = $2, last_action_at = $2, last_authority_id = $3, current_stage = $4
		             WHERE id = $5 AND current_stage = $6 AND status = $7`
		result, err = tx.ExecContext(ctx, complete, domain.ApplicationApproved, upd.DecidedAt, upd.AuthorityID, upd.TotalStages, upd.ApplicationID, upd.StageOrder, domain.ApplicationPending)
		if err != nil {
			return err
		}
		if err := requireRow(result); err != nil {
			return err
		}
	}

	counterColumn := "approved_count"
	if upd.Verdict == domain.VerdictReject {
		counterColumn = "rejected_count"
	}
	counters := fmt.Sprintf(`UPDATE authorities SET %s = %s + 1, last_activity_at = $1,
	            avg_response_days = CASE WHEN avg_response_days IS NULL THEN $2 ELSE (avg_response_days + $2) / 2 END
	            WHERE id = $3`, counterColumn, counterColumn)
	if _, err := tx.ExecContext(ctx, counters, upd.DecidedAt, upd.ResponseDays, upd.AuthorityID); err != nil {
		return err
	}

	return tx.Commit()
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *applicationRepository) Revert(ctx context.Context, applicationID, targetStage int32, regenerated []domain.StageDecision) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stage_decisions WHERE application_id = $1 AND stage_order >= $2`, applicationID, targetStage); err != nil {
		return err
	}

	insertDecision := `INSERT INTO stage_decisions (application_id, stage_order, stage_name, position, authority_id, authority_name, expected_faculty_id, expected_department_id, status, note, created_at)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '', $10) RETURNING id`
	for i := range regenerated {
		d := &regenerated[i]
		d.ApplicationID = applicationID
		if err := tx.QueryRowContext(ctx, insertDecision, applicationID, d.StageOrder, d.StageName, d.Position, d.AuthorityID, d.AuthorityName, d.ExpectedFacultyID, d.ExpectedDepartmentID, d.Status, d.CreatedAt).Scan(&d.ID); err != nil {
			return err
		}
	}

	reset := `UPDATE applications SET current_stage = $1, status = $2, completed_at = NULL, rejection_reason = '', last_action_at = $3 WHERE id = $4`
	result, err := tx.ExecContext(ctx, reset, targetStage, domain.ApplicationPending, time.Now(), applicationID)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *applicationRepository) ListActionable(ctx context.Context, authorityID int32, position domain.StagePosition, facultyID int32, departmentID *int32) ([]domain.StageDecision, error) {
	query := fmt.Sprintf(`SELECT %s FROM stage_decisions
	        WHERE position = $1 AND status = $2
	        AND (authority_id = $3 OR authority_id IS NULL)
	        AND (expected_faculty_id IS NULL OR expected_faculty_id = $4)`, decisionColumns)
	args := []interface{}{position, domain.DecisionPending, authorityID, facultyID}
	if departmentID != nil {
		query += ` AND (expected_department_id IS NULL OR expected_department_id = $5)`
		args = append(args, *departmentID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []domain.StageDecision
	for rows.Next() {
		var d domain.StageDecision
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.StageOrder, &d.StageName, &d.Position, &d.AuthorityID, &d.AuthorityName, &d.ExpectedFacultyID, &d.ExpectedDepartmentID, &d.Status, &d.DecidedAt, &d.Note, &d.CreatedAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func (r *applicationRepository) ListOverduePending(ctx context.Context, asOf time.Time) ([]repository.OverdueDecision, error) {
	query := `SELECT d.id, d.application_id, d.stage_order, d.stage_name, d.position, d.authority_id, d.authority_name, d.expected_faculty_id, d.expected_department_id, d.status, d.decided_at, d.note, d.created_at,
	                 a.email, a.full_name, s.full_name
	          FROM stage_decisions d
	          JOIN authorities a ON a.id = d.authority_id
	          JOIN applications ap ON ap.id = d.application_id
	          JOIN students s ON s.id = ap.student_id
	          JOIN stage_definitions sd ON sd.position = d.position AND sd.category = s.category AND sd.active = true
	          WHERE d.status = $1 AND d.created_at < $2 - (sd.max_duration_days || ' days')::interval`
	rows, err := r.db.QueryContext(ctx, query, domain.DecisionPending, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []repository.OverdueDecision
	for rows.Next() {
		var o repository.OverdueDecision
		d := &o.Decision
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.StageOrder, &d.StageName, &d.Position, &d.AuthorityID, &d.AuthorityName, &d.ExpectedFacultyID, &d.ExpectedDepartmentID, &d.Status, &d.DecidedAt, &d.Note, &d.CreatedAt,
			&o.AuthorityEmail, &o.AuthorityName, &o.StudentName); err != nil {
			return nil, err
		}
		o.DaysPending = int32(asOf.Sub(d.CreatedAt).Hours() / 24)
		overdue = append(overdue, o)
	}
	return overdue, rows.Err()
}

func (r *applicationRepository) Stats(ctx context.Context) (*domain.ApplicationStats, error) {
	stats := &domain.ApplicationStats{}

	summary := `SELECT count(*),
	       count(*) FILTER (WHERE status = $1),
	       count(*) FILTER (WHERE status = $2),
	       count(*) FILTER (WHERE status = $3),
	       COALESCE(avg(EXTRACT(EPOCH FROM (completed_at - submitted_at)) / 86400) FILTER (WHERE completed_at IS NOT NULL), 0)
	  FROM applications`
	err := r.db.QueryRowContext(ctx, summary, domain.ApplicationPending, domain.ApplicationApproved, domain.ApplicationRejected).
		Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected, &stats.AvgCompletionDays)
	if err != nil {
		return nil, err
	}

	month := `SELECT count(*) FILTER (WHERE submitted_at >= date_trunc('month', now())),
	       count(*) FILTER (WHERE status = $1 AND completed_at >= date_trunc('month', now())),
	       count(*) FILTER (WHERE status = $2 AND completed_at >= date_trunc('month', now()))
	  FROM applications`
	err = r.db.QueryRowContext(ctx, month, domain.ApplicationApproved, domain.ApplicationRejected).
		Scan(&stats.ThisMonth.Submitted, &stats.ThisMonth.Approved, &stats.ThisMonth.Rejected)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT app_type, count(*) FROM applications GROUP BY app_type ORDER BY count(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tc domain.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		stats.ByType = append(stats.ByType, tc)
	}
	return stats, rows.Err()
}
