package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/repository"
)

func i32(v int32) *int32 { return &v }

func TestApplicationRepository_ApplyDecision(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	base := func() *repository.DecisionUpdate {
		return &repository.DecisionUpdate{
			ApplicationID: 10,
			StageOrder:    1,
			AuthorityID:   11,
			AuthorityName: "Advisor",
			Verdict:       domain.VerdictApprove,
			DecidedAt:     now,
			TotalStages:   2,
			ResponseDays:  2.0,
		}
	}

	t.Run("ApproveAdvancesToNextStage", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewApplicationRepository(db)

		upd := base()
		upd.NextStageOrder = i32(2)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE stage_decisions SET status").
			WithArgs(string(domain.DecisionApproved), now, "", int32(11), "Advisor", int32(10), int32(1), string(domain.DecisionPending)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE stage_decisions SET status").
			WithArgs(string(domain.DecisionPending), int32(10), int32(2), string(domain.DecisionAwaiting)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE applications SET current_stage").
			WithArgs(int32(2), now, int32(11), int32(10), int32(1), string(domain.ApplicationPending)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE authorities SET approved_count").
			WithArgs(now, 2.0, int32(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.ApplyDecision(ctx, upd))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FinalApproveCompletesApplication", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewApplicationRepository(db)

		upd := base()
		upd.StageOrder = 2

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE stage_decisions SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE applications SET status").
			WithArgs(string(domain.ApplicationApproved), now, int32(11), int32(2), int32(10), int32(2), string(domain.ApplicationPending)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE authorities SET approved_count").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.ApplyDecision(ctx, upd))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RejectCancelsAwaitingRows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewApplicationRepository(db)

		upd := base()
		upd.Verdict = domain.VerdictReject
		upd.Note = "unreturned books"

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE stage_decisions SET status").
			WithArgs(string(domain.DecisionRejected), now, "unreturned books", int32(11), "Advisor", int32(10), int32(1), string(domain.DecisionPending)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE applications SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE stage_decisions SET status").
			WithArgs(string(domain.DecisionCancelled), int32(10), string(domain.DecisionAwaiting)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("UPDATE authorities SET rejected_count").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.ApplyDecision(ctx, upd))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LostRaceRollsBackWithConflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewApplicationRepository(db)

		upd := base()
		upd.NextStageOrder = i32(2)

		// The row was no longer pending: zero rows matched.
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE stage_decisions SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.ApplyDecision(ctx, upd)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepository_CreateWithDecisions(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	newApp := func() (*domain.Application, []domain.StageDecision) {
		app := &domain.Application{
			StudentID: 5, Type: "GRADUATION", Description: "done",
			CurrentStage: 1, TotalStages: 2,
			Status: domain.ApplicationPending, SubmittedAt: now,
		}
		decisions := []domain.StageDecision{
			{StageOrder: 1, StageName: "Department Advisor", Position: "ADVISOR", AuthorityID: i32(11), AuthorityName: "Advisor", Status: domain.DecisionPending, CreatedAt: now},
			{StageOrder: 2, StageName: "Library", Position: "LIBRARIAN", Status: domain.DecisionAwaiting, CreatedAt: now},
		}
		return app, decisions
	}

	t.Run("FirstApplication", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewApplicationRepository(db)
		app, decisions := newApp()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO applications").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectQuery("INSERT INTO stage_decisions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
		mock.ExpectQuery("INSERT INTO stage_decisions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
		mock.ExpectCommit()

		assert.NoError(t, repo.CreateWithDecisions(ctx, app, decisions, 0))
		assert.Equal(t, int32(10), app.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ResubmissionPurgesRejectedPredecessor", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewApplicationRepository(db)
		app, decisions := newApp()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM stage_decisions").
			WithArgs(int32(99)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM applications").
			WithArgs(int32(99)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO applications").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectQuery("INSERT INTO stage_decisions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))
		mock.ExpectQuery("INSERT INTO stage_decisions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(103))
		mock.ExpectCommit()

		assert.NoError(t, repo.CreateWithDecisions(ctx, app, decisions, 99))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepository_Revert(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()
	repo := NewApplicationRepository(db)

	regenerated := []domain.StageDecision{
		{StageOrder: 2, StageName: "Library", Position: "LIBRARIAN", Status: domain.DecisionPending, CreatedAt: now},
		{StageOrder: 3, StageName: "Student Affairs", Position: "STUDENT_AFFAIRS", Status: domain.DecisionAwaiting, CreatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM stage_decisions").
		WithArgs(int32(10), int32(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("INSERT INTO stage_decisions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(200))
	mock.ExpectQuery("INSERT INTO stage_decisions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(201))
	mock.ExpectExec("UPDATE applications SET current_stage").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Revert(ctx, 10, 2, regenerated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_GetByStudent_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM applications WHERE student_id").
		WithArgs(int32(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByStudent(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
