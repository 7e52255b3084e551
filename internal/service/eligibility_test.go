package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clearance-backend/internal/domain"
)

func i32(v int32) *int32 { return &v }

func guardFixture() (*domain.Application, []domain.StageDecision, *domain.Authority, *domain.StageDefinition, *domain.Student) {
	app := &domain.Application{
		ID:           10,
		StudentID:    5,
		CurrentStage: 2,
		TotalStages:  3,
		Status:       domain.ApplicationPending,
	}
	decisions := []domain.StageDecision{
		{ApplicationID: 10, StageOrder: 1, StageName: "Library", Position: "LIBRARIAN", AuthorityID: i32(1), Status: domain.DecisionApproved},
		{ApplicationID: 10, StageOrder: 2, StageName: "Department Advisor", Position: "ADVISOR", AuthorityID: i32(2), Status: domain.DecisionPending},
		{ApplicationID: 10, StageOrder: 3, StageName: "Student Affairs", Position: "STUDENT_AFFAIRS", AuthorityID: i32(3), Status: domain.DecisionAwaiting},
	}
	authority := &domain.Authority{
		ID:           2,
		Position:     "ADVISOR",
		FacultyID:    7,
		DepartmentID: i32(42),
		Active:       true,
	}
	stage := &domain.StageDefinition{
		Name:     "Department Advisor",
		Order:    2,
		Position: "ADVISOR",
		Scope:    domain.ScopeDepartment,
	}
	student := &domain.Student{ID: 5, FacultyID: 7, DepartmentID: 42}
	return app, decisions, authority, stage, student
}

func TestCheckEligibility_Allowed(t *testing.T) {
	app, decisions, authority, stage, student := guardFixture()

	res := CheckEligibility(app, decisions, authority, stage, student)
	assert.True(t, res.Allowed)
	assert.True(t, res.OwnStage)
	assert.NoError(t, res.Err())
}

func TestCheckEligibility_NotYourStage(t *testing.T) {
	app, decisions, _, stage, student := guardFixture()
	stranger := &domain.Authority{ID: 99, Position: "DORMITORY", FacultyID: 7}

	res := CheckEligibility(app, decisions, stranger, stage, student)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonNotYourStage, res.Reason)
	assert.False(t, res.OwnStage)
}

func TestCheckEligibility_RowAssignedToSomeoneElse(t *testing.T) {
	app, decisions, authority, stage, student := guardFixture()
	// Same position, but the row belongs to authority 2.
	authority.ID = 77

	res := CheckEligibility(app, decisions, authority, stage, student)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonNotYourStage, res.Reason)
}

func TestCheckEligibility_AlreadyDecided(t *testing.T) {
	app, decisions, authority, stage, student := guardFixture()
	decisions[1].Status = domain.DecisionApproved

	res := CheckEligibility(app, decisions, authority, stage, student)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonAlreadyDecided, res.Reason)
	assert.Equal(t, domain.DecisionApproved, res.PriorDecision)
}

func TestCheckEligibility_CancelledCountsAsDecided(t *testing.T) {
	app, decisions, authority, stage, student := guardFixture()
	decisions[1].Status = domain.DecisionCancelled

	res := CheckEligibility(app, decisions, authority, stage, student)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonAlreadyDecided, res.Reason)
	assert.Equal(t, domain.DecisionCancelled, res.PriorDecision)
}

func TestCheckEligibility_NotReached(t *testing.T) {
	app, decisions, _, _, student := guardFixture()
	later := &domain.Authority{ID: 3, Position: "STUDENT_AFFAIRS", FacultyID: 7, Active: true}

	res := CheckEligibility(app, decisions, later, nil, student)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonNotReached, res.Reason)
	assert.True(t, res.OwnStage)
}

func TestCheckEligibility_EarlierIncomplete(t *testing.T) {
	app, decisions, authority, stage, student := guardFixture()
	// Inconsistent state: stage 1 still pending while current is 2.
	decisions[0].Status = domain.DecisionPending

	res := CheckEligibility(app, decisions, authority, stage, student)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonEarlierIncomplete, res.Reason)
}

func TestCheckEligibility_ScopeMismatch(t *testing.T) {
	t.Run("WrongDepartment", func(t *testing.T) {
		app, decisions, authority, stage, student := guardFixture()
		authority.DepartmentID = i32(43)

		res := CheckEligibility(app, decisions, authority, stage, student)
		assert.False(t, res.Allowed)
		assert.Equal(t, domain.ReasonScopeMismatch, res.Reason)
	})

	t.Run("WrongFaculty", func(t *testing.T) {
		app, decisions, authority, stage, student := guardFixture()
		stage.Scope = domain.ScopeFaculty
		authority.FacultyID = 8

		res := CheckEligibility(app, decisions, authority, stage, student)
		assert.False(t, res.Allowed)
		assert.Equal(t, domain.ReasonScopeMismatch, res.Reason)
	})

	t.Run("CommonScopeIgnoresGeography", func(t *testing.T) {
		app, decisions, authority, stage, student := guardFixture()
		stage.Scope = domain.ScopeCommon
		authority.FacultyID = 8
		authority.DepartmentID = nil

		res := CheckEligibility(app, decisions, authority, stage, student)
		assert.True(t, res.Allowed)
	})
}

func TestCheckEligibility_UnassignedRowIsClaimable(t *testing.T) {
	app, decisions, authority, stage, student := guardFixture()
	decisions[1].AuthorityID = nil

	res := CheckEligibility(app, decisions, authority, stage, student)
	assert.True(t, res.Allowed)
}
