package postgres

import (
	"database/sql"

	"clearance-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.StudentRepository
	repository.FacultyRepository
	repository.StageRepository
	repository.AuthorityRepository
	repository.ApplicationRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		StudentRepository:      NewStudentRepository(db),
		FacultyRepository:      NewFacultyRepository(db),
		StageRepository:        NewStageRepository(db),
		AuthorityRepository:    NewAuthorityRepository(db),
		ApplicationRepository:  NewApplicationRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
