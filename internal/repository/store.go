package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the gradebook repositories bound to one connection or
// one open transaction.
type Repositories struct {
	Students      StudentRepository
	Classes       ClassRepository
	Enrollments   EnrollmentRepository
	Assignments   AssignmentRepository
	Scores        ScoreRepository
	OverallGrades OverallGradeRepository
	GradeEvents   GradeEventRepository
}

// New binds every repository to the supplied handle.
func New(db *gorm.DB) Repositories {
	return Repositories{
		Students:      NewStudentRepository(db),
		Classes:       NewClassRepository(db),
		Enrollments:   NewEnrollmentRepository(db),
		Assignments:   NewAssignmentRepository(db),
		Scores:        NewScoreRepository(db),
		OverallGrades: NewOverallGradeRepository(db),
		GradeEvents:   NewGradeEventRepository(db),
	}
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repositories() Repositories
	Transaction(ctx context.Context, fn func(repos Repositories) error) error
}

type gormStore struct {
	db    *gorm.DB
	repos Repositories
}

// NewStore constructs a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db, repos: New(db)}
}

func (s *gormStore) Repositories() Repositories {
	return s.repos
}

// Transaction commits only when fn returns nil; any error rolls back every
// write made through the repositories it was given.
func (s *gormStore) Transaction(ctx context.Context, fn func(repos Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func requireAffected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
