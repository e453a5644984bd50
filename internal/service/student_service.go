package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/models"
	"github.com/noah-isme/gema-gradebook/internal/repository"
)

// StudentService manages the student roster.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	Create(ctx context.Context, payload dto.StudentRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, id uint, payload dto.StudentRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type studentService struct {
	gradebook *Gradebook
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService builds the student service.
func NewStudentService(gradebook *Gradebook, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		gradebook: gradebook,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	var students []models.Student
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		students, err = repos.Students.List(ctx)
		return translateStoreError(err, "list students")
	})
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	var student models.Student
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		student, err = requireStudent(ctx, repos, id)
		return err
	})
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Create(ctx context.Context, payload dto.StudentRequest) (dto.StudentResponse, error) {
	student, err := s.normalize(payload)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	_, err = s.gradebook.Mutate(ctx, "student.created", func(repos repository.Repositories, _ *PairSet) error {
		return translateStoreError(repos.Students.Create(ctx, &student), "student")
	})
	if err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student created")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, id uint, payload dto.StudentRequest) (dto.StudentResponse, error) {
	changes, err := s.normalize(payload)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	var student models.Student
	_, err = s.gradebook.Mutate(ctx, "student.updated", func(repos repository.Repositories, _ *PairSet) error {
		current, err := requireStudent(ctx, repos, id)
		if err != nil {
			return err
		}
		current.FirstName = changes.FirstName
		current.LastName = changes.LastName
		current.Email = changes.Email
		if err := repos.Students.Update(ctx, &current); err != nil {
			return translateStoreError(err, "student %d", id)
		}
		student = current
		return nil
	})
	if err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", id).Msg("student updated")
	return dto.NewStudentResponse(student), nil
}

// Delete removes the student with every score, enrollment and overall grade
// that refers to them.
func (s *studentService) Delete(ctx context.Context, id uint) error {
	_, err := s.gradebook.Mutate(ctx, "student.deleted", func(repos repository.Repositories, affected *PairSet) error {
		if _, err := requireStudent(ctx, repos, id); err != nil {
			return err
		}

		enrollments, err := repos.Enrollments.ListByStudent(ctx, id)
		if err != nil {
			return translateStoreError(err, "enrollments of student %d", id)
		}
		for _, enrollment := range enrollments {
			affected.Add(enrollment.StudentID, enrollment.ClassID)
		}

		if err := repos.Scores.DeleteByStudent(ctx, id); err != nil {
			return translateStoreError(err, "scores of student %d", id)
		}
		if err := repos.Enrollments.DeleteByStudent(ctx, id); err != nil {
			return translateStoreError(err, "enrollments of student %d", id)
		}
		return translateStoreError(repos.Students.Delete(ctx, id), "student %d", id)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", id).Msg("student deleted")
	return nil
}

func (s *studentService) normalize(payload dto.StudentRequest) (models.Student, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Student{}, validationError(err)
	}

	firstName, err := requireText("first_name", payload.FirstName)
	if err != nil {
		return models.Student{}, err
	}
	lastName, err := requireText("last_name", payload.LastName)
	if err != nil {
		return models.Student{}, err
	}

	return models.Student{
		FirstName: firstName,
		LastName:  lastName,
		Email:     cleanOptional(payload.Email),
	}, nil
}
