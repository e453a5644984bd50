package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/models"
	"github.com/noah-isme/gema-gradebook/internal/repository"
)

// EnrollmentService manages which students take which classes.
type EnrollmentService interface {
	List(ctx context.Context) ([]dto.EnrollmentResponse, error)
	Enroll(ctx context.Context, payload dto.EnrollmentRequest) (dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, studentID, classID uint) error
}

type enrollmentService struct {
	gradebook *Gradebook
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEnrollmentService builds the enrollment service.
func NewEnrollmentService(gradebook *Gradebook, validate *validator.Validate, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		gradebook: gradebook,
		validator: validate,
		logger:    logger.With().Str("component", "enrollment_service").Logger(),
	}
}

func (s *enrollmentService) List(ctx context.Context) ([]dto.EnrollmentResponse, error) {
	var enrollments []models.Enrollment
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		enrollments, err = repos.Enrollments.List(ctx)
		return translateStoreError(err, "list enrollments")
	})
	if err != nil {
		return nil, err
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) Enroll(ctx context.Context, payload dto.EnrollmentRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, validationError(err)
	}

	enrollment := models.Enrollment{StudentID: payload.StudentID, ClassID: payload.ClassID}
	_, err := s.gradebook.Mutate(ctx, "enrollment.created", func(repos repository.Repositories, affected *PairSet) error {
		if _, err := requireStudent(ctx, repos, enrollment.StudentID); err != nil {
			return err
		}
		if _, err := requireClass(ctx, repos, enrollment.ClassID); err != nil {
			return err
		}
		if err := repos.Enrollments.Create(ctx, &enrollment); err != nil {
			return translateStoreError(err, "enrollment of student %d in class %d", enrollment.StudentID, enrollment.ClassID)
		}
		affected.Add(enrollment.StudentID, enrollment.ClassID)
		return nil
	})
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().Uint("student_id", enrollment.StudentID).Uint("class_id", enrollment.ClassID).Msg("student enrolled")
	return dto.NewEnrollmentResponse(enrollment), nil
}

// Unenroll removes the enrollment along with the student's scores in the
// class and the pair's overall grade.
func (s *enrollmentService) Unenroll(ctx context.Context, studentID, classID uint) error {
	_, err := s.gradebook.Mutate(ctx, "enrollment.deleted", func(repos repository.Repositories, affected *PairSet) error {
		if err := repos.Enrollments.Delete(ctx, studentID, classID); err != nil {
			return translateStoreError(err, "enrollment of student %d in class %d", studentID, classID)
		}
		if err := repos.Scores.DeleteForStudentInClass(ctx, studentID, classID); err != nil {
			return translateStoreError(err, "scores of student %d in class %d", studentID, classID)
		}
		affected.Add(studentID, classID)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("class_id", classID).Msg("student unenrolled")
	return nil
}
