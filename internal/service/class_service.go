package service

import (
	"context"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/models"
	"github.com/noah-isme/gema-gradebook/internal/repository"
)

// AtRiskThreshold is the percentage below which a graded student is flagged
// in the class report.
const AtRiskThreshold = 70.0

// ClassService manages classes and their reports.
type ClassService interface {
	List(ctx context.Context) ([]dto.ClassResponse, error)
	Get(ctx context.Context, id uint) (dto.ClassResponse, error)
	Create(ctx context.Context, payload dto.ClassRequest) (dto.ClassResponse, error)
	Update(ctx context.Context, id uint, payload dto.ClassRequest) (dto.ClassResponse, error)
	Delete(ctx context.Context, id uint) error
	Report(ctx context.Context, id uint) (dto.ClassReportResponse, error)
}

type classService struct {
	gradebook *Gradebook
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService builds the class service.
func NewClassService(gradebook *Gradebook, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		gradebook: gradebook,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) List(ctx context.Context) ([]dto.ClassResponse, error) {
	var classes []models.Class
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		classes, err = repos.Classes.List(ctx)
		return translateStoreError(err, "list classes")
	})
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Get(ctx context.Context, id uint) (dto.ClassResponse, error) {
	var class models.Class
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		class, err = requireClass(ctx, repos, id)
		return err
	})
	if err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Create(ctx context.Context, payload dto.ClassRequest) (dto.ClassResponse, error) {
	class, err := s.normalize(payload)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	_, err = s.gradebook.Mutate(ctx, "class.created", func(repos repository.Repositories, _ *PairSet) error {
		return translateStoreError(repos.Classes.Create(ctx, &class), "class")
	})
	if err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Msg("class created")
	return dto.NewClassResponse(class), nil
}

func (s *classService) Update(ctx context.Context, id uint, payload dto.ClassRequest) (dto.ClassResponse, error) {
	changes, err := s.normalize(payload)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	var class models.Class
	_, err = s.gradebook.Mutate(ctx, "class.updated", func(repos repository.Repositories, _ *PairSet) error {
		current, err := requireClass(ctx, repos, id)
		if err != nil {
			return err
		}
		current.ClassName = changes.ClassName
		current.Description = changes.Description
		if err := repos.Classes.Update(ctx, &current); err != nil {
			return translateStoreError(err, "class %d", id)
		}
		class = current
		return nil
	})
	if err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", id).Msg("class updated")
	return dto.NewClassResponse(class), nil
}

// Delete removes the class together with its assignments, their scores, its
// enrollments and its overall grades.
func (s *classService) Delete(ctx context.Context, id uint) error {
	_, err := s.gradebook.Mutate(ctx, "class.deleted", func(repos repository.Repositories, affected *PairSet) error {
		if _, err := requireClass(ctx, repos, id); err != nil {
			return err
		}

		enrollments, err := repos.Enrollments.ListByClass(ctx, id)
		if err != nil {
			return translateStoreError(err, "enrollments of class %d", id)
		}
		for _, enrollment := range enrollments {
			affected.Add(enrollment.StudentID, enrollment.ClassID)
		}

		if err := repos.Scores.DeleteByClass(ctx, id); err != nil {
			return translateStoreError(err, "scores of class %d", id)
		}
		if err := repos.Assignments.DeleteByClass(ctx, id); err != nil {
			return translateStoreError(err, "assignments of class %d", id)
		}
		if err := repos.Enrollments.DeleteByClass(ctx, id); err != nil {
			return translateStoreError(err, "enrollments of class %d", id)
		}
		return translateStoreError(repos.Classes.Delete(ctx, id), "class %d", id)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint("class_id", id).Msg("class deleted")
	return nil
}

// Report summarizes enrollment, grading progress and at-risk students for a
// class, read from the stored aggregates.
func (s *classService) Report(ctx context.Context, id uint) (dto.ClassReportResponse, error) {
	report := dto.ClassReportResponse{
		ClassID:            id,
		LetterDistribution: map[string]int{},
		AtRisk:             []dto.AtRiskStudent{},
	}

	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		class, err := requireClass(ctx, repos, id)
		if err != nil {
			return err
		}
		report.ClassName = class.ClassName

		enrollments, err := repos.Enrollments.ListByClass(ctx, id)
		if err != nil {
			return translateStoreError(err, "enrollments of class %d", id)
		}
		report.EnrolledStudents = len(enrollments)

		assignments, err := repos.Assignments.ListByClass(ctx, id)
		if err != nil {
			return translateStoreError(err, "assignments of class %d", id)
		}
		report.Assignments = len(assignments)

		grades, err := repos.OverallGrades.List(ctx, repository.OverallGradeFilter{ClassID: &id})
		if err != nil {
			return translateStoreError(err, "overall grades of class %d", id)
		}
		report.GradedStudents = len(grades)

		var sum float64
		for _, grade := range grades {
			sum += grade.Percentage
			report.LetterDistribution[grade.LetterGrade]++
			if grade.Percentage >= AtRiskThreshold {
				continue
			}

			student, err := requireStudent(ctx, repos, grade.StudentID)
			if err != nil {
				return err
			}
			report.AtRisk = append(report.AtRisk, dto.AtRiskStudent{
				StudentID:   grade.StudentID,
				Name:        student.FullName(),
				Percentage:  grade.Percentage,
				LetterGrade: grade.LetterGrade,
			})
		}
		if len(grades) > 0 {
			average := math.Round(sum/float64(len(grades))*100) / 100
			report.ClassAverage = &average
		}
		return nil
	})
	if err != nil {
		return dto.ClassReportResponse{}, err
	}

	return report, nil
}

func (s *classService) normalize(payload dto.ClassRequest) (models.Class, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Class{}, validationError(err)
	}

	name, err := requireText("class_name", payload.ClassName)
	if err != nil {
		return models.Class{}, err
	}

	return models.Class{
		ClassName:   name,
		Description: cleanOptional(payload.Description),
	}, nil
}
