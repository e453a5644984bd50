package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/models"
	"github.com/noah-isme/gema-gradebook/internal/repository"
)

// OverallGradeService is the read side of the aggregates. It never computes;
// it returns what the engine stored.
type OverallGradeService interface {
	List(ctx context.Context, filter dto.OverallGradeFilter) ([]dto.OverallGradeResponse, error)
	Get(ctx context.Context, studentID, classID uint) (dto.OverallGradeResponse, error)
	Events(ctx context.Context, filter dto.GradeEventFilter) ([]dto.GradeEventResponse, error)
	RecomputeAll(ctx context.Context) (int, error)
}

type overallGradeService struct {
	gradebook *Gradebook
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewOverallGradeService builds the overall grade service.
func NewOverallGradeService(gradebook *Gradebook, validate *validator.Validate, logger zerolog.Logger) OverallGradeService {
	return &overallGradeService{
		gradebook: gradebook,
		validator: validate,
		logger:    logger.With().Str("component", "overall_grade_service").Logger(),
	}
}

// List returns the stored aggregates. Only graded pairs have rows, so every
// item carries a percentage and letter.
func (s *overallGradeService) List(ctx context.Context, filter dto.OverallGradeFilter) ([]dto.OverallGradeResponse, error) {
	field := cacheField(filter)
	var grades []dto.OverallGradeResponse
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		if cached, ok := s.gradebook.cache.fetch(ctx, field); ok {
			grades = cached
			return nil
		}

		stored, err := repos.OverallGrades.List(ctx, repository.OverallGradeFilter{
			StudentID: filter.StudentID,
			ClassID:   filter.ClassID,
		})
		if err != nil {
			return translateStoreError(err, "list overall grades")
		}
		grades = dto.NewOverallGradeResponseSlice(stored)
		s.gradebook.cache.store(ctx, field, grades)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return grades, nil
}

// Get returns the aggregate for an enrolled pair, which is ungraded until the
// student has a score in the class.
func (s *overallGradeService) Get(ctx context.Context, studentID, classID uint) (dto.OverallGradeResponse, error) {
	var grade dto.OverallGradeResponse
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		if err := requireEnrollment(ctx, repos, studentID, classID); err != nil {
			return err
		}
		var err error
		grade, err = lookupOverallGrade(ctx, repos, studentID, classID)
		return err
	})
	if err != nil {
		return dto.OverallGradeResponse{}, err
	}

	return grade, nil
}

func (s *overallGradeService) Events(ctx context.Context, filter dto.GradeEventFilter) ([]dto.GradeEventResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, validationError(err)
	}

	var events []models.GradeEvent
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		events, err = repos.GradeEvents.List(ctx, repository.GradeEventFilter{
			StudentID: filter.StudentID,
			ClassID:   filter.ClassID,
			Limit:     filter.Limit,
		})
		return translateStoreError(err, "list grade events")
	})
	if err != nil {
		return nil, err
	}

	return dto.NewGradeEventResponseSlice(events), nil
}

// RecomputeAll rebuilds every aggregate and reports how many changed.
func (s *overallGradeService) RecomputeAll(ctx context.Context) (int, error) {
	start := time.Now()
	changes, err := s.gradebook.RecomputeAll(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int("changed", len(changes)).Dur("took", time.Since(start)).Msg("overall grades rebuilt")
	return len(changes), nil
}

func lookupOverallGrade(ctx context.Context, repos repository.Repositories, studentID, classID uint) (dto.OverallGradeResponse, error) {
	grade, err := repos.OverallGrades.Get(ctx, studentID, classID)
	switch {
	case err == nil:
		return dto.NewOverallGradeResponse(grade), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return dto.NewUngradedResponse(studentID, classID), nil
	default:
		return dto.OverallGradeResponse{}, translateStoreError(err, "overall grade %d/%d", studentID, classID)
	}
}

func cacheField(filter dto.OverallGradeFilter) string {
	student, class := "*", "*"
	if filter.StudentID != nil {
		student = fmt.Sprint(*filter.StudentID)
	}
	if filter.ClassID != nil {
		class = fmt.Sprint(*filter.ClassID)
	}
	return "student=" + student + ":class=" + class
}
