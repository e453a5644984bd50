package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/models"
	"github.com/noah-isme/gema-gradebook/internal/repository"
)

// AssignmentService exposes assignment use cases.
type AssignmentService interface {
	List(ctx context.Context, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type assignmentService struct {
	gradebook *Gradebook
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(gradebook *Gradebook, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		gradebook: gradebook,
		validator: validate,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, int64, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, 0, validationError(err)
	}

	query := repository.AssignmentFilter{
		ClassID:  filter.ClassID,
		Type:     strings.TrimSpace(filter.Type),
		Search:   strings.TrimSpace(filter.Search),
		Sort:     filter.Sort,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}

	var (
		assignments []models.Assignment
		total       int64
	)
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		assignments, total, err = repos.Assignments.ListWithFilter(ctx, query)
		return translateStoreError(err, "list assignments")
	})
	if err != nil {
		return nil, 0, err
	}

	return dto.NewAssignmentResponseSlice(assignments), total, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	var assignment models.Assignment
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		assignment, err = requireAssignment(ctx, repos, id)
		return err
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentRequest) (dto.AssignmentResponse, error) {
	assignment, err := s.normalize(payload)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	_, err = s.gradebook.Mutate(ctx, "assignment.created", func(repos repository.Repositories, _ *PairSet) error {
		if _, err := requireClass(ctx, repos, assignment.ClassID); err != nil {
			return err
		}
		return translateStoreError(repos.Assignments.Create(ctx, &assignment), "assignment")
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("class_id", assignment.ClassID).Msg("assignment created")
	return dto.NewAssignmentResponse(assignment), nil
}

// Update replaces an assignment. Changing the maximum score recomputes every
// student scored on it. An assignment with recorded scores cannot move to a
// different class, and its maximum cannot drop below the highest score.
func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentRequest) (dto.AssignmentResponse, error) {
	changes, err := s.normalize(payload)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	var assignment models.Assignment
	_, err = s.gradebook.Mutate(ctx, "assignment.updated", func(repos repository.Repositories, affected *PairSet) error {
		current, err := requireAssignment(ctx, repos, id)
		if err != nil {
			return err
		}

		scores, err := repos.Scores.ListByAssignment(ctx, id)
		if err != nil {
			return translateStoreError(err, "scores of assignment %d", id)
		}

		if changes.ClassID != current.ClassID {
			if _, err := requireClass(ctx, repos, changes.ClassID); err != nil {
				return err
			}
			if len(scores) > 0 {
				return hasDependents("assignment %d has %d recorded score(s) and cannot move to class %d", id, len(scores), changes.ClassID)
			}
		}

		if changes.MaximumScore < current.MaximumScore {
			highest, found, err := repos.Scores.HighestForAssignment(ctx, id)
			if err != nil {
				return translateStoreError(err, "scores of assignment %d", id)
			}
			if found && highest > changes.MaximumScore {
				return invalidInput("maximum_score %.2f is below recorded score %.2f", changes.MaximumScore, highest)
			}
		}

		maximumChanged := changes.MaximumScore != current.MaximumScore
		current.ClassID = changes.ClassID
		current.AssignmentName = changes.AssignmentName
		current.AssignmentType = changes.AssignmentType
		current.MaximumScore = changes.MaximumScore
		current.DueDate = changes.DueDate
		if err := repos.Assignments.Update(ctx, &current); err != nil {
			return translateStoreError(err, "assignment %d", id)
		}

		if maximumChanged {
			for _, score := range scores {
				affected.Add(score.StudentID, current.ClassID)
			}
		}
		assignment = current
		return nil
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment updated")
	return dto.NewAssignmentResponse(assignment), nil
}

// Delete removes the assignment and its scores and recomputes every student
// who had one.
func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	_, err := s.gradebook.Mutate(ctx, "assignment.deleted", func(repos repository.Repositories, affected *PairSet) error {
		assignment, err := requireAssignment(ctx, repos, id)
		if err != nil {
			return err
		}

		scores, err := repos.Scores.ListByAssignment(ctx, id)
		if err != nil {
			return translateStoreError(err, "scores of assignment %d", id)
		}
		for _, score := range scores {
			affected.Add(score.StudentID, assignment.ClassID)
		}

		if err := repos.Scores.DeleteByAssignment(ctx, id); err != nil {
			return translateStoreError(err, "scores of assignment %d", id)
		}
		return translateStoreError(repos.Assignments.Delete(ctx, id), "assignment %d", id)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) normalize(payload dto.AssignmentRequest) (models.Assignment, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Assignment{}, validationError(err)
	}

	name, err := requireText("assignment_name", payload.AssignmentName)
	if err != nil {
		return models.Assignment{}, err
	}
	kind, err := requireText("assignment_type", payload.AssignmentType)
	if err != nil {
		return models.Assignment{}, err
	}
	dueDate, err := parseDueDate(payload.DueDate)
	if err != nil {
		return models.Assignment{}, err
	}
	if err := checkMaximum(payload.MaximumScore); err != nil {
		return models.Assignment{}, err
	}

	return models.Assignment{
		ClassID:        payload.ClassID,
		AssignmentName: name,
		AssignmentType: kind,
		MaximumScore:   payload.MaximumScore,
		DueDate:        dueDate,
	}, nil
}
