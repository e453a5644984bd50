package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/models"
	"github.com/noah-isme/gema-gradebook/internal/repository"
)

// ScoreService records scores and keeps overall grades current.
type ScoreService interface {
	List(ctx context.Context, filter dto.ScoreFilter) ([]dto.ScoreResponse, error)
	Get(ctx context.Context, studentID, assignmentID uint) (dto.ScoreResponse, error)
	Create(ctx context.Context, payload dto.ScoreCreateRequest) (dto.ScoreResponse, error)
	Update(ctx context.Context, studentID, assignmentID uint, payload dto.ScoreUpdateRequest) (dto.ScoreResponse, error)
	Delete(ctx context.Context, studentID, assignmentID uint) error
	Import(ctx context.Context, payload dto.ScoreImportRequest) (dto.ScoreImportResponse, error)
}

type scoreService struct {
	gradebook *Gradebook
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewScoreService builds the score service.
func NewScoreService(gradebook *Gradebook, validate *validator.Validate, logger zerolog.Logger) ScoreService {
	return &scoreService{
		gradebook: gradebook,
		validator: validate,
		logger:    logger.With().Str("component", "score_service").Logger(),
	}
}

func (s *scoreService) List(ctx context.Context, filter dto.ScoreFilter) ([]dto.ScoreResponse, error) {
	var scores []models.Score
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		scores, err = repos.Scores.List(ctx, repository.ScoreFilter{
			StudentID:    filter.StudentID,
			AssignmentID: filter.AssignmentID,
			ClassID:      filter.ClassID,
		})
		return translateStoreError(err, "list scores")
	})
	if err != nil {
		return nil, err
	}

	return dto.NewScoreResponseSlice(scores), nil
}

func (s *scoreService) Get(ctx context.Context, studentID, assignmentID uint) (dto.ScoreResponse, error) {
	var score models.Score
	err := s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		var err error
		score, err = repos.Scores.Get(ctx, studentID, assignmentID)
		return translateStoreError(err, "score %d/%d", studentID, assignmentID)
	})
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	return dto.NewScoreResponse(score), nil
}

// Create records a new score. The student must be enrolled in the
// assignment's class and may hold only one score per assignment.
func (s *scoreService) Create(ctx context.Context, payload dto.ScoreCreateRequest) (dto.ScoreResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreResponse{}, validationError(err)
	}

	score := models.Score{StudentID: payload.StudentID, AssignmentID: payload.AssignmentID, Score: *payload.Score}
	_, err := s.gradebook.Mutate(ctx, "score.created", func(repos repository.Repositories, affected *PairSet) error {
		assignment, err := s.admissible(ctx, repos, score)
		if err != nil {
			return err
		}
		if err := repos.Scores.Create(ctx, &score); err != nil {
			return translateStoreError(err, "score %d/%d", score.StudentID, score.AssignmentID)
		}
		affected.Add(score.StudentID, assignment.ClassID)
		return nil
	})
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", score.StudentID).
		Uint("assignment_id", score.AssignmentID).
		Float64("score", score.Score).
		Msg("score recorded")
	return dto.NewScoreResponse(score), nil
}

func (s *scoreService) Update(ctx context.Context, studentID, assignmentID uint, payload dto.ScoreUpdateRequest) (dto.ScoreResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreResponse{}, validationError(err)
	}

	score := models.Score{StudentID: studentID, AssignmentID: assignmentID, Score: *payload.Score}
	_, err := s.gradebook.Mutate(ctx, "score.updated", func(repos repository.Repositories, affected *PairSet) error {
		if _, err := repos.Scores.Get(ctx, studentID, assignmentID); err != nil {
			return translateStoreError(err, "score %d/%d", studentID, assignmentID)
		}
		assignment, err := requireAssignment(ctx, repos, assignmentID)
		if err != nil {
			return err
		}
		if err := checkScore(score.Score, assignment); err != nil {
			return err
		}
		if err := repos.Scores.Update(ctx, &score); err != nil {
			return translateStoreError(err, "score %d/%d", studentID, assignmentID)
		}
		affected.Add(studentID, assignment.ClassID)
		return nil
	})
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("assignment_id", assignmentID).
		Float64("score", score.Score).
		Msg("score updated")
	return dto.NewScoreResponse(score), nil
}

func (s *scoreService) Delete(ctx context.Context, studentID, assignmentID uint) error {
	_, err := s.gradebook.Mutate(ctx, "score.deleted", func(repos repository.Repositories, affected *PairSet) error {
		assignment, err := requireAssignment(ctx, repos, assignmentID)
		if err != nil {
			return err
		}
		if err := repos.Scores.Delete(ctx, studentID, assignmentID); err != nil {
			return translateStoreError(err, "score %d/%d", studentID, assignmentID)
		}
		affected.Add(studentID, assignment.ClassID)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("assignment_id", assignmentID).Msg("score deleted")
	return nil
}

// Import upserts a batch of scores in one transaction. Either every row is
// written and every affected overall grade recomputed once, or nothing is.
func (s *scoreService) Import(ctx context.Context, payload dto.ScoreImportRequest) (dto.ScoreImportResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreImportResponse{}, validationError(err)
	}

	scores := make([]models.Score, 0, len(payload.Scores))
	seen := make(map[[2]uint]int, len(payload.Scores))
	for index, item := range payload.Scores {
		key := [2]uint{item.StudentID, item.AssignmentID}
		if first, ok := seen[key]; ok {
			return dto.ScoreImportResponse{}, invalidInput("scores[%d] repeats student %d and assignment %d from scores[%d]", index, item.StudentID, item.AssignmentID, first)
		}
		seen[key] = index
		scores = append(scores, models.Score{StudentID: item.StudentID, AssignmentID: item.AssignmentID, Score: *item.Score})
	}

	var pairs []Pair
	_, err := s.gradebook.Mutate(ctx, "score.imported", func(repos repository.Repositories, affected *PairSet) error {
		for index, score := range scores {
			assignment, err := s.admissible(ctx, repos, score)
			if err != nil {
				return prefixDetail(err, "scores[%d]", index)
			}
			affected.Add(score.StudentID, assignment.ClassID)
		}

		if err := repos.Scores.Upsert(ctx, scores); err != nil {
			return translateStoreError(err, "import scores")
		}
		pairs = affected.Sorted()
		return nil
	})
	if err != nil {
		return dto.ScoreImportResponse{}, err
	}

	grades := make([]dto.OverallGradeResponse, 0, len(pairs))
	err = s.gradebook.Read(ctx, func(repos repository.Repositories) error {
		for _, pair := range pairs {
			grade, err := lookupOverallGrade(ctx, repos, pair.StudentID, pair.ClassID)
			if err != nil {
				return err
			}
			grades = append(grades, grade)
		}
		return nil
	})
	if err != nil {
		return dto.ScoreImportResponse{}, err
	}

	s.logger.Info().Int("scores", len(scores)).Int("pairs", len(pairs)).Msg("scores imported")
	return dto.ScoreImportResponse{Imported: len(scores), OverallGrades: grades}, nil
}

// admissible checks that a score may be stored: the student and assignment
// exist, the student is enrolled in the assignment's class and the value is
// within range.
func (s *scoreService) admissible(ctx context.Context, repos repository.Repositories, score models.Score) (models.Assignment, error) {
	if _, err := requireStudent(ctx, repos, score.StudentID); err != nil {
		return models.Assignment{}, err
	}
	assignment, err := requireAssignment(ctx, repos, score.AssignmentID)
	if err != nil {
		return models.Assignment{}, err
	}
	if err := requireEnrollment(ctx, repos, score.StudentID, assignment.ClassID); err != nil {
		return models.Assignment{}, err
	}
	if err := checkScore(score.Score, assignment); err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}
