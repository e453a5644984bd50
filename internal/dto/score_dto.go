package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// ScoreCreateRequest records a student's score on an assignment.
type ScoreCreateRequest struct {
	StudentID    uint     `json:"student_id" validate:"required,gt=0"`
	AssignmentID uint     `json:"assignment_id" validate:"required,gt=0"`
	Score        *float64 `json:"score" validate:"required,gte=0"`
}

// ScoreUpdateRequest replaces the value of an existing score.
type ScoreUpdateRequest struct {
	Score *float64 `json:"score" validate:"required,gte=0"`
}

// ScoreImportRequest upserts a batch of scores atomically.
type ScoreImportRequest struct {
	Scores []ScoreCreateRequest `json:"scores" validate:"required,min=1,max=1000,dive"`
}

// ScoreFilter describes query string filters for listing scores.
type ScoreFilter struct {
	StudentID    *uint `query:"student_id"`
	AssignmentID *uint `query:"assignment_id"`
	ClassID      *uint `query:"class_id"`
}

// ScoreResponse is the serialized score returned to API clients.
type ScoreResponse struct {
	StudentID    uint      `json:"student_id"`
	AssignmentID uint      `json:"assignment_id"`
	Score        float64   `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ScoreImportResponse reports the outcome of a batch import.
type ScoreImportResponse struct {
	Imported      int                    `json:"imported"`
	OverallGrades []OverallGradeResponse `json:"overall_grades"`
}

// NewScoreResponse converts a model into a DTO.
func NewScoreResponse(model models.Score) ScoreResponse {
	return ScoreResponse{
		StudentID:    model.StudentID,
		AssignmentID: model.AssignmentID,
		Score:        model.Score,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewScoreResponseSlice converts score models into DTOs.
func NewScoreResponseSlice(scores []models.Score) []ScoreResponse {
	responses := make([]ScoreResponse, 0, len(scores))
	for _, score := range scores {
		responses = append(responses, NewScoreResponse(score))
	}

	return responses
}
