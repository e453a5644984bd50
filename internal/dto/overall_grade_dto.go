package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// OverallGradeResponse is a student's aggregate in one class. Percentage and
// LetterGrade are null while the student has no recorded scores there.
type OverallGradeResponse struct {
	StudentID   uint       `json:"student_id"`
	ClassID     uint       `json:"class_id"`
	Graded      bool       `json:"graded"`
	Percentage  *float64   `json:"percentage"`
	LetterGrade *string    `json:"letter_grade"`
	Points      float64    `json:"points"`
	Possible    float64    `json:"possible"`
	GradedCount int        `json:"graded_count"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// OverallGradeFilter describes query string filters for listing overall grades.
type OverallGradeFilter struct {
	StudentID *uint `query:"student_id"`
	ClassID   *uint `query:"class_id"`
}

// GradeEventFilter describes query string filters for the grade audit log.
type GradeEventFilter struct {
	StudentID *uint `query:"student_id"`
	ClassID   *uint `query:"class_id"`
	Limit     int   `query:"limit" validate:"omitempty,gte=1,max=500"`
}

// GradeEventResponse serializes an audit entry.
type GradeEventResponse struct {
	ID        uint                   `json:"id"`
	StudentID uint                   `json:"student_id"`
	ClassID   uint                   `json:"class_id"`
	Trigger   string                 `json:"trigger"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewOverallGradeResponse converts a stored aggregate into a DTO.
func NewOverallGradeResponse(model models.OverallGrade) OverallGradeResponse {
	percentage := model.Percentage
	letter := model.LetterGrade
	updatedAt := model.UpdatedAt
	return OverallGradeResponse{
		StudentID:   model.StudentID,
		ClassID:     model.ClassID,
		Graded:      true,
		Percentage:  &percentage,
		LetterGrade: &letter,
		Points:      model.Points,
		Possible:    model.Possible,
		GradedCount: model.GradedCount,
		UpdatedAt:   &updatedAt,
	}
}

// NewUngradedResponse describes an enrolled pair with no recorded scores.
func NewUngradedResponse(studentID, classID uint) OverallGradeResponse {
	return OverallGradeResponse{StudentID: studentID, ClassID: classID}
}

// NewOverallGradeResponseSlice converts stored aggregates into DTOs.
func NewOverallGradeResponseSlice(grades []models.OverallGrade) []OverallGradeResponse {
	responses := make([]OverallGradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewOverallGradeResponse(grade))
	}

	return responses
}

// NewGradeEventResponse converts an audit entry into a DTO.
func NewGradeEventResponse(model models.GradeEvent) GradeEventResponse {
	payload := map[string]interface{}(model.Payload)
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return GradeEventResponse{
		ID:        model.ID,
		StudentID: model.StudentID,
		ClassID:   model.ClassID,
		Trigger:   model.Trigger,
		Payload:   payload,
		CreatedAt: model.CreatedAt,
	}
}

// NewGradeEventResponseSlice converts audit entries into DTOs.
func NewGradeEventResponseSlice(events []models.GradeEvent) []GradeEventResponse {
	responses := make([]GradeEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, NewGradeEventResponse(event))
	}

	return responses
}
