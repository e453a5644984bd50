package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// ClassRequest is the payload for creating or replacing a class.
type ClassRequest struct {
	ClassName   string  `json:"class_name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ClassResponse is the serialized class returned to API clients.
type ClassResponse struct {
	ID          uint      `json:"id"`
	ClassName   string    `json:"class_name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClassReportResponse summarizes how a class is doing.
type ClassReportResponse struct {
	ClassID            uint            `json:"class_id"`
	ClassName          string          `json:"class_name"`
	EnrolledStudents   int             `json:"enrolled_students"`
	GradedStudents     int             `json:"graded_students"`
	Assignments        int             `json:"assignments"`
	ClassAverage       *float64        `json:"class_average"`
	LetterDistribution map[string]int  `json:"letter_distribution"`
	AtRisk             []AtRiskStudent `json:"at_risk"`
}

// AtRiskStudent is a student whose overall grade is below the at-risk line.
type AtRiskStudent struct {
	StudentID   uint    `json:"student_id"`
	Name        string  `json:"name"`
	Percentage  float64 `json:"percentage"`
	LetterGrade string  `json:"letter_grade"`
}

// NewClassResponse converts a model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	return ClassResponse{
		ID:          model.ID,
		ClassName:   model.ClassName,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewClassResponseSlice converts class models into DTOs.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}

	return responses
}
