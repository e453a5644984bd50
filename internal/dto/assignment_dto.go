package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// AssignmentRequest is the payload for creating or replacing an assignment.
// DueDate accepts RFC3339, "2006-01-02T15:04:05" or "2006-01-02".
type AssignmentRequest struct {
	ClassID        uint    `json:"class_id" validate:"required,gt=0"`
	AssignmentName string  `json:"assignment_name" validate:"required,max=255"`
	AssignmentType string  `json:"assignment_type" validate:"required,max=64"`
	MaximumScore   float64 `json:"maximum_score" validate:"gt=0"`
	DueDate        *string `json:"due_date"`
}

// AssignmentFilter describes query string filters for listing assignments.
type AssignmentFilter struct {
	ClassID  *uint  `query:"class_id"`
	Type     string `query:"type"`
	Search   string `query:"search"`
	Sort     string `query:"sort"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,max=200"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID             uint       `json:"id"`
	ClassID        uint       `json:"class_id"`
	AssignmentName string     `json:"assignment_name"`
	AssignmentType string     `json:"assignment_type"`
	MaximumScore   float64    `json:"maximum_score"`
	DueDate        *time.Time `json:"due_date"`
	PastDue        bool       `json:"past_due"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:             model.ID,
		ClassID:        model.ClassID,
		AssignmentName: model.AssignmentName,
		AssignmentType: model.AssignmentType,
		MaximumScore:   model.MaximumScore,
		DueDate:        model.DueDate,
		PastDue:        model.IsPastDue(time.Now()),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
