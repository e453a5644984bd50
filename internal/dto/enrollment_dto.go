package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// EnrollmentRequest enrolls a student in a class.
type EnrollmentRequest struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
	ClassID   uint `json:"class_id" validate:"required,gt=0"`
}

// EnrollmentResponse is the serialized enrollment returned to API clients.
type EnrollmentResponse struct {
	StudentID uint      `json:"student_id"`
	ClassID   uint      `json:"class_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		StudentID: model.StudentID,
		ClassID:   model.ClassID,
		CreatedAt: model.CreatedAt,
	}
}

// NewEnrollmentResponseSlice converts enrollment models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
