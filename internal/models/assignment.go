package models

import "time"

// Assignment is a gradable piece of work within a class.
type Assignment struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ClassID        uint       `gorm:"not null;index" json:"class_id"`
	AssignmentName string     `gorm:"size:255;not null" json:"assignment_name"`
	AssignmentType string     `gorm:"size:64;not null" json:"assignment_type"`
	MaximumScore   float64    `gorm:"not null" json:"maximum_score"`
	DueDate        *time.Time `json:"due_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsPastDue returns true when the assignment has a deadline that already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}
