package models

import "time"

// Score is the points a student earned on one assignment.
type Score struct {
	StudentID    uint      `gorm:"primaryKey;autoIncrement:false" json:"student_id"`
	AssignmentID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"assignment_id"`
	Score        float64   `gorm:"not null" json:"score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ScoredAssignment joins a score with the maximum of its assignment.
type ScoredAssignment struct {
	StudentID    uint
	AssignmentID uint
	ClassID      uint
	Score        float64
	MaximumScore float64
}
