package models

import "time"

// OverallGrade is the materialized aggregate of a student's scores in a class.
// Rows exist only for pairs with at least one recorded score.
type OverallGrade struct {
	StudentID   uint      `gorm:"primaryKey;autoIncrement:false" json:"student_id"`
	ClassID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"class_id"`
	Percentage  float64   `gorm:"not null" json:"percentage"`
	LetterGrade string    `gorm:"size:8;not null" json:"letter_grade"`
	Points      float64   `gorm:"not null" json:"points"`
	Possible    float64   `gorm:"not null" json:"possible"`
	GradedCount int       `gorm:"not null" json:"graded_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}
