package models

import "time"

// Enrollment records that a student is a member of a class.
type Enrollment struct {
	StudentID uint      `gorm:"primaryKey;autoIncrement:false" json:"student_id"`
	ClassID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"class_id"`
	CreatedAt time.Time `json:"created_at"`
}
