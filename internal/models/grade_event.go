package models

import (
	"time"

	"gorm.io/datatypes"
)

// GradeEvent is an audit entry written whenever a stored overall grade changes.
type GradeEvent struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	StudentID uint              `gorm:"not null;index:idx_grade_events_pair" json:"student_id"`
	ClassID   uint              `gorm:"not null;index:idx_grade_events_pair" json:"class_id"`
	Trigger   string            `gorm:"size:64;not null" json:"trigger"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}
