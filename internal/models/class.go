package models

import "time"

// Class is a course students enroll in and assignments belong to.
type Class struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassName   string    `gorm:"size:255;not null" json:"class_name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
