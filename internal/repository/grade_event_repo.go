package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// GradeEventFilter narrows the grade change audit log.
type GradeEventFilter struct {
	StudentID *uint
	ClassID   *uint
	Limit     int
}

// GradeEventRepository persists the overall grade audit log.
type GradeEventRepository interface {
	Create(ctx context.Context, event *models.GradeEvent) error
	List(ctx context.Context, filter GradeEventFilter) ([]models.GradeEvent, error)
}

type gradeEventRepository struct {
	db *gorm.DB
}

// NewGradeEventRepository constructs the repository.
func NewGradeEventRepository(db *gorm.DB) GradeEventRepository {
	return &gradeEventRepository{db: db}
}

func (r *gradeEventRepository) Create(ctx context.Context, event *models.GradeEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gradeEventRepository) List(ctx context.Context, filter GradeEventFilter) ([]models.GradeEvent, error) {
	query := r.db.WithContext(ctx).Model(&models.GradeEvent{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	events := make([]models.GradeEvent, 0)
	if err := query.Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
