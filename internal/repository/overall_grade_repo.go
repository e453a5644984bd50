package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// OverallGradeFilter narrows overall grade listings.
type OverallGradeFilter struct {
	StudentID *uint
	ClassID   *uint
}

// OverallGradeRepository stores the materialized aggregates. Only the grade
// engine writes through Upsert and Delete.
type OverallGradeRepository interface {
	List(ctx context.Context, filter OverallGradeFilter) ([]models.OverallGrade, error)
	Get(ctx context.Context, studentID, classID uint) (models.OverallGrade, error)
	ListPairs(ctx context.Context) ([]models.OverallGrade, error)
	Upsert(ctx context.Context, grade *models.OverallGrade) error
	Delete(ctx context.Context, studentID, classID uint) error
}

type overallGradeRepository struct {
	db *gorm.DB
}

// NewOverallGradeRepository constructs the repository.
func NewOverallGradeRepository(db *gorm.DB) OverallGradeRepository {
	return &overallGradeRepository{db: db}
}

func (r *overallGradeRepository) List(ctx context.Context, filter OverallGradeFilter) ([]models.OverallGrade, error) {
	query := r.db.WithContext(ctx).Model(&models.OverallGrade{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}

	grades := make([]models.OverallGrade, 0)
	if err := query.Order("student_id ASC, class_id ASC").Find(&grades).Error; err != nil {
		return nil, err
	}

	return grades, nil
}

func (r *overallGradeRepository) Get(ctx context.Context, studentID, classID uint) (models.OverallGrade, error) {
	var grade models.OverallGrade
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		First(&grade).Error; err != nil {
		return models.OverallGrade{}, err
	}

	return grade, nil
}

// ListPairs returns every stored row with only its key columns populated.
func (r *overallGradeRepository) ListPairs(ctx context.Context) ([]models.OverallGrade, error) {
	pairs := make([]models.OverallGrade, 0)
	if err := r.db.WithContext(ctx).
		Select("student_id", "class_id").
		Order("student_id ASC, class_id ASC").
		Find(&pairs).Error; err != nil {
		return nil, err
	}

	return pairs, nil
}

func (r *overallGradeRepository) Upsert(ctx context.Context, grade *models.OverallGrade) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "class_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"percentage", "letter_grade", "points", "possible", "graded_count", "updated_at"}),
	}).Create(grade).Error
}

func (r *overallGradeRepository) Delete(ctx context.Context, studentID, classID uint) error {
	return requireAffected(r.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Delete(&models.OverallGrade{}))
}
