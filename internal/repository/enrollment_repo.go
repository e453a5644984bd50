package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// EnrollmentRepository manages the student/class join table.
type EnrollmentRepository interface {
	List(ctx context.Context) ([]models.Enrollment, error)
	ListByClass(ctx context.Context, classID uint) ([]models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	Exists(ctx context.Context, studentID, classID uint) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID, classID uint) error
	DeleteByStudent(ctx context.Context, studentID uint) error
	DeleteByClass(ctx context.Context, classID uint) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) List(ctx context.Context) ([]models.Enrollment, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *enrollmentRepository) ListByClass(ctx context.Context, classID uint) ([]models.Enrollment, error) {
	return r.find(r.db.WithContext(ctx).Where("class_id = ?", classID))
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	return r.find(r.db.WithContext(ctx).Where("student_id = ?", studentID))
}

func (r *enrollmentRepository) find(query *gorm.DB) ([]models.Enrollment, error) {
	enrollments := make([]models.Enrollment, 0)
	if err := query.Order("student_id ASC, class_id ASC").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, studentID, classID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) Delete(ctx context.Context, studentID, classID uint) error {
	return requireAffected(r.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Delete(&models.Enrollment{}))
}

func (r *enrollmentRepository) DeleteByStudent(ctx context.Context, studentID uint) error {
	return r.db.WithContext(ctx).Where("student_id = ?", studentID).Delete(&models.Enrollment{}).Error
}

func (r *enrollmentRepository) DeleteByClass(ctx context.Context, classID uint) error {
	return r.db.WithContext(ctx).Where("class_id = ?", classID).Delete(&models.Enrollment{}).Error
}
