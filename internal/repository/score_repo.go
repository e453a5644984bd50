package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

// ScoreFilter narrows score listings.
type ScoreFilter struct {
	StudentID    *uint
	AssignmentID *uint
	ClassID      *uint
}

// ScoreRepository defines data operations for scores.
type ScoreRepository interface {
	List(ctx context.Context, filter ScoreFilter) ([]models.Score, error)
	Get(ctx context.Context, studentID, assignmentID uint) (models.Score, error)
	Create(ctx context.Context, score *models.Score) error
	Update(ctx context.Context, score *models.Score) error
	Upsert(ctx context.Context, scores []models.Score) error
	Delete(ctx context.Context, studentID, assignmentID uint) error
	ListScoredAssignments(ctx context.Context, studentID, classID uint) ([]models.ScoredAssignment, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Score, error)
	HighestForAssignment(ctx context.Context, assignmentID uint) (float64, bool, error)
	DeleteByAssignment(ctx context.Context, assignmentID uint) error
	DeleteByStudent(ctx context.Context, studentID uint) error
	DeleteByClass(ctx context.Context, classID uint) error
	DeleteForStudentInClass(ctx context.Context, studentID, classID uint) error
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository instantiates the repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) List(ctx context.Context, filter ScoreFilter) ([]models.Score, error) {
	query := r.db.WithContext(ctx).Model(&models.Score{})

	if filter.StudentID != nil {
		query = query.Where("scores.student_id = ?", *filter.StudentID)
	}

	if filter.AssignmentID != nil {
		query = query.Where("scores.assignment_id = ?", *filter.AssignmentID)
	}

	if filter.ClassID != nil {
		query = query.Where("scores.assignment_id IN (?)", r.classAssignments(*filter.ClassID))
	}

	scores := make([]models.Score, 0)
	if err := query.Order("scores.student_id ASC, scores.assignment_id ASC").Find(&scores).Error; err != nil {
		return nil, err
	}

	return scores, nil
}

func (r *scoreRepository) Get(ctx context.Context, studentID, assignmentID uint) (models.Score, error) {
	var score models.Score
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id = ?", studentID, assignmentID).
		First(&score).Error; err != nil {
		return models.Score{}, err
	}

	return score, nil
}

func (r *scoreRepository) Create(ctx context.Context, score *models.Score) error {
	return r.db.WithContext(ctx).Create(score).Error
}

func (r *scoreRepository) Update(ctx context.Context, score *models.Score) error {
	result := r.db.WithContext(ctx).Model(&models.Score{}).
		Where("student_id = ? AND assignment_id = ?", score.StudentID, score.AssignmentID).
		Update("score", score.Score)
	if err := requireAffected(result); err != nil {
		return err
	}

	updated, err := r.Get(ctx, score.StudentID, score.AssignmentID)
	if err != nil {
		return err
	}
	*score = updated
	return nil
}

// Upsert writes a batch of scores, replacing the value of rows that already exist.
func (r *scoreRepository) Upsert(ctx context.Context, scores []models.Score) error {
	if len(scores) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "assignment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&scores).Error
}

func (r *scoreRepository) Delete(ctx context.Context, studentID, assignmentID uint) error {
	return requireAffected(r.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id = ?", studentID, assignmentID).
		Delete(&models.Score{}))
}

// ListScoredAssignments returns every score the student holds in the class
// joined with the assignment maximum, ordered by assignment.
func (r *scoreRepository) ListScoredAssignments(ctx context.Context, studentID, classID uint) ([]models.ScoredAssignment, error) {
	rows := make([]models.ScoredAssignment, 0)
	err := r.db.WithContext(ctx).Table("scores").
		Select("scores.student_id, scores.assignment_id, assignments.class_id, scores.score, assignments.maximum_score").
		Joins("JOIN assignments ON assignments.id = scores.assignment_id").
		Where("scores.student_id = ? AND assignments.class_id = ?", studentID, classID).
		Order("scores.assignment_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *scoreRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Score, error) {
	scores := make([]models.Score, 0)
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("student_id ASC").
		Find(&scores).Error; err != nil {
		return nil, err
	}

	return scores, nil
}

// HighestForAssignment reports the largest recorded score, if any.
func (r *scoreRepository) HighestForAssignment(ctx context.Context, assignmentID uint) (float64, bool, error) {
	var highest struct {
		Value *float64
	}
	err := r.db.WithContext(ctx).Model(&models.Score{}).
		Select("MAX(score) AS value").
		Where("assignment_id = ?", assignmentID).
		Scan(&highest).Error
	if err != nil {
		return 0, false, err
	}
	if highest.Value == nil {
		return 0, false, nil
	}

	return *highest.Value, true, nil
}

func (r *scoreRepository) DeleteByAssignment(ctx context.Context, assignmentID uint) error {
	return r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).Delete(&models.Score{}).Error
}

func (r *scoreRepository) DeleteByStudent(ctx context.Context, studentID uint) error {
	return r.db.WithContext(ctx).Where("student_id = ?", studentID).Delete(&models.Score{}).Error
}

func (r *scoreRepository) DeleteByClass(ctx context.Context, classID uint) error {
	return r.db.WithContext(ctx).
		Where("assignment_id IN (?)", r.classAssignments(classID)).
		Delete(&models.Score{}).Error
}

func (r *scoreRepository) DeleteForStudentInClass(ctx context.Context, studentID, classID uint) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id IN (?)", studentID, r.classAssignments(classID)).
		Delete(&models.Score{}).Error
}

func (r *scoreRepository) classAssignments(classID uint) *gorm.DB {
	return r.db.Session(&gorm.Session{NewDB: true}).Model(&models.Assignment{}).Select("id").Where("class_id = ?", classID)
}
