package service

import (
	"context"
	"html"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/gema-gradebook/internal/models"
	"github.com/noah-isme/gema-gradebook/internal/repository"
)

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup and surrounding whitespace from user supplied text.
func cleanText(value string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(value)))
}

// cleanOptional maps blank optional text to nil.
func cleanOptional(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := cleanText(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func requireText(field, value string) (string, error) {
	cleaned := cleanText(value)
	if cleaned == "" {
		return "", invalidInput("%s must not be empty", field)
	}
	return cleaned, nil
}

var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDueDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(*value)
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, invalidInput("due_date %q is not a valid date", raw)
}

func checkScore(value float64, assignment models.Assignment) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalidInput("score must be a finite number")
	}
	if value < 0 {
		return invalidInput("score must not be negative")
	}
	if value > assignment.MaximumScore {
		return invalidInput("score %.2f exceeds maximum score %.2f of assignment %d", value, assignment.MaximumScore, assignment.ID)
	}
	return nil
}

func checkMaximum(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return invalidInput("maximum_score must be a positive number")
	}
	return nil
}

func requireStudent(ctx context.Context, repos repository.Repositories, id uint) (models.Student, error) {
	student, err := repos.Students.GetByID(ctx, id)
	if err != nil {
		return models.Student{}, translateStoreError(err, "student %d", id)
	}
	return student, nil
}

func requireClass(ctx context.Context, repos repository.Repositories, id uint) (models.Class, error) {
	class, err := repos.Classes.GetByID(ctx, id)
	if err != nil {
		return models.Class{}, translateStoreError(err, "class %d", id)
	}
	return class, nil
}

func requireAssignment(ctx context.Context, repos repository.Repositories, id uint) (models.Assignment, error) {
	assignment, err := repos.Assignments.GetByID(ctx, id)
	if err != nil {
		return models.Assignment{}, translateStoreError(err, "assignment %d", id)
	}
	return assignment, nil
}

func requireEnrollment(ctx context.Context, repos repository.Repositories, studentID, classID uint) error {
	enrolled, err := repos.Enrollments.Exists(ctx, studentID, classID)
	if err != nil {
		return translateStoreError(err, "enrollment %d/%d", studentID, classID)
	}
	if !enrolled {
		return notFound("student %d is not enrolled in class %d", studentID, classID)
	}
	return nil
}
