package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/models"
)

func TestStudentServiceValidatesAndSanitizes(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.students.Create(ctx, dto.StudentRequest{FirstName: "   ", LastName: "Lovelace"})
	require.ErrorIs(t, err, ErrInvalidInput)

	bad := "not-an-email"
	_, err = h.students.Create(ctx, dto.StudentRequest{FirstName: "Ada", LastName: "Lovelace", Email: &bad})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "email")

	blank := ""
	student, err := h.students.Create(ctx, dto.StudentRequest{FirstName: "<b>Ada</b>", LastName: "Lovelace & Co", Email: &blank})
	require.NoError(t, err)
	require.Equal(t, "Ada", student.FirstName)
	require.Equal(t, "Lovelace & Co", student.LastName)
	require.Nil(t, student.Email)
}

func TestStudentServiceCrud(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	students, err := h.students.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, students)
	require.Empty(t, students)

	id := h.student(t, "Ada")
	email := "ada@example.com"
	updated, err := h.students.Update(ctx, id, dto.StudentRequest{FirstName: "Ada", LastName: "King", Email: &email})
	require.NoError(t, err)
	require.Equal(t, "King", updated.LastName)
	require.Equal(t, email, *updated.Email)

	_, err = h.students.Update(ctx, 999, dto.StudentRequest{FirstName: "A", LastName: "B"})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, h.students.Delete(ctx, id))
	_, err = h.students.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, h.students.Delete(ctx, id), ErrNotFound)
}

func TestStudentDeleteCascades(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	h.score(t, s.x, s.a, 90)
	h.score(t, s.y, s.a, 45)

	require.NoError(t, h.students.Delete(ctx, s.x))

	var scores, enrollments, grades int64
	require.NoError(t, h.db.Model(&models.Score{}).Where("student_id = ?", s.x).Count(&scores).Error)
	require.NoError(t, h.db.Model(&models.Enrollment{}).Where("student_id = ?", s.x).Count(&enrollments).Error)
	require.NoError(t, h.db.Model(&models.OverallGrade{}).Where("student_id = ?", s.x).Count(&grades).Error)
	require.Zero(t, scores)
	require.Zero(t, enrollments)
	require.Zero(t, grades)

	require.True(t, h.grade(t, s.y, s.c).Graded)
}

func TestClassDeleteCascades(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	other := h.class(t, "Drama")
	play := h.assignment(t, other, "Play", 10)
	h.enroll(t, s.x, other)
	h.score(t, s.x, play, 8)
	h.score(t, s.x, s.a, 90)

	require.NoError(t, h.classes.Delete(ctx, s.c))

	_, err := h.assignments.Get(ctx, s.a)
	require.ErrorIs(t, err, ErrNotFound)

	scores, err := h.scores.List(ctx, dto.ScoreFilter{})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Equal(t, play, scores[0].AssignmentID)

	grades, err := h.grades.List(ctx, dto.OverallGradeFilter{})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	require.Equal(t, other, grades[0].ClassID)

	_, err = h.grades.Get(ctx, s.x, s.c)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClassReport(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	z := h.student(t, "Zed")
	h.enroll(t, z, s.c)

	h.score(t, s.x, s.a, 90)
	h.score(t, s.x, s.b, 40)
	h.score(t, s.y, s.a, 45)

	report, err := h.classes.Report(ctx, s.c)
	require.NoError(t, err)
	require.Equal(t, "Chemistry", report.ClassName)
	require.Equal(t, 3, report.EnrolledStudents)
	require.Equal(t, 2, report.GradedStudents)
	require.Equal(t, 2, report.Assignments)
	require.NotNil(t, report.ClassAverage)
	require.InDelta(t, 65.83, *report.ClassAverage, 0.01)
	require.Equal(t, map[string]int{"B": 1, "F": 1}, report.LetterDistribution)
	require.Len(t, report.AtRisk, 1)
	require.Equal(t, s.y, report.AtRisk[0].StudentID)
	require.Equal(t, "Yolanda Tester", report.AtRisk[0].Name)

	_, err = h.classes.Report(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClassReportWithoutGradesHasNoAverage(t *testing.T) {
	h := newHarness(t, nil)
	class := h.class(t, "Empty")

	report, err := h.classes.Report(context.Background(), class)
	require.NoError(t, err)
	require.Nil(t, report.ClassAverage)
	require.Empty(t, report.AtRisk)
}

func TestAssignmentDeleteCascadesAndRecomputes(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	h.score(t, s.x, s.a, 90)
	h.score(t, s.x, s.b, 40)
	h.score(t, s.y, s.a, 45)

	require.NoError(t, h.assignments.Delete(ctx, s.a))

	require.InDelta(t, 80.0, *h.grade(t, s.x, s.c).Percentage, 1e-9)
	require.False(t, h.grade(t, s.y, s.c).Graded)
	require.ErrorIs(t, h.assignments.Delete(ctx, s.a), ErrNotFound)
}

func TestAssignmentMaximumChangeRecomputes(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	h.score(t, s.y, s.a, 45)

	_, err := h.assignments.Update(ctx, s.a, dto.AssignmentRequest{ClassID: s.c, AssignmentName: "A", AssignmentType: "exam", MaximumScore: 50})
	require.NoError(t, err)
	grade := h.grade(t, s.y, s.c)
	require.InDelta(t, 90.0, *grade.Percentage, 1e-9)
	require.Equal(t, "A", *grade.LetterGrade)

	_, err = h.assignments.Update(ctx, s.a, dto.AssignmentRequest{ClassID: s.c, AssignmentName: "A", AssignmentType: "exam", MaximumScore: 40})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.InDelta(t, 90.0, *h.grade(t, s.y, s.c).Percentage, 1e-9)
}

func TestAssignmentWithScoresCannotChangeClass(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	other := h.class(t, "Drama")

	moved, err := h.assignments.Update(ctx, s.b, dto.AssignmentRequest{ClassID: other, AssignmentName: "B", AssignmentType: "quiz", MaximumScore: 50})
	require.NoError(t, err)
	require.Equal(t, other, moved.ClassID)

	h.score(t, s.x, s.a, 90)
	_, err = h.assignments.Update(ctx, s.a, dto.AssignmentRequest{ClassID: other, AssignmentName: "A", AssignmentType: "quiz", MaximumScore: 100})
	require.ErrorIs(t, err, ErrHasDependents)

	_, err = h.assignments.Update(ctx, s.a, dto.AssignmentRequest{ClassID: 999, AssignmentName: "A", AssignmentType: "quiz", MaximumScore: 100})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAssignmentCreateValidation(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	class := h.class(t, "Physics")

	_, err := h.assignments.Create(ctx, dto.AssignmentRequest{ClassID: class, AssignmentName: "Lab", AssignmentType: "lab", MaximumScore: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	badDate := "next tuesday"
	_, err = h.assignments.Create(ctx, dto.AssignmentRequest{ClassID: class, AssignmentName: "Lab", AssignmentType: "lab", MaximumScore: 10, DueDate: &badDate})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.assignments.Create(ctx, dto.AssignmentRequest{ClassID: 999, AssignmentName: "Lab", AssignmentType: "lab", MaximumScore: 10})
	require.ErrorIs(t, err, ErrNotFound)

	due := "2999-11-02"
	created, err := h.assignments.Create(ctx, dto.AssignmentRequest{ClassID: class, AssignmentName: "Lab", AssignmentType: "lab", MaximumScore: 10, DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, created.DueDate)
	require.Equal(t, 2, created.DueDate.Day())
	require.False(t, created.PastDue)

	past := "2001-01-15T08:30:00Z"
	overdue, err := h.assignments.Create(ctx, dto.AssignmentRequest{ClassID: class, AssignmentName: "Essay", AssignmentType: "homework", MaximumScore: 20, DueDate: &past})
	require.NoError(t, err)
	require.True(t, overdue.PastDue)

	list, total, err := h.assignments.List(ctx, dto.AssignmentFilter{ClassID: &class})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, list, 2)
}

func TestEnrollmentRules(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()

	_, err := h.enrollments.Enroll(ctx, dto.EnrollmentRequest{StudentID: s.x, ClassID: s.c})
	require.ErrorIs(t, err, ErrNotUnique)

	_, err = h.enrollments.Enroll(ctx, dto.EnrollmentRequest{StudentID: 999, ClassID: s.c})
	require.ErrorIs(t, err, ErrNotFound)

	enrollments, err := h.enrollments.List(ctx)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	require.Equal(t, s.x, enrollments[0].StudentID)
}

func TestUnenrollRemovesScoresAndGrade(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	h.score(t, s.x, s.a, 90)

	require.NoError(t, h.enrollments.Unenroll(ctx, s.x, s.c))

	scores, err := h.scores.List(ctx, dto.ScoreFilter{StudentID: &s.x})
	require.NoError(t, err)
	require.Empty(t, scores)
	_, err = h.grades.Get(ctx, s.x, s.c)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, h.enrollments.Unenroll(ctx, s.x, s.c), ErrNotFound)

	h.enroll(t, s.x, s.c)
	require.False(t, h.grade(t, s.x, s.c).Graded)
}
