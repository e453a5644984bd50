package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	students    []models.Student
	classes     []models.Class
	assignments []models.Assignment
}

func seed(t *testing.T, repos Repositories) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{}

	for _, name := range []string{"Ada", "Grace"} {
		student := models.Student{FirstName: name, LastName: "Tester"}
		require.NoError(t, repos.Students.Create(ctx, &student))
		f.students = append(f.students, student)
	}

	for _, name := range []string{"Algebra", "Biology"} {
		class := models.Class{ClassName: name}
		require.NoError(t, repos.Classes.Create(ctx, &class))
		f.classes = append(f.classes, class)
	}

	fixtures := []struct {
		class uint
		name  string
		max   float64
	}{
		{f.classes[0].ID, "Quiz 1", 100},
		{f.classes[0].ID, "Homework", 50},
		{f.classes[1].ID, "Lab", 20},
	}
	for _, fixture := range fixtures {
		assignment := models.Assignment{ClassID: fixture.class, AssignmentName: fixture.name, AssignmentType: "quiz", MaximumScore: fixture.max}
		require.NoError(t, repos.Assignments.Create(ctx, &assignment))
		f.assignments = append(f.assignments, assignment)
	}

	return f
}

func TestListsAreOrderedByIdentity(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()

	empty, err := repos.Students.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	f := seed(t, repos)

	students, err := repos.Students.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Less(t, students[0].ID, students[1].ID)

	assignments, err := repos.Assignments.List(ctx)
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	require.Equal(t, f.assignments[0].ID, assignments[0].ID)
	require.Equal(t, f.assignments[2].ID, assignments[2].ID)
}

func TestDeleteMissingRowReturnsRecordNotFound(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()

	require.ErrorIs(t, repos.Students.Delete(ctx, 99), gorm.ErrRecordNotFound)
	require.ErrorIs(t, repos.Classes.Delete(ctx, 99), gorm.ErrRecordNotFound)
	require.ErrorIs(t, repos.Enrollments.Delete(ctx, 1, 1), gorm.ErrRecordNotFound)
	require.ErrorIs(t, repos.Scores.Delete(ctx, 1, 1), gorm.ErrRecordNotFound)

	_, err := repos.Assignments.GetByID(ctx, 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEnrollmentUniqueness(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()
	f := seed(t, repos)

	enrollment := models.Enrollment{StudentID: f.students[0].ID, ClassID: f.classes[0].ID}
	require.NoError(t, repos.Enrollments.Create(ctx, &enrollment))

	duplicate := models.Enrollment{StudentID: f.students[0].ID, ClassID: f.classes[0].ID}
	require.ErrorIs(t, repos.Enrollments.Create(ctx, &duplicate), gorm.ErrDuplicatedKey)

	exists, err := repos.Enrollments.Exists(ctx, f.students[0].ID, f.classes[0].ID)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repos.Enrollments.Exists(ctx, f.students[1].ID, f.classes[0].ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestScoredAssignmentsJoinOnlyTheClass(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()
	f := seed(t, repos)
	student := f.students[0].ID

	require.NoError(t, repos.Scores.Create(ctx, &models.Score{StudentID: student, AssignmentID: f.assignments[1].ID, Score: 40}))
	require.NoError(t, repos.Scores.Create(ctx, &models.Score{StudentID: student, AssignmentID: f.assignments[0].ID, Score: 90}))
	require.NoError(t, repos.Scores.Create(ctx, &models.Score{StudentID: student, AssignmentID: f.assignments[2].ID, Score: 15}))

	rows, err := repos.Scores.ListScoredAssignments(ctx, student, f.classes[0].ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, f.assignments[0].ID, rows[0].AssignmentID)
	require.Equal(t, 90.0, rows[0].Score)
	require.Equal(t, 100.0, rows[0].MaximumScore)
	require.Equal(t, f.assignments[1].ID, rows[1].AssignmentID)
	require.Equal(t, 50.0, rows[1].MaximumScore)

	classID := f.classes[1].ID
	scores, err := repos.Scores.List(ctx, ScoreFilter{ClassID: &classID})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Equal(t, 15.0, scores[0].Score)
}

func TestScoreUpsertAndHighest(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()
	f := seed(t, repos)
	assignment := f.assignments[0].ID

	_, found, err := repos.Scores.HighestForAssignment(ctx, assignment)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repos.Scores.Upsert(ctx, []models.Score{
		{StudentID: f.students[0].ID, AssignmentID: assignment, Score: 70},
		{StudentID: f.students[1].ID, AssignmentID: assignment, Score: 82},
	}))
	require.NoError(t, repos.Scores.Upsert(ctx, []models.Score{
		{StudentID: f.students[0].ID, AssignmentID: assignment, Score: 95},
	}))

	scores, err := repos.Scores.ListByAssignment(ctx, assignment)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	require.Equal(t, 95.0, scores[0].Score)

	highest, found, err := repos.Scores.HighestForAssignment(ctx, assignment)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 95.0, highest)
}

func TestScoreCascadeHelpers(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()
	f := seed(t, repos)

	for _, student := range f.students {
		for _, assignment := range f.assignments {
			require.NoError(t, repos.Scores.Create(ctx, &models.Score{StudentID: student.ID, AssignmentID: assignment.ID, Score: 10}))
		}
	}

	require.NoError(t, repos.Scores.DeleteForStudentInClass(ctx, f.students[0].ID, f.classes[0].ID))
	remaining, err := repos.Scores.List(ctx, ScoreFilter{StudentID: &f.students[0].ID})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, f.assignments[2].ID, remaining[0].AssignmentID)

	require.NoError(t, repos.Scores.DeleteByClass(ctx, f.classes[1].ID))
	all, err := repos.Scores.List(ctx, ScoreFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, repos.Scores.DeleteByStudent(ctx, f.students[1].ID))
	all, err = repos.Scores.List(ctx, ScoreFilter{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestOverallGradeUpsertReplacesRow(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()

	grade := models.OverallGrade{StudentID: 1, ClassID: 2, Percentage: 70, LetterGrade: "C", Points: 70, Possible: 100, GradedCount: 1}
	require.NoError(t, repos.OverallGrades.Upsert(ctx, &grade))

	grade = models.OverallGrade{StudentID: 1, ClassID: 2, Percentage: 85, LetterGrade: "B", Points: 170, Possible: 200, GradedCount: 2}
	require.NoError(t, repos.OverallGrades.Upsert(ctx, &grade))

	stored, err := repos.OverallGrades.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 85.0, stored.Percentage)
	require.Equal(t, "B", stored.LetterGrade)
	require.Equal(t, 2, stored.GradedCount)

	pairs, err := repos.OverallGrades.ListPairs(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	require.NoError(t, repos.OverallGrades.Delete(ctx, 1, 2))
	_, err = repos.OverallGrades.Get(ctx, 1, 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStoreTransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(repos Repositories) error {
		student := models.Student{FirstName: "Rolled", LastName: "Back"}
		if err := repos.Students.Create(ctx, &student); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	students, err := store.Repositories().Students.List(ctx)
	require.NoError(t, err)
	require.Empty(t, students)
}

func TestAssignmentFilter(t *testing.T) {
	repos := New(setupTestDB(t))
	ctx := context.Background()
	f := seed(t, repos)

	classID := f.classes[0].ID
	items, total, err := repos.Assignments.ListWithFilter(ctx, AssignmentFilter{ClassID: &classID, Sort: "-maximum_score"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "Quiz 1", items[0].AssignmentName)

	items, total, err = repos.Assignments.ListWithFilter(ctx, AssignmentFilter{Search: "lab"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Lab", items[0].AssignmentName)

	items, _, err = repos.Assignments.ListWithFilter(ctx, AssignmentFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
}
