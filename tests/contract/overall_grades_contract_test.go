package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/handler"
	"github.com/noah-isme/gema-gradebook/internal/models"
)

type stubOverallGradeService struct {
	grades []dto.OverallGradeResponse
}

func (s stubOverallGradeService) List(context.Context, dto.OverallGradeFilter) ([]dto.OverallGradeResponse, error) {
	return s.grades, nil
}

func (s stubOverallGradeService) Get(_ context.Context, studentID, classID uint) (dto.OverallGradeResponse, error) {
	return dto.NewUngradedResponse(studentID, classID), nil
}

func (s stubOverallGradeService) Events(context.Context, dto.GradeEventFilter) ([]dto.GradeEventResponse, error) {
	return []dto.GradeEventResponse{}, nil
}

func (s stubOverallGradeService) RecomputeAll(context.Context) (int, error) {
	return 0, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func serve(t *testing.T, svc stubOverallGradeService, path string) interface{} {
	t.Helper()
	app := fiber.New()
	handler.NewOverallGradeHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/overall-grades"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestOverallGradesContract(t *testing.T) {
	schema := compileSchema(t, "overall_grades.schema.json")

	now := time.Now().UTC()
	svc := stubOverallGradeService{grades: []dto.OverallGradeResponse{
		dto.NewOverallGradeResponse(models.OverallGrade{
			StudentID:   1,
			ClassID:     3,
			Percentage:  86.66666666666667,
			LetterGrade: "B",
			Points:      130,
			Possible:    150,
			GradedCount: 2,
			UpdatedAt:   now,
		}),
		dto.NewOverallGradeResponse(models.OverallGrade{
			StudentID:   2,
			ClassID:     3,
			Percentage:  45,
			LetterGrade: "F",
			Points:      45,
			Possible:    100,
			GradedCount: 1,
			UpdatedAt:   now,
		}),
	}}

	require.NoError(t, schema.Validate(serve(t, svc, "/api/v1/overall-grades")))
}

func TestEmptyOverallGradesContract(t *testing.T) {
	schema := compileSchema(t, "overall_grades.schema.json")

	require.NoError(t, schema.Validate(serve(t, stubOverallGradeService{grades: []dto.OverallGradeResponse{}}, "/api/v1/overall-grades")))
}

func TestUngradedPairContract(t *testing.T) {
	schema := compileSchema(t, "overall_grade.schema.json")

	require.NoError(t, schema.Validate(serve(t, stubOverallGradeService{}, "/api/v1/overall-grades/4/3")))
}
