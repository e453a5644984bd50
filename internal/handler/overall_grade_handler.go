package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/service"
	"github.com/noah-isme/gema-gradebook/internal/utils"
)

// OverallGradeHandler exposes the read-only aggregate endpoints.
type OverallGradeHandler struct {
	service service.OverallGradeService
	logger  zerolog.Logger
}

// NewOverallGradeHandler constructs the handler.
func NewOverallGradeHandler(service service.OverallGradeService, logger zerolog.Logger) *OverallGradeHandler {
	return &OverallGradeHandler{
		service: service,
		logger:  logger.With().Str("component", "overall_grade_handler").Logger(),
	}
}

// Register attaches overall grade endpoints to the router group.
func (h *OverallGradeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/events", h.events)
	router.Post("/recompute", h.recompute)
	router.Get("/:student_id/:class_id", h.get)
}

func (h *OverallGradeHandler) list(c *fiber.Ctx) error {
	var filter dto.OverallGradeFilter
	if err := c.QueryParser(&filter); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	grades, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "overall grades retrieved", grades)
}

func (h *OverallGradeHandler) get(c *fiber.Ctx) error {
	studentID, classID, err := parsePairParams(c, "student_id", "class_id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	grade, err := h.service.Get(c.UserContext(), studentID, classID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "overall grade retrieved", grade)
}

func (h *OverallGradeHandler) events(c *fiber.Ctx) error {
	var filter dto.GradeEventFilter
	if err := c.QueryParser(&filter); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	events, err := h.service.Events(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "grade events retrieved", events)
}

func (h *OverallGradeHandler) recompute(c *fiber.Ctx) error {
	changed, err := h.service.RecomputeAll(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "overall grades recomputed", fiber.Map{"changed": changed})
}
