package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/service"
	"github.com/noah-isme/gema-gradebook/internal/utils"
)

// ScoreHandler wires score HTTP routes.
type ScoreHandler struct {
	service       service.ScoreService
	importLimiter fiber.Handler
	logger        zerolog.Logger
}

// NewScoreHandler constructs the handler. importLimiter guards the bulk
// import endpoint and may be nil.
func NewScoreHandler(service service.ScoreService, importLimiter fiber.Handler, logger zerolog.Logger) *ScoreHandler {
	return &ScoreHandler{
		service:       service,
		importLimiter: importLimiter,
		logger:        logger.With().Str("component", "score_handler").Logger(),
	}
}

// Register attaches score endpoints to the router group.
func (h *ScoreHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	if h.importLimiter != nil {
		router.Post("/import", h.importLimiter, h.importScores)
	} else {
		router.Post("/import", h.importScores)
	}
	router.Get("/:student_id/:assignment_id", h.get)
	router.Put("/:student_id/:assignment_id", h.update)
	router.Delete("/:student_id/:assignment_id", h.delete)
}

func (h *ScoreHandler) list(c *fiber.Ctx) error {
	var filter dto.ScoreFilter
	if err := c.QueryParser(&filter); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	scores, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "scores retrieved", scores)
}

func (h *ScoreHandler) get(c *fiber.Ctx) error {
	studentID, assignmentID, err := parsePairParams(c, "student_id", "assignment_id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	score, err := h.service.Get(c.UserContext(), studentID, assignmentID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "score retrieved", score)
}

func (h *ScoreHandler) create(c *fiber.Ctx) error {
	var payload dto.ScoreCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}

	score, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "score recorded", score)
}

func (h *ScoreHandler) update(c *fiber.Ctx) error {
	studentID, assignmentID, err := parsePairParams(c, "student_id", "assignment_id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.ScoreUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}

	score, err := h.service.Update(c.UserContext(), studentID, assignmentID, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "score updated", score)
}

func (h *ScoreHandler) delete(c *fiber.Ctx) error {
	studentID, assignmentID, err := parsePairParams(c, "student_id", "assignment_id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), studentID, assignmentID); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "score deleted", fiber.Map{"student_id": studentID, "assignment_id": assignmentID})
}

func (h *ScoreHandler) importScores(c *fiber.Ctx) error {
	var payload dto.ScoreImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}

	result, err := h.service.Import(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "scores imported", result)
}
