package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/middleware"
	"github.com/noah-isme/gema-gradebook/internal/service"
	"github.com/noah-isme/gema-gradebook/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier " + name)
	}
	return uint(parsed), nil
}

func parsePairParams(c *fiber.Ctx, first, second string) (uint, uint, error) {
	a, err := parseUintParam(c, first)
	if err != nil {
		return 0, 0, err
	}
	b, err := parseUintParam(c, second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.SendErrorKind(c, fiber.StatusBadRequest, string(service.KindInvalidInput), message)
}

// respondError maps service failures onto HTTP statuses. Unclassified errors
// are logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	kind := service.KindOf(err)
	var status int
	switch kind {
	case service.KindNotFound:
		status = fiber.StatusNotFound
	case service.KindNotUnique, service.KindHasDependents:
		status = fiber.StatusConflict
	case service.KindInvalidInput:
		status = fiber.StatusBadRequest
	default:
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		return utils.SendErrorKind(c, fiber.StatusInternalServerError, "internal", "internal server error")
	}

	return utils.SendErrorKind(c, status, string(kind), err.Error())
}
