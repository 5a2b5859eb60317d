package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/that-that/waldo/permissions"
	"github.com/that-that/waldo/services"
	"github.com/that-that/waldo/utils"
)

var validate = validator.New()

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Submissions *services.SubmissionService
	Reviews     *services.ReviewService
	Logger      *logrus.Logger
}

func NewApplicationHandler(submissions *services.SubmissionService, reviews *services.ReviewService, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		Submissions: submissions,
		Reviews:     reviews,
		Logger:      logger,
	}
}

// respondServiceError maps domain errors onto HTTP statuses. Authorization
// failures get one uniform message so responses do not leak whether the
// resource exists.
func (h *ApplicationHandler) respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrDuplicateSource):
		return utils.RespondWithError(c, fiber.StatusConflict, "a submission for this source url already exists")
	case errors.Is(err, services.ErrNoAcceptableEncoding):
		return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, "no acceptable encoding is available for this video")
	case errors.Is(err, services.ErrInvalidCategory):
		return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, "unknown category")
	case errors.Is(err, services.ErrNotFound):
		return utils.RespondWithError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrMetadataUnavailable):
		return utils.RespondWithError(c, fiber.StatusBadGateway, "video metadata is currently unavailable")
	case errors.Is(err, permissions.ErrUnauthorized):
		return utils.RespondWithError(c, fiber.StatusForbidden, "forbidden")
	default:
		h.Logger.WithField("error", err.Error()).Error("Unhandled service error")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
