package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/that-that/waldo/middleware"
	"github.com/that-that/waldo/models"
	"github.com/that-that/waldo/utils"
)

// CreateSubmissionRequest is the payload for filing a new submission.
type CreateSubmissionRequest struct {
	SourceURL string `json:"source_url" validate:"required,url"`
	Category  string `json:"category" validate:"required"`
}

// UpdateSubmissionRequest is the payload for correcting a submission.
type UpdateSubmissionRequest struct {
	Category   string `json:"category" validate:"required"`
	IsAnalyzed bool   `json:"is_analyzed"`
}

// CreateSubmission files a video for analysis and schedules extraction.
func (h *ApplicationHandler) CreateSubmission(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "authentication required")
	}

	payload := new(CreateSubmissionRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	sub, err := h.Submissions.Submit(c.Context(), actor, payload.SourceURL, models.Category(payload.Category))
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusAccepted, sub)
}

// GetSubmission returns one submission, owner-scoped.
func (h *ApplicationHandler) GetSubmission(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	sub, err := h.Submissions.Get(actor, id)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, sub)
}

// ListSubmissions returns the calling user's submissions.
func (h *ApplicationHandler) ListSubmissions(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "authentication required")
	}

	subs, err := h.Submissions.ListOwn(actor)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, subs)
}

// UpdateSubmission corrects a submission's category and analyzed flag.
func (h *ApplicationHandler) UpdateSubmission(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	payload := new(UpdateSubmissionRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	sub, err := h.Submissions.Update(actor, id, models.Category(payload.Category), payload.IsAnalyzed)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, sub)
}

// DeleteSubmission removes a submission along with its clips and votes.
func (h *ApplicationHandler) DeleteSubmission(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	if err := h.Submissions.Delete(actor, id); err != nil {
		return h.respondServiceError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": id})
}

// ListClips returns a submission's clip records. Moderator-only.
func (h *ApplicationHandler) ListClips(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	clips, err := h.Submissions.ListClips(actor, id)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, clips)
}
