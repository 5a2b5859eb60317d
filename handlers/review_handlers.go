package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/that-that/waldo/middleware"
	"github.com/that-that/waldo/models"
	"github.com/that-that/waldo/utils"
)

// CastVoteRequest is the payload for recording a reviewer's judgment.
type CastVoteRequest struct {
	SubmissionID     string `json:"submission_id" validate:"required,uuid"`
	ProposedCategory string `json:"proposed_category" validate:"required"`
	IsCorrect        bool   `json:"is_correct"`
}

// NextReviewItem hands the reviewer a pseudo-random submission.
func (h *ApplicationHandler) NextReviewItem(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "authentication required")
	}

	item, err := h.Reviews.Next(actor)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, item)
}

// CastVote records the reviewer's judgment on a submission.
func (h *ApplicationHandler) CastVote(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusUnauthorized, "authentication required")
	}

	payload := new(CastVoteRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}
	submissionID, err := uuid.Parse(payload.SubmissionID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	vote, err := h.Reviews.CastVote(actor, submissionID, models.Category(payload.ProposedCategory), payload.IsCorrect)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, vote)
}
