package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"decoupage/api-gateway/utils"
)

type transcribePayload struct {
	ProjectName string `json:"projectName" validate:"required"`
	MediaName   string `json:"mediaName" validate:"required"`
}

// TranscribeMedia forwards a transcription request to the transcriber service
// and returns the text. A new request for the same media cancels the one
// already running; only the latest caller gets an answer.
func (h *ApplicationHandler) TranscribeMedia(c *fiber.Ctx) error {
	var payload transcribePayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.Validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"Validation failed: "+utils.FormatValidationErrors(err)[0])
	}

	result, err := h.Transcriber.Transcribe(c.Context(), payload.ProjectName, payload.MediaName)
	if err != nil {
		if c.Context().Err() != nil || errors.Is(err, context.Canceled) {
			// Superseded by a newer request for the same media.
			return utils.RespondWithError(c, fiber.StatusConflict, "Transcription superseded")
		}
		h.Logger.WithError(err).WithField("media", payload.MediaName).Error("Transcription failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, "Transcription failed")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, result)
}

// CancelTranscription aborts an in-flight transcription for a media file.
func (h *ApplicationHandler) CancelTranscription(c *fiber.Ctx) error {
	media := c.Params("media")
	if media == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "media parameter is required")
	}
	h.Transcriber.Cancel(media)
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"media": media, "cancelled": true})
}
