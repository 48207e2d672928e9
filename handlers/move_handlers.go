package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"decoupage/api-gateway/internal/decoupage"
	"decoupage/api-gateway/internal/dragdrop"
	"decoupage/api-gateway/utils"
)

// movePayload is the body of POST /api/move: relocate one timecode into a
// target container at an insertion index (-1 appends).
type movePayload struct {
	ID     string                 `json:"id" validate:"required"`
	Target decoupage.ContainerRef `json:"target"`
	Index  int                    `json:"index"`
}

// MoveTimecode runs a full drag gesture server-side: pick the item up,
// validate the drop against the placement rules, persist, and settle. A
// rejected drop answers 422 with the rule message; a gesture colliding with a
// still-persisting previous move answers 409.
func (h *ApplicationHandler) MoveTimecode(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}

	var payload movePayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.Validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"Validation failed: "+utils.FormatValidationErrors(err)[0])
	}

	if !h.acquire(project) {
		return utils.RespondWithError(c, fiber.StatusConflict, "A previous update is still in progress")
	}
	defer h.release(project)

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for move")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	eng := h.engine(project)
	if err := eng.Start(doc, payload.ID); err != nil {
		if errors.Is(err, dragdrop.ErrBusy) {
			return utils.RespondWithError(c, fiber.StatusConflict, "A previous move is still being saved")
		}
		return utils.RespondWithError(c, fiber.StatusNotFound, "Timecode not found: "+payload.ID)
	}

	updated, err := eng.Drop(doc, payload.Target, payload.Index)
	if err != nil {
		var moveErr *dragdrop.MoveError
		if errors.As(err, &moveErr) {
			return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, moveErr.Message)
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Move failed")
	}

	if !eng.Pending() {
		// Stale reference or invalid target: nothing changed, nothing to save.
		return utils.RespondWithJSON(c, fiber.StatusOK, doc)
	}

	saved, err := h.Store.Save(project, updated)
	eng.Settle()
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to save moved timecode")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save script")
	}

	h.Logger.WithFields(map[string]interface{}{
		"project": project,
		"id":      payload.ID,
		"target":  payload.Target.String(),
	}).Info("Timecode moved")
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}
