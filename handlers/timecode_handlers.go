package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"decoupage/api-gateway/internal/decoupage"
	"decoupage/api-gateway/models"
	"decoupage/api-gateway/utils"
)

// classifyPayload carries a partial timecode edit; nil fields stay untouched.
type classifyPayload struct {
	Type   *string `json:"type,omitempty" validate:"omitempty,oneof='' V A AV image"`
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=0,max=3"`
	Text   *string `json:"text,omitempty"`
}

// ClassifyTimecode updates a timecode's type, rating or annotation wherever it
// lives. Reclassification never re-checks scene capacity; placement rules only
// apply at drop time.
func (h *ApplicationHandler) ClassifyTimecode(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}
	id := c.Params("id")

	var payload classifyPayload
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
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for classification")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	ok := true
	if payload.Type != nil {
		doc, ok = decoupage.SetClassification(doc, id, *payload.Type)
	}
	if ok && payload.Rating != nil {
		doc, ok = decoupage.SetRating(doc, id, *payload.Rating)
	}
	if ok && payload.Text != nil {
		doc, ok = decoupage.SetText(doc, id, *payload.Text)
	}
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Timecode not found: "+id)
	}

	saved, err := h.Store.Save(project, doc)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to save classified timecode")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save script")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}

// DeleteTimecode removes a timecode from the pool or any scene column.
func (h *ApplicationHandler) DeleteTimecode(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}
	id := c.Params("id")

	if !h.acquire(project) {
		return utils.RespondWithError(c, fiber.StatusConflict, "A previous update is still in progress")
	}
	defer h.release(project)

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for delete")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	updated, ok := decoupage.Remove(doc, id)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Timecode not found: "+id)
	}

	saved, err := h.Store.Save(project, updated)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to save after delete")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save script")
	}

	h.Logger.WithFields(map[string]interface{}{"project": project, "id": id}).Info("Timecode deleted")
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}

// AppendTimecode adds a freshly captured timecode to the pool.
func (h *ApplicationHandler) AppendTimecode(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}

	var tc models.Timecode
	if err := json.Unmarshal(c.Body(), &tc); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if tc.ID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Timecode id is required")
	}
	tc.Duration = tc.ComputeDuration()

	if !h.acquire(project) {
		return utils.RespondWithError(c, fiber.StatusConflict, "A previous update is still in progress")
	}
	defer h.release(project)

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for append")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	if _, _, exists := decoupage.Find(doc, tc.ID); exists {
		return utils.RespondWithError(c, fiber.StatusConflict, "Timecode already exists: "+tc.ID)
	}
	doc.Timecodes = append(doc.Timecodes, tc)

	saved, err := h.Store.Save(project, doc)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to save appended timecode")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save script")
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, saved)
}
