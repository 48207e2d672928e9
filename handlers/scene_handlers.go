package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"decoupage/api-gateway/internal/decoupage"
	"decoupage/api-gateway/utils"
)

// AddScene inserts an empty scene after the index in the body (-1 prepends)
// and renumbers the script.
func (h *ApplicationHandler) AddScene(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}

	var payload struct {
		After int `json:"after"`
	}
	payload.After = -1
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &payload); err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if !h.acquire(project) {
		return utils.RespondWithError(c, fiber.StatusConflict, "A previous update is still in progress")
	}
	defer h.release(project)

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for scene insert")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	saved, err := h.Store.Save(project, decoupage.InsertScene(doc, payload.After))
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to save inserted scene")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save script")
	}

	h.Logger.WithFields(map[string]interface{}{"project": project, "after": payload.After}).Info("Scene added")
	return utils.RespondWithJSON(c, fiber.StatusCreated, saved)
}

// RemoveScene deletes the scene at :index. Contained timecodes are discarded
// with it; clients confirm with the user before calling.
func (h *ApplicationHandler) RemoveScene(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid scene index")
	}

	if !h.acquire(project) {
		return utils.RespondWithError(c, fiber.StatusConflict, "A previous update is still in progress")
	}
	defer h.release(project)

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for scene delete")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	updated, ok := decoupage.RemoveScene(doc, index)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Scene index out of range")
	}

	saved, err := h.Store.Save(project, updated)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to save after scene delete")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save script")
	}

	h.Logger.WithFields(map[string]interface{}{"project": project, "index": index}).Info("Scene removed")
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}

// MoveScene relocates the scene at :index to the position in the body and
// renumbers.
func (h *ApplicationHandler) MoveScene(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid scene index")
	}

	var payload struct {
		To int `json:"to"`
	}
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if !h.acquire(project) {
		return utils.RespondWithError(c, fiber.StatusConflict, "A previous update is still in progress")
	}
	defer h.release(project)

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for scene move")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	updated, ok := decoupage.MoveScene(doc, index, payload.To)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Scene index out of range")
	}

	saved, err := h.Store.Save(project, updated)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to save after scene move")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save script")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}
