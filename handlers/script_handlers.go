package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"decoupage/api-gateway/internal/decoupage"
	"decoupage/api-gateway/internal/dragdrop"
	"decoupage/api-gateway/internal/imagecache"
	"decoupage/api-gateway/internal/worker"
	"decoupage/api-gateway/models"
	"decoupage/api-gateway/utils"
)

// updatePayload is the body of PUT /api. Scope selects which portion of the
// document the request carries; the rest of the fields are scope-specific.
type updatePayload struct {
	Scope    string           `json:"scope" validate:"required,oneof=timecode-move timecodes script-timecodes script-audios script"`
	Document *models.Document `json:"json,omitempty"`
	Timecode *models.Timecode `json:"timecode,omitempty"`
	SceneID  string           `json:"sceneId,omitempty"`
	Scene    *scenePatch      `json:"scene,omitempty"`
}

// scenePatch carries the editable scene fields for the "script" scope.
type scenePatch struct {
	Description  *string   `json:"description,omitempty"`
	Audio        *string   `json:"audio,omitempty"`
	Locution     *string   `json:"locution,omitempty"`
	ActiveFields *[]string `json:"activeFields,omitempty"`
}

// GetScript returns the full {timecodes, script} document for a project and
// queues a thumbnail warm-up in the background so cards render without a
// cold-fetch stall.
func (h *ApplicationHandler) GetScript(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	h.Dispatcher.Submit(&worker.WarmupJob{
		Project:      project,
		Document:     doc,
		Cache:        h.Cache,
		MediaBase:    h.MediaBase,
		TargetHeight: imagecache.TargetHeight(cardThumbHeight, 2),
		Timeout:      2 * time.Minute,
	})

	// The document is the wire contract here, not the usual envelope: clients
	// read timecodes/script straight off the response body.
	return c.Status(fiber.StatusOK).JSON(doc)
}

// UpdateScript applies a scoped write to a project document. Every scope loads
// the stored document, patches the addressed slice, and writes the whole
// document back; the response carries the confirmed state.
func (h *ApplicationHandler) UpdateScript(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}

	var payload updatePayload
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
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for update")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	updated, status, msg := h.applyScope(doc, payload)
	if msg != "" {
		return utils.RespondWithError(c, status, msg)
	}

	saved, err := h.Store.Save(project, updated)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to save script")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save script")
	}

	h.Logger.WithFields(map[string]interface{}{
		"project": project,
		"scope":   payload.Scope,
	}).Info("Script updated")
	return utils.RespondWithJSON(c, fiber.StatusOK, saved)
}

// applyScope patches doc per the payload scope. A non-empty message means the
// request was rejected with the paired status and nothing should be saved.
func (h *ApplicationHandler) applyScope(doc models.Document, payload updatePayload) (models.Document, int, string) {
	switch payload.Scope {
	case "timecode-move":
		if payload.Document == nil {
			return doc, fiber.StatusBadRequest, "Scope timecode-move requires the full document in 'json'"
		}
		next := *payload.Document
		if next.Timecodes == nil {
			next.Timecodes = []models.Timecode{}
		}
		if next.Script == nil {
			next.Script = []models.Scene{}
		}
		if dup := duplicateID(next); dup != "" {
			return doc, fiber.StatusUnprocessableEntity, "Timecode appears in more than one container: " + dup
		}
		// The client already applied the move; re-check every resident item
		// so an illegal placement never replaces the stored document.
		if err := dragdrop.ValidateDocument(next); err != nil {
			return doc, fiber.StatusUnprocessableEntity, err.Error()
		}
		return next, 0, ""

	case "timecodes":
		if payload.Timecode == nil {
			return doc, fiber.StatusBadRequest, "Scope timecodes requires 'timecode'"
		}
		if !replaceIn(&doc.Timecodes, *payload.Timecode) {
			return doc, fiber.StatusNotFound, "Timecode not found in pool"
		}
		return doc, 0, ""

	case "script-timecodes", "script-audios":
		if payload.Timecode == nil || payload.SceneID == "" {
			return doc, fiber.StatusBadRequest, "Scope " + payload.Scope + " requires 'timecode' and 'sceneId'"
		}
		idx := sceneIndex(doc.Script, payload.SceneID)
		if idx == -1 {
			return doc, fiber.StatusNotFound, "Scene not found: " + payload.SceneID
		}
		target := &doc.Script[idx].Timecodes
		if payload.Scope == "script-audios" {
			target = &doc.Script[idx].Audios
		}
		if !replaceIn(target, *payload.Timecode) {
			return doc, fiber.StatusNotFound, "Timecode not found in scene " + payload.SceneID
		}
		return doc, 0, ""

	case "script":
		if payload.Scene == nil || payload.SceneID == "" {
			return doc, fiber.StatusBadRequest, "Scope script requires 'scene' and 'sceneId'"
		}
		idx := sceneIndex(doc.Script, payload.SceneID)
		if idx == -1 {
			return doc, fiber.StatusNotFound, "Scene not found: " + payload.SceneID
		}
		scene := &doc.Script[idx]
		if payload.Scene.Description != nil {
			scene.Description = *payload.Scene.Description
		}
		if payload.Scene.Audio != nil {
			scene.Audio = *payload.Scene.Audio
		}
		if payload.Scene.Locution != nil {
			scene.Locution = *payload.Scene.Locution
		}
		if payload.Scene.ActiveFields != nil {
			scene.ActiveFields = *payload.Scene.ActiveFields
		}
		return doc, 0, ""
	}
	return doc, fiber.StatusBadRequest, "Unknown scope: " + payload.Scope
}

// replaceIn swaps the element with a matching id for the given timecode.
func replaceIn(items *[]models.Timecode, tc models.Timecode) bool {
	for i := range *items {
		if (*items)[i].ID == tc.ID {
			(*items)[i] = tc
			return true
		}
	}
	return false
}

func sceneIndex(script []models.Scene, id string) int {
	for i := range script {
		if script[i].ID == id {
			return i
		}
	}
	return -1
}

// duplicateID returns the first timecode id that occurs in more than one
// container, or "" when the document is consistent.
func duplicateID(doc models.Document) string {
	seen := make(map[string]bool)
	for _, id := range decoupage.IDs(doc) {
		if seen[id] {
			return id
		}
		seen[id] = true
	}
	return ""
}
