package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"decoupage/api-gateway/models"
	"decoupage/api-gateway/utils"
)

type createProjectPayload struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Description *string `json:"description,omitempty"`
}

// GetProjects lists all projects.
func (h *ApplicationHandler) GetProjects(c *fiber.Ctx) error {
	projects, err := h.Store.ListProjects()
	if err != nil {
		h.Logger.WithError(err).Error("Failed to list projects")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list projects")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, projects)
}

// CreateProject registers a new project.
func (h *ApplicationHandler) CreateProject(c *fiber.Ctx) error {
	var payload createProjectPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if err := h.Validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"Validation failed: "+utils.FormatValidationErrors(err)[0])
	}

	now := time.Now()
	project := models.Project{
		ID:          uuid.New(),
		Name:        payload.Name,
		Description: payload.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := h.Store.CreateProject(project)
	if err != nil {
		h.Logger.WithError(err).WithField("name", payload.Name).Error("Failed to create project")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to create project")
	}

	h.Logger.WithField("name", created.Name).Info("Project created")
	return utils.RespondWithJSON(c, fiber.StatusCreated, created)
}
