package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"decoupage/api-gateway/internal/preview"
	"decoupage/api-gateway/utils"
)

// GetPreviewPDF renders the project as a printable PDF. view=script renders
// only scene text fields; anything else renders the full decoupage with cards.
func (h *ApplicationHandler) GetPreviewPDF(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}

	view := preview.ViewDecoupage
	if c.Query("view") == "script" {
		view = preview.ViewScript
	}

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for PDF export")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	out, err := h.Preview.PDF(c.Context(), doc, preview.Options{
		ProjectName: project,
		ExportDate:  time.Now().Format("02/01/2006"),
		View:        view,
	})
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to render PDF")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to render PDF")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+project+`.pdf"`)
	return c.Status(fiber.StatusOK).Send(out)
}

// GetContactSheet renders a PNG grid of every visual timecode's thumbnail.
func (h *ApplicationHandler) GetContactSheet(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for contact sheet")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	out, err := h.Preview.ContactSheet(c.Context(), doc, preview.Options{
		ProjectName: project,
		ExportDate:  time.Now().Format("02/01/2006"),
	})
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to render contact sheet")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to render contact sheet")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Status(fiber.StatusOK).Send(out)
}
