package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"decoupage/api-gateway/internal/decoupage"
	"decoupage/api-gateway/internal/imagecache"
	"decoupage/api-gateway/utils"
)

// GetImage serves the cached, downscaled thumbnail for a timecode. When the
// cache cannot produce one the handler redirects to the raw media URL instead
// of failing the card.
func (h *ApplicationHandler) GetImage(c *fiber.Ctx) error {
	project := c.Query("projectName")
	if project == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "projectName query parameter is required")
	}
	id := c.Params("id")

	displayHeight := cardThumbHeight
	if v := c.Query("h"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid display height")
		}
		displayHeight = n
	}
	dpr := 2.0
	if v := c.Query("dpr"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid device pixel ratio")
		}
		dpr = f
	}

	doc, err := h.Store.Load(project)
	if err != nil {
		h.Logger.WithError(err).WithField("project", project).Error("Failed to load script for image lookup")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script")
	}

	ref, idx, ok := decoupage.Find(doc, id)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Timecode not found: "+id)
	}
	tc := decoupage.Container(doc, ref)[idx]
	if tc.ImageURL == nil || *tc.ImageURL == "" {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Timecode has no thumbnail")
	}
	remote := h.MediaBase + *tc.ImageURL

	handle, err := h.Cache.Resolve(c.Context(), id, remote, imagecache.TargetHeight(displayHeight, dpr))
	if err != nil || !handle.Valid() {
		if errors.Is(err, imagecache.ErrDisposed) {
			return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Image cache is shut down")
		}
		h.Logger.WithError(err).WithField("id", id).Warn("Thumbnail unavailable, redirecting to source")
		return c.Redirect(remote, fiber.StatusTemporaryRedirect)
	}

	c.Set(fiber.HeaderContentType, handle.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Status(fiber.StatusOK).Send(handle.Bytes())
}
