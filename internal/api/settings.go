package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahans/shopstock/internal/apperr"
	"github.com/sahans/shopstock/internal/domain/settings"
)

func (h *Handlers) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Current())
}

func (h *Handlers) putSettings(c *gin.Context) {
	var patch settings.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	updated, err := h.settings.SetAll(c.Request.Context(), patch)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handlers) getTheme(c *gin.Context) {
	theme, err := h.settings.Theme(c.Request.Context())
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

func (h *Handlers) putTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondErr(c, apperr.Validation("invalid request body"))
		return
	}
	if err := h.settings.SetTheme(c.Request.Context(), req.Theme); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

func (h *Handlers) backup(c *gin.Context) {
	snap, err := h.settings.ExportSnapshot(c.Request.Context())
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopstock-backup.json"`)
	c.JSON(http.StatusOK, snap)
}

// restore overlays the bundle onto storage, then reloads every store so
// the in-memory state matches what was just written.
func (h *Handlers) restore(c *gin.Context) {
	var snap settings.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		h.respondErr(c, apperr.Import("invalid backup bundle", err))
		return
	}

	if err := h.settings.ImportSnapshot(c.Request.Context(), snap); err != nil {
		h.respondErr(c, err)
		return
	}
	if err := h.reloadStores(c); err != nil {
		return
	}
	h.logActivity(c.Request.Context(), "other", "", "", 0, "Backup restored")
	c.Status(http.StatusNoContent)
}

func (h *Handlers) clearAll(c *gin.Context) {
	if err := h.settings.ClearAll(c.Request.Context()); err != nil {
		h.respondErr(c, err)
		return
	}
	if err := h.reloadStores(c); err != nil {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) reloadStores(c *gin.Context) error {
	ctx := c.Request.Context()
	if err := h.items.Reload(ctx); err != nil {
		h.respondErr(c, err)
		return err
	}
	if err := h.logs.Reload(ctx); err != nil {
		h.respondErr(c, err)
		return err
	}
	return nil
}
