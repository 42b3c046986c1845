package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sahans/shopstock/internal/domain/logs"
)

// listLogs serves the newest-first view; the CSV export below keeps
// insertion order instead.
func (h *Handlers) listLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	var entries []logs.Entry
	typ := c.Query("type")
	switch {
	case typ != "" && limit > 0:
		entries = h.logs.RecentByType(logs.Type(typ), limit)
	case typ != "":
		entries = h.logs.RecentByType(logs.Type(typ), len(h.logs.List()))
	case limit > 0:
		entries = h.logs.Recent(limit)
	default:
		entries = h.logs.List()
	}
	if entries == nil {
		entries = []logs.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries})
}

func (h *Handlers) exportLogsCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="logs.csv"`)
	if err := h.logs.ExportCSV(c.Writer); err != nil {
		h.log.Error("logs csv export failed", "err", err)
	}
}
