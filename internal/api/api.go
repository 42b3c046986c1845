// Package api translates HTTP requests into store calls and writes the
// activity log for every mutation. It owns no domain logic of its own.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sahans/shopstock/internal/apperr"
	"github.com/sahans/shopstock/internal/domain/items"
	"github.com/sahans/shopstock/internal/domain/logs"
	"github.com/sahans/shopstock/internal/domain/settings"
	"github.com/sahans/shopstock/internal/infra/metrics"
	"github.com/sahans/shopstock/internal/infra/notify"
)

type Handlers struct {
	items    *items.Store
	logs     *logs.Store
	settings *settings.Store
	notifier *notify.LowStock
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func New(
	itemsStore *items.Store,
	logsStore *logs.Store,
	settingsStore *settings.Store,
	notifier *notify.LowStock,
	m *metrics.Metrics,
	log *slog.Logger,
) *Handlers {
	return &Handlers{
		items:    itemsStore,
		logs:     logsStore,
		settings: settingsStore,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// Router wires all routes. Metrics exposure follows config, same as the
// health endpoint pattern the infra server used to carry.
func (h *Handlers) Router(exposeMetrics bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if exposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	{
		api.POST("/items", h.createItem)
		api.GET("/items", h.listItems)
		api.GET("/items/export.csv", h.exportItemsCSV)
		api.POST("/items/import", h.importItemsCSV)
		api.GET("/items/report.xlsx", h.stockReport)
		api.POST("/items/bulk-quantity", h.bulkSetQuantity)
		api.GET("/items/:id", h.getItem)
		api.PUT("/items/:id", h.updateItem)
		api.DELETE("/items/:id", h.deleteItem)
		api.POST("/items/:id/transfer", h.transferStock)

		api.GET("/summary", h.summary)

		api.GET("/logs", h.listLogs)
		api.GET("/logs/export.csv", h.exportLogsCSV)

		api.GET("/settings", h.getSettings)
		api.PUT("/settings", h.putSettings)
		api.GET("/theme", h.getTheme)
		api.PUT("/theme", h.putTheme)

		api.GET("/backup", h.backup)
		api.POST("/restore", h.restore)
		api.POST("/clear", h.clearAll)
	}
	return r
}

// respondErr maps domain errors to their HTTP status and a stable JSON
// shape; anything else is a plain 500.
func (h *Handlers) respondErr(c *gin.Context, err error) {
	if ae := apperr.From(err); ae != nil {
		if ae.Code == apperr.CodePersistence {
			h.metrics.PersistFailures.Inc()
		}
		c.JSON(ae.Status, gin.H{"code": ae.Code, "message": ae.Message})
		return
	}
	h.log.Error("unhandled error", "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "message": "internal error"})
}

// logActivity appends to the activity log. A failed append is reported but
// never fails the mutation that triggered it.
func (h *Handlers) logActivity(ctx context.Context, typ logs.Type, itemID, itemName string, qty int, details string) {
	if _, err := h.logs.Append(ctx, typ, itemID, itemName, qty, details); err != nil {
		h.log.Warn("activity log append failed", "type", typ, "err", err)
	}
}
