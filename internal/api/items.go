package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sahans/shopstock/internal/apperr"
	"github.com/sahans/shopstock/internal/domain/items"
	"github.com/sahans/shopstock/internal/domain/logs"
	"github.com/sahans/shopstock/internal/export"
)

// itemPayload is the wire shape for create. Numbers may arrive as JSON
// numbers or not at all; normalization happens in the items store.
type itemPayload struct {
	Name         string      `json:"name"`
	Category     string      `json:"category"`
	Unit         string      `json:"unit"`
	CostPrice    json.Number `json:"costPrice"`
	SellPrice    json.Number `json:"sellPrice"`
	WarehouseQty json.Number `json:"warehouseQty"`
	ShopQty      json.Number `json:"shopQty"`
	Notes        string      `json:"notes"`
}

func (p itemPayload) draft() items.Draft {
	return items.Draft{
		Name:         p.Name,
		Category:     p.Category,
		Unit:         p.Unit,
		CostPrice:    p.CostPrice.String(),
		SellPrice:    p.SellPrice.String(),
		WarehouseQty: p.WarehouseQty.String(),
		ShopQty:      p.ShopQty.String(),
		Notes:        p.Notes,
	}
}

type itemPatchPayload struct {
	Name         *string      `json:"name"`
	Category     *string      `json:"category"`
	Unit         *string      `json:"unit"`
	CostPrice    *json.Number `json:"costPrice"`
	SellPrice    *json.Number `json:"sellPrice"`
	WarehouseQty *json.Number `json:"warehouseQty"`
	ShopQty      *json.Number `json:"shopQty"`
	Notes        *string      `json:"notes"`
}

func (p itemPatchPayload) patch() items.Patch {
	num := func(n *json.Number) *string {
		if n == nil {
			return nil
		}
		s := n.String()
		return &s
	}
	return items.Patch{
		Name:         p.Name,
		Category:     p.Category,
		Unit:         p.Unit,
		CostPrice:    num(p.CostPrice),
		SellPrice:    num(p.SellPrice),
		WarehouseQty: num(p.WarehouseQty),
		ShopQty:      num(p.ShopQty),
		Notes:        p.Notes,
	}
}

func (h *Handlers) createItem(c *gin.Context) {
	var payload itemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	item, err := h.items.Add(c.Request.Context(), payload.draft())
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("create").Inc()
	h.logActivity(c.Request.Context(), logs.TypeCreate, item.ItemID, item.Name, 0, "")

	c.JSON(http.StatusCreated, item)
}

func (h *Handlers) listItems(c *gin.Context) {
	q := items.Query{
		Search:       c.Query("search"),
		Category:     c.Query("category"),
		LowStockOnly: c.Query("lowStock") == "true",
		Location:     items.Location(c.DefaultQuery("location", "warehouse")),
		Threshold:    h.settings.Current().LowStockThreshold,
		SortField:    c.Query("sort"),
		Desc:         c.Query("order") == "desc",
	}
	list := h.items.Find(q)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))
	total := len(list)
	if pageSize > 0 {
		start := (page - 1) * pageSize
		if start < 0 || start >= total {
			list = []items.Item{}
		} else {
			end := start + pageSize
			if end > total {
				end = total
			}
			list = list[start:end]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    list,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (h *Handlers) getItem(c *gin.Context) {
	item, err := h.items.Get(c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handlers) updateItem(c *gin.Context) {
	var payload itemPatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	item, err := h.items.Update(c.Request.Context(), c.Param("id"), payload.patch())
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("update").Inc()
	h.logActivity(c.Request.Context(), logs.TypeUpdate, item.ItemID, item.Name, 0, "")
	h.notifier.Check(item, h.settings.Current().LowStockThreshold)

	c.JSON(http.StatusOK, item)
}

func (h *Handlers) deleteItem(c *gin.Context) {
	item, err := h.items.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("delete").Inc()
	h.logActivity(c.Request.Context(), logs.TypeDelete, item.ItemID, item.Name, 0, "")

	c.JSON(http.StatusOK, item)
}

func (h *Handlers) transferStock(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	item, err := h.items.TransferStock(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("transfer").Inc()
	h.logActivity(c.Request.Context(), logs.TypeTransfer, item.ItemID, item.Name, req.Quantity, "")
	h.notifier.Check(item, h.settings.Current().LowStockThreshold)

	c.JSON(http.StatusOK, item)
}

func (h *Handlers) bulkSetQuantity(c *gin.Context) {
	var req struct {
		Location items.Location         `json:"location"`
		Updates  []items.QuantityUpdate `json:"updates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	if err := h.items.BulkSetQuantity(c.Request.Context(), req.Location, req.Updates); err != nil {
		h.respondErr(c, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("update").Inc()
	h.logActivity(c.Request.Context(), logs.TypeUpdate, "", "", 0,
		fmt.Sprintf("Bulk %s quantity update (%d rows)", req.Location, len(req.Updates)))

	c.Status(http.StatusNoContent)
}

func (h *Handlers) summary(c *gin.Context) {
	cur := h.settings.Current().CurrencySymbol
	money := func(v float64) string { return fmt.Sprintf("%s %.2f", cur, v) }

	c.JSON(http.StatusOK, gin.H{
		"totalItems":       h.items.Count(),
		"warehouseTotal":   h.items.WarehouseTotal(),
		"shopTotal":        h.items.ShopTotal(),
		"warehouseValue":   money(h.items.WarehouseValue()),
		"shopValue":        money(h.items.ShopValue()),
		"potentialRevenue": money(h.items.PotentialRevenue()),
		"categories":       h.items.Categories(),
	})
}

func (h *Handlers) exportItemsCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="items.csv"`)
	if err := h.items.ExportCSV(c.Writer); err != nil {
		h.log.Error("items csv export failed", "err", err)
	}
}

func (h *Handlers) importItemsCSV(c *gin.Context) {
	mode := items.ImportMode(c.DefaultQuery("mode", "merge"))

	res, err := h.items.ImportCSV(c.Request.Context(), c.Request.Body, mode)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("import").Inc()
	h.logActivity(c.Request.Context(), logs.TypeImport, "", "", 0,
		fmt.Sprintf("Imported %d items using %s method", res.Imported, mode))

	c.JSON(http.StatusOK, res)
}

func (h *Handlers) stockReport(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="stock-report.xlsx"`)
	if err := export.StockReport(c.Writer, h.items.All(), h.settings.Current().CurrencySymbol); err != nil {
		h.log.Error("stock report failed", "err", err)
	}
}
