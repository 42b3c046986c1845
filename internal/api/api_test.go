package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahans/shopstock/internal/domain/items"
	"github.com/sahans/shopstock/internal/domain/logs"
	"github.com/sahans/shopstock/internal/domain/settings"
	"github.com/sahans/shopstock/internal/infra/logger"
	"github.com/sahans/shopstock/internal/infra/metrics"
	"github.com/sahans/shopstock/internal/infra/storage"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Handlers) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	kv := storage.NewMemory()
	log := logger.Discard()

	settingsStore, err := settings.Open(ctx, kv, log)
	require.NoError(t, err)
	itemsStore, err := items.Open(ctx, kv, log)
	require.NoError(t, err)
	logsStore, err := logs.Open(ctx, kv, log)
	require.NoError(t, err)

	h := New(itemsStore, logsStore, settingsStore, nil, metrics.New(prometheus.NewRegistry()), log)
	return h.Router(false), h
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createRice(t *testing.T, r *gin.Engine) items.Item {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/items", gin.H{
		"name": "Rice 5kg", "costPrice": 1000, "sellPrice": 1200, "warehouseQty": 50,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var it items.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
	return it
}

func TestCreateItem(t *testing.T) {
	r, h := newTestRouter(t)

	it := createRice(t, r)
	assert.Equal(t, "Rice 5kg", it.Name)
	assert.Equal(t, 50, it.WarehouseQty)

	// Every mutation lands in the activity log.
	recent := h.logs.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, logs.TypeCreate, recent[0].Type)
	assert.Equal(t, "Rice 5kg", recent[0].ItemName)
}

func TestCreateItemErrors(t *testing.T) {
	r, _ := newTestRouter(t)
	createRice(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/items", gin.H{"name": "rice 5KG", "costPrice": 1, "sellPrice": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_NAME")

	w = doJSON(t, r, http.MethodPost, "/api/items", gin.H{"name": "No prices"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestTransferFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	it := createRice(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/items/"+it.ItemID+"/transfer", gin.H{"quantity": 20})
	require.Equal(t, http.StatusOK, w.Code)
	var moved items.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &moved))
	assert.Equal(t, 30, moved.WarehouseQty)
	assert.Equal(t, 20, moved.ShopQty)

	w = doJSON(t, r, http.MethodPost, "/api/items/"+it.ItemID+"/transfer", gin.H{"quantity": 40})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_STOCK")

	w = doJSON(t, r, http.MethodGet, "/api/items/"+it.ItemID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after items.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Equal(t, 30, after.WarehouseQty)
	assert.Equal(t, 20, after.ShopQty)
}

func TestTransferUnknownItem(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/items/nope/transfer", gin.H{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestSummary(t *testing.T) {
	r, _ := newTestRouter(t)
	createRice(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(1), got["totalItems"])
	assert.Equal(t, "Rs. 50000.00", got["warehouseValue"])
	assert.Equal(t, "Rs. 0.00", got["shopValue"])
}

func TestBulkQuantity(t *testing.T) {
	r, h := newTestRouter(t)
	it := createRice(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/items/bulk-quantity", gin.H{
		"location": "shop",
		"updates": []gin.H{
			{"itemId": it.ItemID, "quantity": 5},
			{"itemId": "unknown", "quantity": 9},
		},
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	after, err := h.items.Get(it.ItemID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.ShopQty)
	assert.Equal(t, 1, h.items.Count())
}

func TestImportExportEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	csv := "name,costPrice,sellPrice,warehouseQty\nRice,100,120,4\nBroken,x,y,z\n"
	req := httptest.NewRequest(http.MethodPost, "/api/items/import?mode=replace", strings.NewReader(csv))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imported":1,"skipped":1}`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/items/export.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(w.Body.String(),
		"itemId,name,category,unit,costPrice,sellPrice,warehouseQty,shopQty,notes\n"))
	assert.Contains(t, w.Body.String(), "Rice")

	// The import itself shows up in the log export, in insertion order.
	w = doJSON(t, r, http.MethodGet, "/api/logs/export.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Imported 1 items using replace method")
}

func TestSettingsEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"currencySymbol":"Rs.","lowStockThreshold":5,"language":"si"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPut, "/api/settings", gin.H{"currencySymbol": "LKR"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "LKR")
	assert.Contains(t, w.Body.String(), `"lowStockThreshold":5`)

	w = doJSON(t, r, http.MethodPut, "/api/theme", gin.H{"theme": "dark"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/theme", nil)
	assert.JSONEq(t, `{"theme":"dark"}`, w.Body.String())
}

func TestBackupRestoreClear(t *testing.T) {
	r, h := newTestRouter(t)
	createRice(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/backup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap settings.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Contains(t, snap.Items, "Rice 5kg")

	w = doJSON(t, r, http.MethodPost, "/api/clear", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, h.items.Count())
	assert.Empty(t, h.logs.List())

	w = doJSON(t, r, http.MethodPost, "/api/restore", snap)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, h.items.Count(), "restore rehydrates the items store")
}

func TestListItemsQuery(t *testing.T) {
	r, _ := newTestRouter(t)
	createRice(t, r)
	w := doJSON(t, r, http.MethodPost, "/api/items", gin.H{"name": "Soap", "category": "household", "costPrice": 60, "sellPrice": 75})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/items?search=rice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []items.Item `json:"items"`
		Total int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Rice 5kg", resp.Items[0].Name)

	w = doJSON(t, r, http.MethodGet, "/api/items?sort=name&order=desc", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "Soap", resp.Items[0].Name)
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
