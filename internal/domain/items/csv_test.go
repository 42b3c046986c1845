package items

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahans/shopstock/internal/apperr"
)

func TestExportCSV(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Draft{Name: "Plain Tea", CostPrice: "100", SellPrice: "120.5", WarehouseQty: "3"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Draft{Name: `Rice, "red"`, CostPrice: "200", SellPrice: "240"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "itemId,name,category,unit,costPrice,sellPrice,warehouseQty,shopQty,notes", lines[0])
	assert.Contains(t, lines[1], "Plain Tea,,pcs,100,120.5,3,0,")
	assert.Contains(t, lines[2], `"Rice, ""red"""`, "commas and quotes get standard CSV quoting")
}

func TestImportCSVMissingColumns(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.ImportCSV(context.Background(), strings.NewReader("name,category\nRice,grain\n"), ModeMerge)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeImport, apperr.From(err).Code)
}

func TestImportCSVUnknownMode(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.ImportCSV(context.Background(), strings.NewReader("name,costPrice,sellPrice\n"), "upsert")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.From(err).Code)
}

func TestImportCSVMerge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	existing, err := s.Add(ctx, Draft{Name: "Rice 5kg", CostPrice: "1000", SellPrice: "1200", WarehouseQty: "50"})
	require.NoError(t, err)

	csv := strings.Join([]string{
		"name,costPrice,sellPrice,warehouseQty",
		"RICE 5kg,1050,1250,60", // matches existing case-insensitively
		"Flour 1kg,80,95,10",    // new item
		"Broken,notanumber,5,1", // invalid, skipped
	}, "\n")

	res, err := s.ImportCSV(ctx, strings.NewReader(csv), ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped, "a bad row never aborts the import")
	assert.Equal(t, 2, s.Count())

	merged, err := s.Get(existing.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "Rice 5kg", merged.Name, "merge keeps the stored name")
	assert.Equal(t, 1050.0, merged.CostPrice)
	assert.Equal(t, 60, merged.WarehouseQty)
}

func TestImportCSVReplace(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Draft{Name: "Old Stock", CostPrice: "1", SellPrice: "2"})
	require.NoError(t, err)

	csv := strings.Join([]string{
		"name,costPrice,sellPrice",
		"Rice,100,120",
		"rice,999,999", // duplicate within the file: first row wins
	}, "\n")

	res, err := s.ImportCSV(ctx, strings.NewReader(csv), ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, s.Count(), "replace discards the previous collection")

	it, ok := s.GetByName("Rice")
	require.True(t, ok)
	assert.Equal(t, 100.0, it.CostPrice)
}

func TestExportImportRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Draft{Name: "Rice 5kg", Category: "grain", Unit: "bag", CostPrice: "1000.25", SellPrice: "1200", WarehouseQty: "50", ShopQty: "5", Notes: "promo, until friday"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Draft{Name: "Soap", CostPrice: "60", SellPrice: "75"})
	require.NoError(t, err)

	type tuple struct {
		name, category, unit string
		cost, sell           float64
		wh, shop             int
		notes                string
	}
	snapshot := func() []tuple {
		var out []tuple
		for _, it := range s.All() {
			out = append(out, tuple{it.Name, it.Category, it.Unit, it.CostPrice, it.SellPrice, it.WarehouseQty, it.ShopQty, it.Notes})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
		return out
	}
	before := snapshot()

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(&buf))
	res, err := s.ImportCSV(ctx, bytes.NewReader(buf.Bytes()), ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Skipped)

	assert.Equal(t, before, snapshot(), "round trip preserves every field tuple")
}
