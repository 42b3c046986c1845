package items

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sahans/shopstock/internal/apperr"
)

// ImportMode selects how CSV rows meet the existing collection.
type ImportMode string

const (
	// ModeMerge updates items matched by name and creates the rest.
	ModeMerge ImportMode = "merge"
	// ModeReplace discards the whole collection before importing.
	ModeReplace ImportMode = "replace"
)

func (m ImportMode) Valid() bool { return m == ModeMerge || m == ModeReplace }

var csvHeader = []string{
	"itemId", "name", "category", "unit",
	"costPrice", "sellPrice", "warehouseQty", "shopQty", "notes",
}

// ImportResult is the aggregate outcome of one CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportCSV reads rows from r. A row that fails validation is skipped and
// reported in the skip count, never aborting the rest of the import.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader, mode ImportMode) (ImportResult, error) {
	if !mode.Valid() {
		return ImportResult{}, apperr.Validation("unknown import mode %q", mode)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, apperr.Import("cannot read CSV header", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"name", "costPrice", "sellPrice"} {
		if _, ok := cols[required]; !ok {
			return ImportResult{}, apperr.Import(fmt.Sprintf("missing required column %q", required), nil)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == ModeReplace {
		if err := s.persist(ctx, []Item{}); err != nil {
			return ImportResult{}, err
		}
	}

	var res ImportResult
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.log.Warn("csv row unreadable, skipping", "err", err)
			res.Skipped++
			continue
		}
		if len(record) != len(header) {
			res.Skipped++
			continue
		}

		field := func(name string) (string, bool) {
			i, ok := cols[name]
			if !ok {
				return "", false
			}
			return record[i], true
		}
		name, _ := field("name")

		if idx := s.indexOfName(name); idx >= 0 {
			if mode != ModeMerge {
				// Duplicate name within a replace import: first row wins.
				res.Skipped++
				continue
			}
			patch := Patch{}
			if v, ok := field("category"); ok {
				patch.Category = &v
			}
			if v, ok := field("unit"); ok {
				patch.Unit = &v
			}
			if v, ok := field("costPrice"); ok {
				patch.CostPrice = &v
			}
			if v, ok := field("sellPrice"); ok {
				patch.SellPrice = &v
			}
			if v, ok := field("warehouseQty"); ok {
				patch.WarehouseQty = &v
			}
			if v, ok := field("shopQty"); ok {
				patch.ShopQty = &v
			}
			if v, ok := field("notes"); ok {
				patch.Notes = &v
			}
			if _, err := s.updateLocked(ctx, s.items[idx].ItemID, patch); err != nil {
				s.log.Warn("csv row rejected, skipping", "name", name, "err", err)
				res.Skipped++
				continue
			}
			res.Imported++
			continue
		}

		draft := Draft{Name: name}
		if v, ok := field("category"); ok {
			draft.Category = v
		}
		if v, ok := field("unit"); ok {
			draft.Unit = v
		}
		if v, ok := field("costPrice"); ok {
			draft.CostPrice = v
		}
		if v, ok := field("sellPrice"); ok {
			draft.SellPrice = v
		}
		if v, ok := field("warehouseQty"); ok {
			draft.WarehouseQty = v
		}
		if v, ok := field("shopQty"); ok {
			draft.ShopQty = v
		}
		if v, ok := field("notes"); ok {
			draft.Notes = v
		}
		if _, err := s.addLocked(ctx, draft); err != nil {
			s.log.Warn("csv row rejected, skipping", "name", name, "err", err)
			res.Skipped++
			continue
		}
		res.Imported++
	}
	return res, nil
}

// ExportCSV writes the header and one row per item in store order.
func (s *Store) ExportCSV(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range s.items {
		row := []string{
			it.ItemID,
			it.Name,
			it.Category,
			it.Unit,
			strconv.FormatFloat(it.CostPrice, 'f', -1, 64),
			strconv.FormatFloat(it.SellPrice, 'f', -1, 64),
			strconv.Itoa(it.WarehouseQty),
			strconv.Itoa(it.ShopQty),
			it.Notes,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
