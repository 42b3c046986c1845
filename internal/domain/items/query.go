package items

import (
	"sort"
	"strings"
)

// Query narrows and orders the collection for listing. Zero value returns
// everything in store order.
type Query struct {
	// Search matches name, category or notes, case-insensitive substring.
	Search string
	// Category filters on the exact category label.
	Category string
	// LowStockOnly keeps items whose Location quantity is low per Threshold.
	LowStockOnly bool
	Location     Location
	Threshold    int

	// SortField is one of name, category, costPrice, sellPrice,
	// warehouseQty, shopQty. Empty keeps store order.
	SortField string
	Desc      bool
}

func (q Query) matches(it Item) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(it.Name), term) &&
			!strings.Contains(strings.ToLower(it.Category), term) &&
			!strings.Contains(strings.ToLower(it.Notes), term) {
			return false
		}
	}
	if q.Category != "" && it.Category != q.Category {
		return false
	}
	if q.LowStockOnly {
		loc := q.Location
		if !loc.Valid() {
			loc = LocationWarehouse
		}
		if !LowStock(it.Qty(loc), q.Threshold) {
			return false
		}
	}
	return true
}

// Find returns the matching items, sorted per the query.
func (s *Store) Find(q Query) []Item {
	var out []Item
	for _, it := range s.All() {
		if q.matches(it) {
			out = append(out, it)
		}
	}
	if q.SortField != "" {
		sortItems(out, q.SortField, q.Desc)
	}
	return out
}

func sortItems(list []Item, field string, desc bool) {
	var less func(a, b Item) bool
	switch field {
	case "name":
		less = func(a, b Item) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "category":
		less = func(a, b Item) bool { return strings.ToLower(a.Category) < strings.ToLower(b.Category) }
	case "costPrice":
		less = func(a, b Item) bool { return a.CostPrice < b.CostPrice }
	case "sellPrice":
		less = func(a, b Item) bool { return a.SellPrice < b.SellPrice }
	case "warehouseQty":
		less = func(a, b Item) bool { return a.WarehouseQty < b.WarehouseQty }
	case "shopQty":
		less = func(a, b Item) bool { return a.ShopQty < b.ShopQty }
	default:
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}
