package items

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sahans/shopstock/internal/apperr"
)

// Item is one stock-keeping unit tracked across the two locations.
// Name is unique case-insensitively; quantities never go negative.
type Item struct {
	ItemID       string    `json:"itemId"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	CostPrice    float64   `json:"costPrice"`
	SellPrice    float64   `json:"sellPrice"`
	WarehouseQty int       `json:"warehouseQty"`
	ShopQty      int       `json:"shopQty"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Location names the two stock locations.
type Location string

const (
	LocationWarehouse Location = "warehouse"
	LocationShop      Location = "shop"
)

func (l Location) Valid() bool {
	return l == LocationWarehouse || l == LocationShop
}

// Qty returns the item's quantity at the location.
func (i Item) Qty(loc Location) int {
	if loc == LocationWarehouse {
		return i.WarehouseQty
	}
	return i.ShopQty
}

// LowStock reports whether qty is positive but at or below threshold.
func LowStock(qty, threshold int) bool {
	return qty > 0 && qty <= threshold
}

// Draft carries raw operator input (form fields or a CSV row), everything
// still a string. Normalization into an Item happens exactly once, here.
type Draft struct {
	Name         string
	Category     string
	Unit         string
	CostPrice    string
	SellPrice    string
	WarehouseQty string
	ShopQty      string
	Notes        string
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name         *string
	Category     *string
	Unit         *string
	CostPrice    *string
	SellPrice    *string
	WarehouseQty *string
	ShopQty      *string
	Notes        *string
}

func parsePrice(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperr.Validation("%s: %q is not a number", field, raw)
	}
	if v < 0 {
		return 0, apperr.Validation("%s must not be negative", field)
	}
	return v, nil
}

// parseQty accepts decimal input and truncates the fraction; empty means 0.
func parseQty(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperr.Validation("%s: %q is not a number", field, raw)
	}
	if v < 0 {
		return 0, apperr.Validation("%s must not be negative", field)
	}
	return int(v), nil
}

// normalize validates a draft and produces a valid Item, minus identity and
// timestamps which the store assigns.
func (d Draft) normalize() (Item, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" || strings.TrimSpace(d.CostPrice) == "" || strings.TrimSpace(d.SellPrice) == "" {
		return Item{}, apperr.Validation("name, costPrice and sellPrice are required")
	}

	cost, err := parsePrice("costPrice", d.CostPrice)
	if err != nil {
		return Item{}, err
	}
	sell, err := parsePrice("sellPrice", d.SellPrice)
	if err != nil {
		return Item{}, err
	}
	whQty, err := parseQty("warehouseQty", d.WarehouseQty)
	if err != nil {
		return Item{}, err
	}
	shopQty, err := parseQty("shopQty", d.ShopQty)
	if err != nil {
		return Item{}, err
	}

	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		unit = "pcs"
	}

	return Item{
		Name:         name,
		Category:     strings.TrimSpace(d.Category),
		Unit:         unit,
		CostPrice:    cost,
		SellPrice:    sell,
		WarehouseQty: whQty,
		ShopQty:      shopQty,
		Notes:        strings.TrimSpace(d.Notes),
	}, nil
}

// apply overlays the patch onto a copy of it, re-normalizing every field
// that is present and leaving the rest alone.
func (p Patch) apply(it Item) (Item, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return Item{}, apperr.Validation("name must not be empty")
		}
		it.Name = name
	}
	if p.Category != nil {
		it.Category = strings.TrimSpace(*p.Category)
	}
	if p.Unit != nil {
		unit := strings.TrimSpace(*p.Unit)
		if unit == "" {
			unit = "pcs"
		}
		it.Unit = unit
	}
	if p.CostPrice != nil {
		v, err := parsePrice("costPrice", *p.CostPrice)
		if err != nil {
			return Item{}, err
		}
		it.CostPrice = v
	}
	if p.SellPrice != nil {
		v, err := parsePrice("sellPrice", *p.SellPrice)
		if err != nil {
			return Item{}, err
		}
		it.SellPrice = v
	}
	if p.WarehouseQty != nil {
		v, err := parseQty("warehouseQty", *p.WarehouseQty)
		if err != nil {
			return Item{}, err
		}
		it.WarehouseQty = v
	}
	if p.ShopQty != nil {
		v, err := parseQty("shopQty", *p.ShopQty)
		if err != nil {
			return Item{}, err
		}
		it.ShopQty = v
	}
	if p.Notes != nil {
		it.Notes = strings.TrimSpace(*p.Notes)
	}
	return it, nil
}
