package items

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sahans/shopstock/internal/apperr"
	"github.com/sahans/shopstock/internal/infra/storage"
)

// Store owns the item collection. Every mutation works on a copy of the
// slice, persists it, and only then swaps it in, so a failed write leaves
// both memory and storage untouched.
type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	log   *slog.Logger
	items []Item
}

func Open(ctx context.Context, kv storage.KV, log *slog.Logger) (*Store, error) {
	s := &Store{kv: kv, log: log}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the collection from storage, e.g. after a restore.
func (s *Store) Reload(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.KeyItems)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if raw == nil {
		s.items = []Item{}
		return nil
	}
	var loaded []Item
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	s.items = loaded
	return nil
}

func (s *Store) persist(ctx context.Context, next []Item) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyItems, raw); err != nil {
		return apperr.Persistence(err)
	}
	s.items = next
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ItemID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfName(name string) int {
	for i := range s.items {
		if strings.EqualFold(s.items[i].Name, name) {
			return i
		}
	}
	return -1
}

// All returns a copy of the collection in store order.
func (s *Store) All() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) Get(id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return Item{}, apperr.NotFound("item", id)
}

// GetByName matches case-insensitively.
func (s *Store) GetByName(name string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfName(name); i >= 0 {
		return s.items[i], true
	}
	return Item{}, false
}

func (s *Store) Add(ctx context.Context, draft Draft) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(ctx, draft)
}

func (s *Store) addLocked(ctx context.Context, draft Draft) (Item, error) {
	it, err := draft.normalize()
	if err != nil {
		return Item{}, err
	}
	if s.indexOfName(it.Name) >= 0 {
		return Item{}, apperr.DuplicateName(it.Name)
	}

	now := time.Now().UTC()
	it.ItemID = uuid.NewString()
	it.CreatedAt = now
	it.UpdatedAt = now

	next := append(slices.Clone(s.items), it)
	if err := s.persist(ctx, next); err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *Store) Update(ctx context.Context, id string, patch Patch) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, id, patch)
}

func (s *Store) updateLocked(ctx context.Context, id string, patch Patch) (Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Item{}, apperr.NotFound("item", id)
	}

	updated, err := patch.apply(s.items[idx])
	if err != nil {
		return Item{}, err
	}
	// Rename must stay unique, ignoring the item itself.
	if j := s.indexOfName(updated.Name); j >= 0 && j != idx {
		return Item{}, apperr.DuplicateName(updated.Name)
	}
	updated.UpdatedAt = time.Now().UTC()

	next := slices.Clone(s.items)
	next[idx] = updated
	if err := s.persist(ctx, next); err != nil {
		return Item{}, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Item{}, apperr.NotFound("item", id)
	}
	removed := s.items[idx]

	next := slices.Clone(s.items)
	next = append(next[:idx], next[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return Item{}, err
	}
	return removed, nil
}

// TransferStock moves qty units from warehouse to shop. The total is
// conserved; on any failure the item is left exactly as it was.
func (s *Store) TransferStock(ctx context.Context, id string, qty int) (Item, error) {
	if qty <= 0 {
		return Item{}, apperr.Validation("transfer quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Item{}, apperr.NotFound("item", id)
	}
	it := s.items[idx]
	if qty > it.WarehouseQty {
		return Item{}, apperr.InsufficientStock(it.Name, it.WarehouseQty, qty)
	}

	it.WarehouseQty -= qty
	it.ShopQty += qty
	it.UpdatedAt = time.Now().UTC()

	next := slices.Clone(s.items)
	next[idx] = it
	if err := s.persist(ctx, next); err != nil {
		return Item{}, err
	}
	return it, nil
}

// QuantityUpdate pairs an item with its new absolute quantity.
type QuantityUpdate struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// BulkSetQuantity sets (not adds to) the location quantity for each pair.
// Unknown ids are skipped silently; no per-row report is returned.
func (s *Store) BulkSetQuantity(ctx context.Context, loc Location, updates []QuantityUpdate) error {
	if !loc.Valid() {
		return apperr.Validation("unknown location %q", loc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	next := slices.Clone(s.items)
	for _, u := range updates {
		if u.Quantity < 0 {
			return apperr.Validation("quantity must not be negative")
		}
		idx := -1
		for i := range next {
			if next[i].ItemID == u.ItemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		if loc == LocationWarehouse {
			next[idx].WarehouseQty = u.Quantity
		} else {
			next[idx].ShopQty = u.Quantity
		}
		next[idx].UpdatedAt = now
	}
	return s.persist(ctx, next)
}

/* Aggregates: pure reads over the current collection. */

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) WarehouseTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.WarehouseQty
	}
	return total
}

func (s *Store) ShopTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.ShopQty
	}
	return total
}

func (s *Store) WarehouseValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, it := range s.items {
		total += float64(it.WarehouseQty) * it.CostPrice
	}
	return total
}

func (s *Store) ShopValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, it := range s.items {
		total += float64(it.ShopQty) * it.CostPrice
	}
	return total
}

func (s *Store) PotentialRevenue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, it := range s.items {
		total += float64(it.ShopQty) * it.SellPrice
	}
	return total
}

// Categories returns the distinct non-empty categories, sorted.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, it := range s.items {
		if it.Category != "" && !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	sort.Strings(out)
	return out
}
