package logs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sahans/shopstock/internal/apperr"
	"github.com/sahans/shopstock/internal/infra/storage"
)

// Store is the append-only activity log. Entries are created once and never
// mutated; only a full-data clear removes them.
type Store struct {
	mu      sync.Mutex
	kv      storage.KV
	log     *slog.Logger
	entries []Entry
}

func Open(ctx context.Context, kv storage.KV, log *slog.Logger) (*Store, error) {
	s := &Store{kv: kv, log: log}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Reload(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.KeyLogs)
	if err != nil {
		return fmt.Errorf("load logs: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if raw == nil {
		s.entries = []Entry{}
		return nil
	}
	var loaded []Entry
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("decode logs: %w", err)
	}
	s.entries = loaded
	return nil
}

// Append records an activity. It always succeeds short of a storage write
// failure; unrecognized type tags are coerced to TypeOther.
func (s *Store) Append(ctx context.Context, typ Type, itemID, itemName string, qty int, details string) (Entry, error) {
	if !typ.Valid() {
		s.log.Debug("unrecognized activity type, recording as other", "type", string(typ))
		typ = TypeOther
	}
	entry := Entry{
		ID:       uuid.NewString(),
		Time:     time.Now().UTC(),
		Type:     typ,
		ItemID:   itemID,
		ItemName: itemName,
		Qty:      qty,
		Details:  details,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(slices.Clone(s.entries), entry)
	raw, err := json.Marshal(next)
	if err != nil {
		return Entry{}, fmt.Errorf("encode logs: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyLogs, raw); err != nil {
		return Entry{}, apperr.Persistence(err)
	}
	s.entries = next
	return entry, nil
}

// List returns all entries newest-first. Ties keep insertion order.
func (s *Store) List() []Entry {
	s.mu.Lock()
	out := slices.Clone(s.entries)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	return out
}

// Recent returns the first n of the newest-first ordering.
func (s *Store) Recent(n int) []Entry {
	all := s.List()
	if n < len(all) {
		return all[:n]
	}
	return all
}

// RecentByType filters newest-first, then limits.
func (s *Store) RecentByType(typ Type, n int) []Entry {
	var out []Entry
	for _, e := range s.List() {
		if e.Type != typ {
			continue
		}
		out = append(out, e)
		if len(out) == n {
			break
		}
	}
	return out
}

// ExportCSV writes entries in insertion order, not the newest-first display
// order. The asymmetry with List is deliberate and kept.
func (s *Store) ExportCSV(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"time", "type", "itemId", "itemName", "qty", "details"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range s.entries {
		qty := ""
		if e.Qty != 0 {
			qty = strconv.Itoa(e.Qty)
		}
		row := []string{
			e.Time.Format(time.RFC3339),
			string(e.Type),
			e.ItemID,
			e.ItemName,
			qty,
			e.Details,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
