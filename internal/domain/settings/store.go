package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sahans/shopstock/internal/apperr"
	"github.com/sahans/shopstock/internal/infra/storage"
)

// Store owns the settings singleton plus the dataset-level keys (version
// marker, theme preference) and the whole-dataset backup operations.
type Store struct {
	mu       sync.Mutex
	kv       storage.KV
	log      *slog.Logger
	settings Settings
}

// Open loads persisted settings over the defaults and stamps the data
// version marker, mirroring first-run initialization.
func Open(ctx context.Context, kv storage.KV, log *slog.Logger) (*Store, error) {
	s := &Store{kv: kv, log: log}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	if err := kv.Set(ctx, storage.KeyVersion, []byte(DataVersion)); err != nil {
		return nil, apperr.Persistence(err)
	}
	return s, nil
}

func (s *Store) Reload(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.KeySettings)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = Defaults()
	if raw == nil {
		return nil
	}
	// Persisted values overlay the defaults; unknown keys are dropped.
	if err := json.Unmarshal(raw, &s.settings); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, next Settings) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeySettings, raw); err != nil {
		return apperr.Persistence(err)
	}
	s.settings = next
	return nil
}

// Current returns a copy of the settings.
func (s *Store) Current() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Get looks up a single setting by its JSON key name.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case "currencySymbol":
		return s.settings.CurrencySymbol, true
	case "lowStockThreshold":
		return s.settings.LowStockThreshold, true
	case "language":
		return s.settings.Language, true
	}
	return nil, false
}

// Set updates a single setting by key and persists immediately.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	switch key {
	case "currencySymbol":
		v, ok := value.(string)
		if !ok {
			return apperr.Validation("currencySymbol must be a string")
		}
		next.CurrencySymbol = v
	case "lowStockThreshold":
		v, ok := value.(int)
		if !ok || v < 0 {
			return apperr.Validation("lowStockThreshold must be a non-negative integer")
		}
		next.LowStockThreshold = v
	case "language":
		v, ok := value.(string)
		if !ok {
			return apperr.Validation("language must be a string")
		}
		next.Language = v
	default:
		return apperr.Validation("unknown setting %q", key)
	}
	return s.persist(ctx, next)
}

// SetAll shallow-merges the patch into the current settings.
func (s *Store) SetAll(ctx context.Context, patch Patch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if patch.CurrencySymbol != nil {
		next.CurrencySymbol = *patch.CurrencySymbol
	}
	if patch.LowStockThreshold != nil {
		if *patch.LowStockThreshold < 0 {
			return Settings{}, apperr.Validation("lowStockThreshold must not be negative")
		}
		next.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.Language != nil {
		next.Language = *patch.Language
	}
	if err := s.persist(ctx, next); err != nil {
		return Settings{}, err
	}
	return next, nil
}

// Theme returns the stored theme preference, defaulting to light.
func (s *Store) Theme(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, storage.KeyTheme)
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}
	if raw == nil {
		return "light", nil
	}
	return string(raw), nil
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return apperr.Validation("theme must be light or dark")
	}
	if err := s.kv.Set(ctx, storage.KeyTheme, []byte(theme)); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// ExportSnapshot bundles the raw persisted form of every dataset key.
func (s *Store) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	read := func(key string, dst *string) error {
		raw, err := s.kv.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("snapshot read %s: %w", key, err)
		}
		*dst = string(raw)
		return nil
	}
	if err := read(storage.KeyItems, &snap.Items); err != nil {
		return Snapshot{}, err
	}
	if err := read(storage.KeyLogs, &snap.Logs); err != nil {
		return Snapshot{}, err
	}
	if err := read(storage.KeySettings, &snap.Settings); err != nil {
		return Snapshot{}, err
	}
	if err := read(storage.KeyVersion, &snap.Version); err != nil {
		return Snapshot{}, err
	}
	if err := read(storage.KeyTheme, &snap.Theme); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// ImportSnapshot overwrites each persisted key present in the bundle and
// leaves absent ones untouched. The caller is expected to reload the other
// stores afterwards.
func (s *Store) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	write := func(key, value string) error {
		if value == "" {
			return nil
		}
		if err := s.kv.Set(ctx, key, []byte(value)); err != nil {
			return apperr.Import(fmt.Sprintf("restore of %s failed", key), err)
		}
		return nil
	}
	if err := write(storage.KeyItems, snap.Items); err != nil {
		return err
	}
	if err := write(storage.KeyLogs, snap.Logs); err != nil {
		return err
	}
	if err := write(storage.KeySettings, snap.Settings); err != nil {
		return err
	}
	if err := write(storage.KeyVersion, snap.Version); err != nil {
		return err
	}
	if err := write(storage.KeyTheme, snap.Theme); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// ClearAll erases items, logs and settings. Theme preference and the
// version marker survive on purpose.
func (s *Store) ClearAll(ctx context.Context) error {
	for _, key := range []string{storage.KeyItems, storage.KeyLogs, storage.KeySettings} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return apperr.Persistence(err)
		}
	}
	s.log.Info("all data cleared")
	return s.Reload(ctx)
}
