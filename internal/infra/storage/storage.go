// Package storage persists whole JSON-encoded collections under fixed keys.
// One key holds one collection's full serialized form; writes replace the
// value atomically, so a failed write never leaves a partial record behind.
package storage

import "context"

// Persisted keys. Kept byte-compatible with the original dataset layout.
const (
	KeyItems    = "inv_items"
	KeyLogs     = "inv_logs"
	KeySettings = "inv_settings"
	KeyVersion  = "inv_app_version"
	KeyTheme    = "theme"
)

// KV is the persistence adapter the stores write through.
// Get returns (nil, nil) when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
