// Package store persists option values under their namespaced names.
package store

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Store is the option storage API the settings page reads from and the
// submission pipeline writes to. A missing option is reported with
// found=false and a nil error.
type Store interface {
	Get(ctx context.Context, name string) (value schema.Value, found bool, err error)
	Set(ctx context.Context, name string, value schema.Value) error
	Delete(ctx context.Context, name string) error
	All(ctx context.Context) (map[string]schema.Value, error)
}

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store: closed")

// MemoryDSN selects the in-process store in Open.
const MemoryDSN = "memory"

// Open returns a memory store for "memory" or an empty dsn, and a SQLite
// store for anything else. The caller owns the returned closer.
func Open(ctx context.Context, dsn string) (Store, io.Closer, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || dsn == MemoryDSN {
		mem := NewMemory()
		return mem, mem, nil
	}
	db, err := OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return db, db, nil
}
