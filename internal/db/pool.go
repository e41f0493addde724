// Package db owns the connections to the blog database and the queries run against it.
package db

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cblogserver/backend/internal/config"
)

// MaxConnections caps the open physical connections of a pool.
// Callers beyond the cap wait for a connection to be released.
const MaxConnections = 100

// Pool runs read queries on pooled connections. Query holds one connection
// for the duration of the call and releases it on every return path.
type Pool interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Stats() Stats
	Close() error
}

// Stats is a snapshot of pool usage.
type Stats struct {
	MaxOpen   int
	Open      int // physical connections, 0 when the driver does not report it
	InUse     int
	PeakInUse int
	WaitCount int64
}

// Open creates the pool for the configured driver. Connections are opened
// lazily, so an unreachable database surfaces on the first query.
func Open(cfg *config.Configuration) (Pool, error) {
	switch cfg.DB.Driver {
	case config.DriverMySQL:
		return NewMySQLPool(cfg.DB)
	case config.DriverSQLite:
		return NewSQLitePool(cfg.DB.Database, MaxConnections)
	default:
		return nil, fmt.Errorf("open pool: unsupported driver %q", cfg.DB.Driver)
	}
}

// usage counts connections checked out of a pool and remembers the peak.
type usage struct {
	inUse atomic.Int64
	peak  atomic.Int64
}

func (u *usage) acquire() {
	n := u.inUse.Add(1)
	for {
		peak := u.peak.Load()
		if n <= peak || u.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (u *usage) release() { u.inUse.Add(-1) }

func (u *usage) snapshot() (inUse, peak int) {
	return int(u.inUse.Load()), int(u.peak.Load())
}
