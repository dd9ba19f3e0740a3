package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// BadgerStorage implements Storage using BadgerDB.
// Writes are synchronous so a returned Set is durable.
type BadgerStorage struct {
	db    *badger.DB
	opts  BadgerOptions
	stats *badgerStats
}

// BadgerOptions configures the BadgerDB instance
type BadgerOptions struct {
	// Directory to store the database files
	Dir string

	// InMemory creates an in-memory database (for testing)
	InMemory bool

	// ReadOnly opens database in read-only mode
	ReadOnly bool

	// ValueLogFileSize sets the maximum size of value log files
	ValueLogFileSize int64

	// SyncWrites flushes every write to disk before returning
	SyncWrites bool

	// Cache size in MB (0 = no cache)
	BlockCacheSize int64
}

// DefaultBadgerOptions returns options sized for a small shopper state store
func DefaultBadgerOptions(dir string) BadgerOptions {
	return BadgerOptions{
		Dir:              dir,
		ValueLogFileSize: 64 << 20, // 64MB
		SyncWrites:       true,
		BlockCacheSize:   8,
	}
}

type badgerStats struct {
	readCount  int64
	writeCount int64
	misses     int64
}

// Stats reports operation counters
type Stats struct {
	ReadCount  int64 `json:"read_count"`
	WriteCount int64 `json:"write_count"`
	Misses     int64 `json:"misses"`
	LSMSize    int64 `json:"lsm_size"`
	VlogSize   int64 `json:"vlog_size"`
}

// NewBadgerStorage creates a new BadgerDB-backed storage instance
func NewBadgerStorage(opts BadgerOptions) (*BadgerStorage, error) {
	dir := opts.Dir
	if opts.InMemory {
		dir = ""
	}

	badgerOpts := badger.DefaultOptions(dir).
		WithSyncWrites(opts.SyncWrites).
		WithCompression(options.ZSTD).
		WithLogger(nil)

	if opts.ValueLogFileSize > 0 {
		badgerOpts = badgerOpts.WithValueLogFileSize(opts.ValueLogFileSize)
	}
	if opts.BlockCacheSize > 0 {
		badgerOpts = badgerOpts.WithBlockCacheSize(opts.BlockCacheSize << 20) // Convert MB to bytes
	}
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.ReadOnly {
		badgerOpts = badgerOpts.WithReadOnly(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStorage{
		db:    db,
		opts:  opts,
		stats: &badgerStats{},
	}, nil
}

// Get retrieves a value by key
func (bs *BadgerStorage) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt64(&bs.stats.readCount, 1)

	var result []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				atomic.AddInt64(&bs.stats.misses, 1)
				return ErrKeyNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			result = append([]byte{}, val...) // Copy the value
			return nil
		})
	})

	return result, err
}

// Set stores a key-value pair, replacing any previous value
func (bs *BadgerStorage) Set(ctx context.Context, key string, value []byte) error {
	atomic.AddInt64(&bs.stats.writeCount, 1)

	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Delete removes a key
func (bs *BadgerStorage) Delete(ctx context.Context, key string) error {
	atomic.AddInt64(&bs.stats.writeCount, 1)

	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Has checks if a key exists
func (bs *BadgerStorage) Has(ctx context.Context, key string) (bool, error) {
	err := bs.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// Keys lists keys under prefix
func (bs *BadgerStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(iter.Item().KeyCopy(nil)))
		}
		return nil
	})

	return keys, err
}

// Backup writes a full backup of the database to w
func (bs *BadgerStorage) Backup(ctx context.Context, w io.Writer) error {
	_, err := bs.db.Backup(w, 0)
	return err
}

// Restore loads a backup produced by Backup
func (bs *BadgerStorage) Restore(ctx context.Context, r io.Reader) error {
	return bs.db.Load(r, 16)
}

// GC runs value log garbage collection until nothing is left to rewrite
func (bs *BadgerStorage) GC(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := bs.db.RunValueLogGC(0.5)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
				return nil
			}
			return err
		}
	}
}

// DropAll removes all storefront data from the database
func (bs *BadgerStorage) DropAll(ctx context.Context) error {
	return bs.db.DropPrefix([]byte(Prefix))
}

// Close closes the database
func (bs *BadgerStorage) Close() error {
	return bs.db.Close()
}

// Stats returns storage statistics
func (bs *BadgerStorage) Stats() Stats {
	lsm, vlog := bs.db.Size()

	return Stats{
		ReadCount:  atomic.LoadInt64(&bs.stats.readCount),
		WriteCount: atomic.LoadInt64(&bs.stats.writeCount),
		Misses:     atomic.LoadInt64(&bs.stats.misses),
		LSMSize:    lsm,
		VlogSize:   vlog,
	}
}

// Path returns the directory path of the database
func (bs *BadgerStorage) Path() string {
	if bs.opts.InMemory {
		return ":memory:"
	}
	return strings.TrimRight(bs.opts.Dir, "/")
}

// WaitForGC runs GC on a fixed interval until ctx is cancelled.
func (bs *BadgerStorage) WaitForGC(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = bs.GC(ctx)
		}
	}
}
