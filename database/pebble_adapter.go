package database

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/varity-labs/varity-app-store/common"
)

var log = common.NewLog("database")

// collectionSep separates the collection name from the record key. All collections share
// one keyspace so a batch can span them atomically.
const collectionSep = '/'

// PebbleDatabase PebbleDB database implementation with prefixed collections
type PebbleDatabase struct {
	db     *pebble.DB
	closed atomic.Bool
}

// PebbleConfig PebbleDB configuration
type PebbleConfig struct {
	DataDir  string
	InMemory bool
}

// NewPebbleDatabase create PebbleDB database instance
func NewPebbleDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*PebbleConfig)
	if !ok {
		return nil, fmt.Errorf("invalid PebbleDB config type")
	}

	opts := &pebble.Options{}
	path := filepath.Join(cfg.DataDir, "appstore_db")
	if cfg.InMemory {
		opts.FS = vfs.NewMem()
		path = ""
	} else {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}

	log.Info("PebbleDB database opened", "path", path, "inMemory", cfg.InMemory)
	return &PebbleDatabase{db: db}, nil
}

func collectionKey(collection string, key []byte) []byte {
	k := make([]byte, 0, len(collection)+1+len(key))
	k = append(k, collection...)
	k = append(k, collectionSep)
	return append(k, key...)
}

// upperBound smallest key greater than every key with the prefix
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// pebbleReader satisfied by *pebble.DB and indexed *pebble.Batch
type pebbleReader interface {
	Get(key []byte) ([]byte, io.Closer, error)
}

func get(r pebbleReader, collection string, key []byte) ([]byte, error) {
	val, closer, err := r.Get(collectionKey(collection, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

func has(r pebbleReader, collection string, key []byte) (bool, error) {
	_, err := get(r, collection, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *PebbleDatabase) Get(collection string, key []byte) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrDatabaseClosed
	}
	return get(p.db, collection, key)
}

func (p *PebbleDatabase) Has(collection string, key []byte) (bool, error) {
	if p.closed.Load() {
		return false, ErrDatabaseClosed
	}
	return has(p.db, collection, key)
}

func (p *PebbleDatabase) Scan(collection string, prefix []byte, fn ScanFunc) error {
	if p.closed.Load() {
		return ErrDatabaseClosed
	}
	lower := collectionKey(collection, prefix)
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upperBound(lower),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	skip := len(collection) + 1
	for iter.First(); iter.Valid(); iter.Next() {
		value, err := iter.ValueAndErr()
		if err != nil {
			return err
		}
		cont, err := fn(iter.Key()[skip:], value)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return iter.Error()
}

func (p *PebbleDatabase) NewBatch() Batch {
	return &pebbleBatch{batch: p.db.NewIndexedBatch()}
}

func (p *PebbleDatabase) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrDatabaseClosed
	}
	log.Info("Closing PebbleDB database")
	return p.db.Close()
}

// pebbleBatch indexed batch, reads see staged writes
type pebbleBatch struct {
	batch *pebble.Batch
	done  bool
}

func (b *pebbleBatch) Get(collection string, key []byte) ([]byte, error) {
	if b.done {
		return nil, ErrBatchClosed
	}
	return get(b.batch, collection, key)
}

func (b *pebbleBatch) Has(collection string, key []byte) (bool, error) {
	if b.done {
		return false, ErrBatchClosed
	}
	return has(b.batch, collection, key)
}

func (b *pebbleBatch) Set(collection string, key, value []byte) error {
	if b.done {
		return ErrBatchClosed
	}
	return b.batch.Set(collectionKey(collection, key), value, nil)
}

func (b *pebbleBatch) Delete(collection string, key []byte) error {
	if b.done {
		return ErrBatchClosed
	}
	return b.batch.Delete(collectionKey(collection, key), nil)
}

func (b *pebbleBatch) Commit() error {
	if b.done {
		return ErrBatchClosed
	}
	b.done = true
	defer b.batch.Close()
	return b.batch.Commit(pebble.Sync)
}

func (b *pebbleBatch) Discard() {
	if b.done {
		return
	}
	b.done = true
	b.batch.Close()
}
