package dao

import (
	"errors"
	"fmt"

	"github.com/varity-labs/varity-app-store/database"
)

// PendingDAO pending review queue: a dense position array plus an id -> position index.
// Removal moves the last entry into the freed slot, so order is not preserved.
type PendingDAO struct {
	db database.Database
}

// NewPendingDAO create Pending DAO instance
func NewPendingDAO(db database.Database) *PendingDAO {
	return &PendingDAO{db: db}
}

// Len number of queued ids
func (d *PendingDAO) Len(r database.Reader) (uint64, error) {
	return GetUint64(r, database.CollectionCounters, []byte(counterPendingCount))
}

// Contains reports whether id is queued
func (d *PendingDAO) Contains(r database.Reader, id uint64) (bool, error) {
	return r.Has(database.CollectionPendingIndex, be64(id))
}

// Add appends id at the end of the array
func (d *PendingDAO) Add(b database.Batch, id uint64) error {
	n, err := d.Len(b)
	if err != nil {
		return err
	}
	if err := b.Set(database.CollectionPending, be64(n), be64(id)); err != nil {
		return err
	}
	if err := b.Set(database.CollectionPendingIndex, be64(id), be64(n)); err != nil {
		return err
	}
	return PutUint64(b, database.CollectionCounters, []byte(counterPendingCount), n+1)
}

// Remove swap-removes id, returning false when it was not queued
func (d *PendingDAO) Remove(b database.Batch, id uint64) (bool, error) {
	pos, err := GetUint64Strict(b, database.CollectionPendingIndex, be64(id))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	n, err := d.Len(b)
	if err != nil {
		return false, err
	}
	if n == 0 || pos >= n {
		return false, fmt.Errorf("pending queue corrupted: position %d of %d", pos, n)
	}
	last := n - 1

	if pos != last {
		lastID, err := GetUint64Strict(b, database.CollectionPending, be64(last))
		if err != nil {
			return false, fmt.Errorf("pending queue corrupted at %d: %w", last, err)
		}
		if err := b.Set(database.CollectionPending, be64(pos), be64(lastID)); err != nil {
			return false, err
		}
		if err := b.Set(database.CollectionPendingIndex, be64(lastID), be64(pos)); err != nil {
			return false, err
		}
	}
	if err := b.Delete(database.CollectionPending, be64(last)); err != nil {
		return false, err
	}
	if err := b.Delete(database.CollectionPendingIndex, be64(id)); err != nil {
		return false, err
	}
	return true, PutUint64(b, database.CollectionCounters, []byte(counterPendingCount), last)
}

// List queued ids in array order, which carries no meaning
func (d *PendingDAO) List() ([]uint64, error) {
	var ids []uint64
	err := d.db.Scan(database.CollectionPending, nil, func(_, value []byte) (bool, error) {
		id, err := decodeBE64(value)
		if err != nil {
			return false, err
		}
		ids = append(ids, id)
		return true, nil
	})
	return ids, err
}
