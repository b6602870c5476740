package dao

import (
	"errors"

	"github.com/varity-labs/varity-app-store/database"
)

// FeaturedDAO curated featured list, ordered by the time an app was featured
type FeaturedDAO struct {
	db database.Database
}

// NewFeaturedDAO create Featured DAO instance
func NewFeaturedDAO(db database.Database) *FeaturedDAO {
	return &FeaturedDAO{db: db}
}

// Contains reports whether id is featured
func (d *FeaturedDAO) Contains(r database.Reader, id uint64) (bool, error) {
	return r.Has(database.CollectionFeaturedIndex, be64(id))
}

// Add appends id, returning false when it is already featured
func (d *FeaturedDAO) Add(b database.Batch, id uint64) (bool, error) {
	ok, err := d.Contains(b, id)
	if err != nil || ok {
		return false, err
	}
	seq, err := GetUint64(b, database.CollectionCounters, []byte(counterFeaturedSeq))
	if err != nil {
		return false, err
	}
	seq++
	if err := b.Set(database.CollectionFeatured, be64(seq), be64(id)); err != nil {
		return false, err
	}
	if err := b.Set(database.CollectionFeaturedIndex, be64(id), be64(seq)); err != nil {
		return false, err
	}
	return true, PutUint64(b, database.CollectionCounters, []byte(counterFeaturedSeq), seq)
}

// Remove drops id, returning false when it was not featured
func (d *FeaturedDAO) Remove(b database.Batch, id uint64) (bool, error) {
	seq, err := GetUint64Strict(b, database.CollectionFeaturedIndex, be64(id))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := b.Delete(database.CollectionFeatured, be64(seq)); err != nil {
		return false, err
	}
	return true, b.Delete(database.CollectionFeaturedIndex, be64(id))
}

// List featured ids, oldest first
func (d *FeaturedDAO) List() ([]uint64, error) {
	var ids []uint64
	err := d.db.Scan(database.CollectionFeatured, nil, func(_, value []byte) (bool, error) {
		id, err := decodeBE64(value)
		if err != nil {
			return false, err
		}
		ids = append(ids, id)
		return true, nil
	})
	return ids, err
}
