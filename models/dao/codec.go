package dao

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/varity-labs/varity-app-store/database"
)

// Counter keys in the counters collection
const (
	counterAppCount        = "app_count"
	counterPendingCount    = "pending_count"
	counterFeaturedSeq     = "featured_seq"
	counterInitialized     = "initialized"
	counterPlatformRevenue = "platform_revenue"
	counterDeveloperPayout = "developer_payouts"
)

func be64(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

func decodeBE64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid uint64 encoding, %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// GetUint64 reads a big-endian counter, 0 when absent
func GetUint64(r database.Reader, collection string, key []byte) (uint64, error) {
	val, err := r.Get(collection, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeBE64(val)
}

// PutUint64 stages a big-endian counter
func PutUint64(b database.Batch, collection string, key []byte, n uint64) error {
	return b.Set(collection, key, be64(n))
}

func getJSON(r database.Reader, collection string, key []byte, v interface{}) error {
	val, err := r.Get(collection, key)
	if err != nil {
		return err
	}
	if err := jsonUnmarshal(val, v); err != nil {
		return fmt.Errorf("failed to decode %s record: %w", collection, err)
	}
	return nil
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func putJSON(b database.Batch, collection string, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Set(collection, key, data)
}

// scanIDs collects the trailing be64 id of every key under prefix
func scanIDs(db database.Database, collection string, prefix []byte) ([]uint64, error) {
	var ids []uint64
	err := db.Scan(collection, prefix, func(key, _ []byte) (bool, error) {
		if len(key) < 8 {
			return false, fmt.Errorf("malformed %s key", collection)
		}
		id, err := decodeBE64(key[len(key)-8:])
		if err != nil {
			return false, err
		}
		ids = append(ids, id)
		return true, nil
	})
	return ids, err
}

// GetUint64Strict like GetUint64 but returns database.ErrNotFound when absent
func GetUint64Strict(r database.Reader, collection string, key []byte) (uint64, error) {
	val, err := r.Get(collection, key)
	if err != nil {
		return 0, err
	}
	return decodeBE64(val)
}
