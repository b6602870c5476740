package database

// Reader read access shared by the database and staged batches
type Reader interface {
	// Get returns a copy of the value, ErrNotFound when absent
	Get(collection string, key []byte) ([]byte, error)
	Has(collection string, key []byte) (bool, error)
}

// ScanFunc receives each key (without the collection prefix) in ascending order.
// Returning false stops the scan. key and value are only valid during the call.
type ScanFunc func(key, value []byte) (bool, error)

// Database interface for different database implementations
type Database interface {
	Reader

	// Scan iterates a collection in ascending key order, restricted to keys with the given prefix
	Scan(collection string, prefix []byte, fn ScanFunc) error

	// NewBatch stages writes that become visible together on Commit.
	// Reads through the batch observe its own staged writes.
	NewBatch() Batch

	Close() error
}

// Batch atomic write set spanning any number of collections
type Batch interface {
	Reader
	Set(collection string, key, value []byte) error
	Delete(collection string, key []byte) error
	Commit() error
	// Discard drops staged writes; it is a no-op after Commit
	Discard()
}

// DBType database type
type DBType string

const (
	DBTypePebble DBType = "pebble"
)

// Collection names and their key-value formats
const (
	CollectionApps          = "apps"           // key: be64(id), value: JSON(App)
	CollectionAppsDeveloper = "apps_developer" // key: {developer}\x00be64(id), value: empty
	CollectionAppsCategory  = "apps_category"  // key: {category}\x00be64(id), value: empty
	CollectionAppsChain     = "apps_chain"     // key: be64(chain)be64(id), value: empty
	CollectionPending       = "pending"        // key: be64(pos), value: be64(id)
	CollectionPendingIndex  = "pending_index"  // key: be64(id), value: be64(pos)
	CollectionFeatured      = "featured"       // key: be64(seq), value: be64(id)
	CollectionFeaturedIndex = "featured_index" // key: be64(id), value: be64(seq)
	CollectionAdmins        = "admins"         // key: {account}, value: 0x01
	CollectionPricing       = "pricing"        // key: be64(app_id), value: JSON(Pricing)
	CollectionPurchases     = "purchases"      // key: be64(app_id){buyer}, value: JSON(Purchase)
	CollectionBilling       = "billing"        // key: be64(app_id)be64(period), value: be64(amount)
	CollectionLedgerMeta    = "ledger_meta"    // key: owner, value: {account}
	CollectionCounters      = "counters"       // key: {name}, value: be64(n)
)

// Global database instance
var DB Database

// InitDatabase initialize database with specified type
func InitDatabase(dbType DBType, config interface{}) error {
	var err error

	switch dbType {
	case DBTypePebble:
		DB, err = NewPebbleDatabase(config)
	default:
		return ErrUnsupportedDBType
	}

	return err
}
