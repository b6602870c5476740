package dao

import (
	"fmt"

	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
)

// AppDAO app records and their lookup indexes
type AppDAO struct {
	db database.Database
}

// NewAppDAO create App DAO instance
func NewAppDAO(db database.Database) *AppDAO {
	return &AppDAO{db: db}
}

func developerPrefix(dev models.Account) []byte {
	return append([]byte(dev), 0)
}

func categoryPrefix(category string) []byte {
	return append([]byte(category), 0)
}

// NextID reserves the next sequential id inside the batch
func (d *AppDAO) NextID(b database.Batch) (uint64, error) {
	n, err := GetUint64(b, database.CollectionCounters, []byte(counterAppCount))
	if err != nil {
		return 0, err
	}
	n++
	if err := PutUint64(b, database.CollectionCounters, []byte(counterAppCount), n); err != nil {
		return 0, err
	}
	return n, nil
}

// Count number of apps ever submitted, also the highest assigned id
func (d *AppDAO) Count(r database.Reader) (uint64, error) {
	return GetUint64(r, database.CollectionCounters, []byte(counterAppCount))
}

// Get returns database.ErrNotFound when no app has this id
func (d *AppDAO) Get(r database.Reader, id uint64) (*models.App, error) {
	var app models.App
	if err := getJSON(r, database.CollectionApps, be64(id), &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Put stores the record; immutable fields are the caller's responsibility
func (d *AppDAO) Put(b database.Batch, app *models.App) error {
	return putJSON(b, database.CollectionApps, be64(app.ID), app)
}

// Create stores a new record together with its developer, category and chain indexes
func (d *AppDAO) Create(b database.Batch, app *models.App) error {
	if err := d.Put(b, app); err != nil {
		return err
	}
	id := be64(app.ID)
	if err := b.Set(database.CollectionAppsDeveloper, append(developerPrefix(app.Developer), id...), nil); err != nil {
		return err
	}
	if err := b.Set(database.CollectionAppsCategory, append(categoryPrefix(app.Category), id...), nil); err != nil {
		return err
	}
	return b.Set(database.CollectionAppsChain, append(be64(app.ChainID), id...), nil)
}

// Scan walks all apps in ascending id order
func (d *AppDAO) Scan(fn func(app *models.App) (bool, error)) error {
	return d.db.Scan(database.CollectionApps, nil, func(key, value []byte) (bool, error) {
		var app models.App
		if err := jsonUnmarshal(value, &app); err != nil {
			return false, fmt.Errorf("failed to decode app %x: %w", key, err)
		}
		return fn(&app)
	})
}

// IDsByDeveloper ids of every app submitted by dev, ascending
func (d *AppDAO) IDsByDeveloper(dev models.Account) ([]uint64, error) {
	return scanIDs(d.db, database.CollectionAppsDeveloper, developerPrefix(dev))
}

// IDsByCategory ids of every app in category, ascending
func (d *AppDAO) IDsByCategory(category string) ([]uint64, error) {
	return scanIDs(d.db, database.CollectionAppsCategory, categoryPrefix(category))
}

// IDsByChain ids of every app targeting chainID, ascending
func (d *AppDAO) IDsByChain(chainID uint64) ([]uint64, error) {
	return scanIDs(d.db, database.CollectionAppsChain, be64(chainID))
}
