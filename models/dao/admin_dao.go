package dao

import (
	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
)

// AdminDAO registry admin set
type AdminDAO struct {
	db database.Database
}

// NewAdminDAO create Admin DAO instance
func NewAdminDAO(db database.Database) *AdminDAO {
	return &AdminDAO{db: db}
}

// IsAdmin membership check
func (d *AdminDAO) IsAdmin(r database.Reader, account models.Account) (bool, error) {
	if account.IsZero() {
		return false, nil
	}
	return r.Has(database.CollectionAdmins, []byte(account))
}

// Add grants admin, adding an existing member is harmless
func (d *AdminDAO) Add(b database.Batch, account models.Account) error {
	return b.Set(database.CollectionAdmins, []byte(account), []byte{1})
}

// Remove revokes admin
func (d *AdminDAO) Remove(b database.Batch, account models.Account) error {
	return b.Delete(database.CollectionAdmins, []byte(account))
}

// List every admin in key order
func (d *AdminDAO) List() ([]models.Account, error) {
	var admins []models.Account
	err := d.db.Scan(database.CollectionAdmins, nil, func(key, _ []byte) (bool, error) {
		admins = append(admins, models.Account(key))
		return true, nil
	})
	return admins, err
}

// IsInitialized reports whether the admin set was bootstrapped
func (d *AdminDAO) IsInitialized(r database.Reader) (bool, error) {
	return r.Has(database.CollectionCounters, []byte(counterInitialized))
}

// MarkInitialized stages the bootstrap marker
func (d *AdminDAO) MarkInitialized(b database.Batch) error {
	return PutUint64(b, database.CollectionCounters, []byte(counterInitialized), 1)
}
