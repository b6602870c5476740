package dao

import (
	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
)

// PricingDAO ledger pricing records
type PricingDAO struct {
	db database.Database
}

// NewPricingDAO create Pricing DAO instance
func NewPricingDAO(db database.Database) *PricingDAO {
	return &PricingDAO{db: db}
}

// Get returns database.ErrNotFound for unpriced apps
func (d *PricingDAO) Get(r database.Reader, appID uint64) (*models.Pricing, error) {
	var p models.Pricing
	if err := getJSON(r, database.CollectionPricing, be64(appID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Put upserts the pricing record
func (d *PricingDAO) Put(b database.Batch, p *models.Pricing) error {
	return putJSON(b, database.CollectionPricing, be64(p.AppID), p)
}
