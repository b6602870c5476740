package dao

import (
	"errors"
	"fmt"

	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
)

const keyOwner = "owner"

// LedgerDAO purchases, billing payments, revenue totals and ownership
type LedgerDAO struct {
	db database.Database
}

// NewLedgerDAO create Ledger DAO instance
func NewLedgerDAO(db database.Database) *LedgerDAO {
	return &LedgerDAO{db: db}
}

func purchaseKey(appID uint64, buyer models.Account) []byte {
	return append(be64(appID), buyer...)
}

func billingKey(appID, period uint64) []byte {
	return append(be64(appID), be64(period)...)
}

// HasPurchased reports whether buyer already bought appID
func (d *LedgerDAO) HasPurchased(r database.Reader, appID uint64, buyer models.Account) (bool, error) {
	return r.Has(database.CollectionPurchases, purchaseKey(appID, buyer))
}

// GetPurchase returns database.ErrNotFound when buyer never bought appID
func (d *LedgerDAO) GetPurchase(r database.Reader, appID uint64, buyer models.Account) (*models.Purchase, error) {
	var p models.Purchase
	if err := getJSON(r, database.CollectionPurchases, purchaseKey(appID, buyer), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutPurchase stages the purchase marker
func (d *LedgerDAO) PutPurchase(b database.Batch, p *models.Purchase) error {
	return putJSON(b, database.CollectionPurchases, purchaseKey(p.AppID, p.Buyer), p)
}

// ScanPurchases walks every recorded purchase
func (d *LedgerDAO) ScanPurchases(fn func(p *models.Purchase) (bool, error)) error {
	return d.db.Scan(database.CollectionPurchases, nil, func(key, value []byte) (bool, error) {
		var p models.Purchase
		if err := jsonUnmarshal(value, &p); err != nil {
			return false, fmt.Errorf("failed to decode purchase %x: %w", key, err)
		}
		return fn(&p)
	})
}

// GetBilling accumulated payment for the period, 0 when nothing was paid
func (d *LedgerDAO) GetBilling(r database.Reader, appID, period uint64) (uint64, error) {
	return GetUint64(r, database.CollectionBilling, billingKey(appID, period))
}

// PutBilling stages the accumulated payment
func (d *LedgerDAO) PutBilling(b database.Batch, appID, period, amount uint64) error {
	return PutUint64(b, database.CollectionBilling, billingKey(appID, period), amount)
}

// ScanBilling walks every billing entry
func (d *LedgerDAO) ScanBilling(fn func(bp *models.BillingPayment) (bool, error)) error {
	return d.db.Scan(database.CollectionBilling, nil, func(key, value []byte) (bool, error) {
		if len(key) != 16 {
			return false, fmt.Errorf("malformed billing key %x", key)
		}
		amount, err := decodeBE64(value)
		if err != nil {
			return false, err
		}
		appID, _ := decodeBE64(key[:8])
		period, _ := decodeBE64(key[8:])
		return fn(&models.BillingPayment{AppID: appID, Period: period, Amount: amount})
	})
}

// Totals running revenue totals
func (d *LedgerDAO) Totals(r database.Reader) (models.RevenueTotals, error) {
	var t models.RevenueTotals
	var err error
	if t.PlatformRevenue, err = GetUint64(r, database.CollectionCounters, []byte(counterPlatformRevenue)); err != nil {
		return t, err
	}
	if t.DeveloperPayouts, err = GetUint64(r, database.CollectionCounters, []byte(counterDeveloperPayout)); err != nil {
		return t, err
	}
	return t, nil
}

// PutTotals stages both running totals
func (d *LedgerDAO) PutTotals(b database.Batch, t models.RevenueTotals) error {
	if err := PutUint64(b, database.CollectionCounters, []byte(counterPlatformRevenue), t.PlatformRevenue); err != nil {
		return err
	}
	return PutUint64(b, database.CollectionCounters, []byte(counterDeveloperPayout), t.DeveloperPayouts)
}

// Owner ledger owner, ZeroAccount before initialization
func (d *LedgerDAO) Owner(r database.Reader) (models.Account, error) {
	val, err := r.Get(database.CollectionLedgerMeta, []byte(keyOwner))
	if errors.Is(err, database.ErrNotFound) {
		return models.ZeroAccount, nil
	}
	if err != nil {
		return models.ZeroAccount, err
	}
	return models.Account(val), nil
}

// SetOwner stages the owner
func (d *LedgerDAO) SetOwner(b database.Batch, owner models.Account) error {
	return b.Set(database.CollectionLedgerMeta, []byte(keyOwner), []byte(owner))
}
