package ledger_service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/service/apperrors"
)

// GetPricing pricing record; an unpriced app reads as an inactive zero record
func (s *LedgerService) GetPricing(ctx context.Context, appID uint64) (*models.Pricing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.pricing.Get(s.db, appID)
	if errors.Is(err, database.ErrNotFound) {
		return &models.Pricing{AppID: appID}, nil
	}
	return p, err
}

// HasPurchased purchase marker of (appID, buyer)
func (s *LedgerService) HasPurchased(ctx context.Context, appID uint64, buyer models.Account) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.ledger.HasPurchased(s.db, appID, buyer)
}

// GetPurchase settled purchase details
func (s *LedgerService) GetPurchase(ctx context.Context, appID uint64, buyer models.Account) (*models.Purchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.ledger.GetPurchase(s.db, appID, buyer)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("purchase of app %d by %s: %w", appID, buyer, apperrors.ErrNotFound)
	}
	return p, err
}

// GetBillingPayment accumulated payment for the period
func (s *LedgerService) GetBillingPayment(ctx context.Context, appID, period uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.ledger.GetBilling(s.db, appID, period)
}

// Totals both running revenue totals
func (s *LedgerService) Totals(ctx context.Context) (models.RevenueTotals, error) {
	if err := ctx.Err(); err != nil {
		return models.RevenueTotals{}, err
	}
	return s.ledger.Totals(s.db)
}

// TotalPlatformRevenue sum of every settled platform fee and billing payment
func (s *LedgerService) TotalPlatformRevenue(ctx context.Context) (uint64, error) {
	t, err := s.Totals(ctx)
	return t.PlatformRevenue, err
}

// TotalDeveloperPayouts sum of every settled developer share
func (s *LedgerService) TotalDeveloperPayouts(ctx context.Context) (uint64, error) {
	t, err := s.Totals(ctx)
	return t.DeveloperPayouts, err
}

// Treasury receives platform fees and billing payments
func (s *LedgerService) Treasury() models.Account {
	return s.treasury
}

// TokenAddress settlement token
func (s *LedgerService) TokenAddress() string {
	return s.tokenAddress
}

// Owner ledger owner, empty before initialization
func (s *LedgerService) Owner(ctx context.Context) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.ZeroAccount, err
	}
	return s.ledger.Owner(s.db)
}

// Locker serializes readers that need a view consistent with settlement, such as the revenue audit
func (s *LedgerService) Locker() sync.Locker {
	return &s.mu
}
