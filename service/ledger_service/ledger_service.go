package ledger_service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/varity-labs/varity-app-store/common"
	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/models/dao"
	"github.com/varity-labs/varity-app-store/node"
	"github.com/varity-labs/varity-app-store/service/apperrors"
	"github.com/varity-labs/varity-app-store/service/authz"
	"github.com/varity-labs/varity-app-store/service/event_service"
)

var log = common.NewLog("ledger")

// AppVerifier optional existence check against the registry. Without one the ledger prices
// any app id; reconciling the two id spaces is then up to the operator.
type AppVerifier interface {
	AppExists(ctx context.Context, id uint64) (bool, error)
}

// Config ledger settlement parameters
type Config struct {
	Treasury     models.Account
	TokenAddress string
}

// LedgerService payment settlement ledger.
//
// Settling operations stage their effects in a batch, run the token transfers, and only
// commit when every transfer succeeded. A failed transfer discards the batch, so no
// purchase marker or total change is ever observable without the matching payment.
// The mutex is held across the transfer call, which serializes settlement and rules out
// a second purchase of the same pair slipping in while a transfer is in flight.
type LedgerService struct {
	mu sync.Mutex

	db      database.Database
	pricing *dao.PricingDAO
	ledger  *dao.LedgerDAO

	authz    *authz.Context
	token    node.TokenTransferer
	events   *event_service.Emitter
	verifier AppVerifier

	treasury     models.Account
	tokenAddress string

	now func() time.Time
}

// NewLedgerService create ledger service instance
func NewLedgerService(db database.Database, ac *authz.Context, token node.TokenTransferer, events *event_service.Emitter, cfg Config) *LedgerService {
	return &LedgerService{
		db:           db,
		pricing:      dao.NewPricingDAO(db),
		ledger:       dao.NewLedgerDAO(db),
		authz:        ac,
		token:        token,
		events:       events,
		treasury:     cfg.Treasury,
		tokenAddress: cfg.TokenAddress,
		now:          time.Now,
	}
}

// SetVerifier enables app id verification on SetPrice
func (s *LedgerService) SetVerifier(v AppVerifier) {
	s.verifier = v
}

// SetClock replaces the time source, used by tests
func (s *LedgerService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *LedgerService) emit(ctx context.Context, typ models.EventType, appID uint64, actor models.Account, payload map[string]interface{}) {
	s.events.Emit(ctx, models.NewEvent(typ, appID, actor, payload, s.now()))
}

func (s *LedgerService) apply(fn func(b database.Batch) error) error {
	b := s.db.NewBatch()
	defer b.Discard()
	if err := fn(b); err != nil {
		return err
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// activePricing returns ErrNotForSale unless the app has an active pricing record
func (s *LedgerService) activePricing(appID uint64) (*models.Pricing, error) {
	p, err := s.pricing.Get(s.db, appID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("app %d has no pricing: %w", appID, apperrors.ErrNotForSale)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing %d: %w", appID, err)
	}
	if !p.Active {
		return nil, fmt.Errorf("app %d pricing is inactive: %w", appID, apperrors.ErrNotForSale)
	}
	return p, nil
}

// Initialize sets the owner once. Later calls are no-ops.
func (s *LedgerService) Initialize(ctx context.Context, caller models.Account) (err error) {
	defer func() { common.MetricOperation("ledger", "initialize", err) }()
	if caller.IsZero() {
		return fmt.Errorf("deployer account is empty: %w", apperrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.ledger.Owner(s.db)
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		log.Debug("ledger already initialized", "owner", owner)
		return nil
	}
	if err := s.apply(func(b database.Batch) error { return s.ledger.SetOwner(b, caller) }); err != nil {
		return err
	}
	log.Info("ledger initialized", "owner", caller)
	return nil
}

// SetPrice creates or replaces the pricing record; the caller becomes its developer
func (s *LedgerService) SetPrice(ctx context.Context, caller models.Account, appID, price uint64, isSubscription bool, intervalDays uint64) (err error) {
	defer func() { common.MetricOperation("ledger", "set_price", err) }()
	if appID == 0 {
		return apperrors.ErrInvalidAppID
	}
	if price == 0 {
		return fmt.Errorf("price is zero: %w", apperrors.ErrInvalidPrice)
	}
	if isSubscription && intervalDays == 0 {
		return fmt.Errorf("subscription without interval: %w", apperrors.ErrInvalidPrice)
	}
	if caller.IsZero() {
		return fmt.Errorf("developer account is empty: %w", apperrors.ErrUnauthorized)
	}
	if s.verifier != nil {
		ok, err := s.verifier.AppExists(ctx, appID)
		if err != nil {
			return fmt.Errorf("failed to verify app %d: %w", appID, err)
		}
		if !ok {
			return fmt.Errorf("app %d: %w", appID, apperrors.ErrNotFound)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &models.Pricing{
		AppID:          appID,
		Price:          price,
		Developer:      caller,
		IsSubscription: isSubscription,
		IntervalDays:   intervalDays,
		Active:         true,
		UpdatedAt:      s.now().Unix(),
	}
	if err := s.apply(func(b database.Batch) error { return s.pricing.Put(b, p) }); err != nil {
		return err
	}

	log.Info("price set", "appId", appID, "price", price, "developer", caller, "subscription", isSubscription)
	s.emit(ctx, models.EventPriceSet, appID, caller, pricingPayload(p))
	return nil
}

// UpdatePrice overwrites the price of an active pricing record
func (s *LedgerService) UpdatePrice(ctx context.Context, caller models.Account, appID, newPrice uint64) (err error) {
	defer func() { common.MetricOperation("ledger", "update_price", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePricing(appID)
	if err != nil {
		return err
	}
	if err := authz.RequireSelf(caller, p.Developer, fmt.Sprintf("developer of pricing %d", appID)); err != nil {
		return err
	}
	if newPrice == 0 {
		return fmt.Errorf("price is zero: %w", apperrors.ErrInvalidPrice)
	}

	p.Price = newPrice
	p.UpdatedAt = s.now().Unix()
	if err := s.apply(func(b database.Batch) error { return s.pricing.Put(b, p) }); err != nil {
		return err
	}

	log.Info("price updated", "appId", appID, "price", newPrice)
	s.emit(ctx, models.EventPriceSet, appID, caller, pricingPayload(p))
	return nil
}

// DeactivatePricing stops sales. Recorded purchases stay.
func (s *LedgerService) DeactivatePricing(ctx context.Context, caller models.Account, appID uint64) (err error) {
	defer func() { common.MetricOperation("ledger", "deactivate_pricing", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePricing(appID)
	if err != nil {
		return err
	}
	if err := authz.RequireSelf(caller, p.Developer, fmt.Sprintf("developer of pricing %d", appID)); err != nil {
		return err
	}

	p.Active = false
	p.UpdatedAt = s.now().Unix()
	if err := s.apply(func(b database.Batch) error { return s.pricing.Put(b, p) }); err != nil {
		return err
	}

	log.Info("pricing deactivated", "appId", appID)
	s.emit(ctx, models.EventPricingDeactivated, appID, caller, nil)
	return nil
}

// Purchase settles a one-off purchase: 90% to the developer, 10% to the treasury
func (s *LedgerService) Purchase(ctx context.Context, buyer models.Account, appID uint64) (purchase *models.Purchase, err error) {
	defer func() { common.MetricOperation("ledger", "purchase", err) }()
	if buyer.IsZero() {
		return nil, fmt.Errorf("buyer account is empty: %w", apperrors.ErrUnauthorized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePricing(appID)
	if err != nil {
		return nil, err
	}
	if !p.ForSale() {
		return nil, fmt.Errorf("app %d has zero price: %w", appID, apperrors.ErrNotForSale)
	}
	bought, err := s.ledger.HasPurchased(s.db, appID, buyer)
	if err != nil {
		return nil, err
	}
	if bought {
		return nil, fmt.Errorf("app %d by %s: %w", appID, buyer, apperrors.ErrAlreadyPurchased)
	}

	fee, share := SplitPayment(p.Price)
	totals, err := s.ledger.Totals(s.db)
	if err != nil {
		return nil, err
	}
	if totals.PlatformRevenue, err = checkedAdd(totals.PlatformRevenue, fee); err != nil {
		return nil, fmt.Errorf("platform revenue: %w", err)
	}
	if totals.DeveloperPayouts, err = checkedAdd(totals.DeveloperPayouts, share); err != nil {
		return nil, fmt.Errorf("developer payouts: %w", err)
	}

	purchase = &models.Purchase{
		AppID:          appID,
		Buyer:          buyer,
		Developer:      p.Developer,
		Price:          p.Price,
		DeveloperShare: share,
		PlatformFee:    fee,
		PurchasedAt:    s.now().Unix(),
	}

	// effects
	b := s.db.NewBatch()
	defer b.Discard()
	if err := s.ledger.PutPurchase(b, purchase); err != nil {
		return nil, err
	}
	if err := s.ledger.PutTotals(b, totals); err != nil {
		return nil, err
	}

	// interactions. Once the first leg is sent the settlement runs to completion regardless
	// of the caller going away.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	settle := context.WithoutCancel(ctx)
	if err := s.transfer(settle, buyer, p.Developer, share); err != nil {
		return nil, err
	}
	if err := s.transfer(settle, buyer, s.treasury, fee); err != nil {
		log.Crit("partial settlement, developer leg already paid",
			"appId", appID, "buyer", buyer, "developer", p.Developer, "share", share, "fee", fee)
		return nil, err
	}

	if err := b.Commit(); err != nil {
		log.Crit("purchase paid but not recorded", "appId", appID, "buyer", buyer, "price", p.Price, "err", err)
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	common.MetricSettled("developer_share", share)
	common.MetricSettled("platform_fee", fee)
	log.Info("app purchased", "appId", appID, "buyer", buyer, "price", p.Price, "share", share, "fee", fee)
	s.emit(ctx, models.EventAppPurchased, appID, buyer, map[string]interface{}{
		"developer":       p.Developer,
		"total_amount":    p.Price,
		"developer_share": share,
		"platform_fee":    fee,
		"timestamp":       purchase.PurchasedAt,
	})
	return purchase, nil
}

// PayBill accumulates a billing payment for (appID, period); all of it goes to the treasury.
// Anyone may pay for any app with their own funds.
func (s *LedgerService) PayBill(ctx context.Context, payer models.Account, appID, period, amount uint64) (total uint64, err error) {
	defer func() { common.MetricOperation("ledger", "pay_bill", err) }()
	if appID == 0 {
		return 0, apperrors.ErrInvalidAppID
	}
	if period == 0 {
		return 0, apperrors.ErrInvalidPeriod
	}
	if amount == 0 {
		return 0, apperrors.ErrInsufficientPayment
	}
	if payer.IsZero() {
		return 0, fmt.Errorf("payer account is empty: %w", apperrors.ErrUnauthorized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	paid, err := s.ledger.GetBilling(s.db, appID, period)
	if err != nil {
		return 0, err
	}
	if total, err = checkedAdd(paid, amount); err != nil {
		return 0, fmt.Errorf("billing payment: %w", err)
	}
	totals, err := s.ledger.Totals(s.db)
	if err != nil {
		return 0, err
	}
	if totals.PlatformRevenue, err = checkedAdd(totals.PlatformRevenue, amount); err != nil {
		return 0, fmt.Errorf("platform revenue: %w", err)
	}

	b := s.db.NewBatch()
	defer b.Discard()
	if err := s.ledger.PutBilling(b, appID, period, total); err != nil {
		return 0, err
	}
	if err := s.ledger.PutTotals(b, totals); err != nil {
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.transfer(context.WithoutCancel(ctx), payer, s.treasury, amount); err != nil {
		return 0, err
	}

	if err := b.Commit(); err != nil {
		log.Crit("bill paid but not recorded", "appId", appID, "period", period, "payer", payer, "amount", amount, "err", err)
		return 0, fmt.Errorf("failed to commit billing payment: %w", err)
	}

	common.MetricSettled("billing", amount)
	log.Info("bill paid", "appId", appID, "period", period, "payer", payer, "amount", amount, "total", total)
	s.emit(ctx, models.EventBillingPayment, appID, payer, map[string]interface{}{
		"amount":    amount,
		"period":    period,
		"total":     total,
		"timestamp": s.now().Unix(),
	})
	return total, nil
}

// TransferOwnership owner-only; an empty new owner is refused
func (s *LedgerService) TransferOwnership(ctx context.Context, caller, newOwner models.Account) (err error) {
	defer func() { common.MetricOperation("ledger", "transfer_ownership", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authz.RequireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return fmt.Errorf("new owner is empty: %w", apperrors.ErrUnauthorized)
	}
	if err := s.apply(func(b database.Batch) error { return s.ledger.SetOwner(b, newOwner) }); err != nil {
		return err
	}

	log.Info("ownership transferred", "from", caller, "to", newOwner)
	s.emit(ctx, models.EventOwnershipTransfer, 0, caller, map[string]interface{}{"new_owner": newOwner})
	return nil
}

// transfer one settlement leg. Zero amounts are still sent, the gateway treats them as no-ops.
func (s *LedgerService) transfer(ctx context.Context, from, to models.Account, amount uint64) error {
	if err := s.token.Transfer(ctx, from, to, amount); err != nil {
		common.MetricTransferFailure()
		log.Error("token transfer failed", "from", from, "to", to, "amount", amount, "err", err)
		return fmt.Errorf("%s -> %s: %v: %w", from, to, err, apperrors.ErrTransferFailed)
	}
	return nil
}

func pricingPayload(p *models.Pricing) map[string]interface{} {
	return map[string]interface{}{
		"developer":       p.Developer,
		"price":           p.Price,
		"is_subscription": p.IsSubscription,
		"interval_days":   p.IntervalDays,
	}
}
