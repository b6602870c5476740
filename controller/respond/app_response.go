package respond

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/varity-labs/varity-app-store/models"
)

// AppResponse app information response structure
type AppResponse struct {
	ID                uint64   `json:"id" example:"1"`
	Name              string   `json:"name" example:"Ledgerly"`
	Description       string   `json:"description" example:"Bookkeeping for DAOs"`
	Category          string   `json:"category" example:"Finance"`
	ChainID           uint64   `json:"chain_id" example:"33529"`
	AppURL            string   `json:"app_url" example:"https://ledgerly.app"`
	LogoURL           string   `json:"logo_url" example:"https://ledgerly.app/logo.png"`
	RepoURL           string   `json:"repo_url" example:"https://github.com/ledgerly/app"`
	Tier              string   `json:"tier,omitempty" example:"growth"`
	Screenshots       []string `json:"screenshots"`
	Developer         string   `json:"developer" example:"0x9F2dC1a1b59E6b1B5E1C4F8a0aAd1E0f3c4B8A11"`
	BuiltWithPlatform bool     `json:"built_with_platform" example:"true"`
	State             string   `json:"state" example:"approved"`
	IsActive          bool     `json:"is_active" example:"true"`
	IsApproved        bool     `json:"is_approved" example:"true"`
	CreatedAt         int64    `json:"created_at" example:"1767225600"`
	UpdatedAt         int64    `json:"updated_at" example:"1767225600"`
}

// AppListResponse app list response structure
type AppListResponse struct {
	Apps  []*AppResponse `json:"apps"`
	Total int            `json:"total" example:"2"`
}

// PricingResponse pricing response structure
type PricingResponse struct {
	AppID          uint64 `json:"app_id" example:"1"`
	Price          uint64 `json:"price" example:"99000000"`
	PriceDisplay   string `json:"price_display" example:"99.000000"`
	Developer      string `json:"developer"`
	IsSubscription bool   `json:"is_subscription" example:"false"`
	IntervalDays   uint64 `json:"interval_days" example:"0"`
	Active         bool   `json:"active" example:"true"`
}

// PurchaseResponse purchase response structure
type PurchaseResponse struct {
	AppID          uint64 `json:"app_id" example:"1"`
	Buyer          string `json:"buyer"`
	Developer      string `json:"developer"`
	Price          uint64 `json:"price" example:"10000000"`
	DeveloperShare uint64 `json:"developer_share" example:"9000000"`
	PlatformFee    uint64 `json:"platform_fee" example:"1000000"`
	PurchasedAt    int64  `json:"purchased_at" example:"1767225600"`
}

// BillingResponse billing period response structure
type BillingResponse struct {
	AppID         uint64 `json:"app_id" example:"1"`
	Period        uint64 `json:"period" example:"12345678901234"`
	Amount        uint64 `json:"amount" example:"49000000"`
	AmountDisplay string `json:"amount_display" example:"49.000000"`
}

// LedgerSummaryResponse ledger summary response structure
type LedgerSummaryResponse struct {
	Owner                   string `json:"owner"`
	Treasury                string `json:"treasury" example:"0xA0b83bBeF45FeE8c8E158b25b736E05eBd51b793"`
	TokenAddress            string `json:"token_address" example:"0xaf88d065e77c8cC2239327C5EDb3A432268e5831"`
	TotalPlatformRevenue    uint64 `json:"total_platform_revenue" example:"1000000"`
	TotalDeveloperPayouts   uint64 `json:"total_developer_payouts" example:"9000000"`
	PlatformRevenueDisplay  string `json:"platform_revenue_display" example:"1.000000"`
	DeveloperPayoutsDisplay string `json:"developer_payouts_display" example:"9.000000"`
}

// FormatAmount renders smallest-unit amounts with the token's decimals
func FormatAmount(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).StringFixed(decimals)
}

// ToAppResponse convert App model to response structure
func ToAppResponse(app *models.App) *AppResponse {
	if app == nil {
		return nil
	}
	screenshots := app.Screenshots
	if screenshots == nil {
		screenshots = []string{}
	}
	return &AppResponse{
		ID:                app.ID,
		Name:              app.Name,
		Description:       app.Description,
		Category:          app.Category,
		ChainID:           app.ChainID,
		AppURL:            app.AppURL,
		LogoURL:           app.LogoURL,
		RepoURL:           app.RepoURL,
		Tier:              app.Tier,
		Screenshots:       screenshots,
		Developer:         app.Developer.String(),
		BuiltWithPlatform: app.BuiltWithPlatform,
		State:             app.State.String(),
		IsActive:          app.IsActive(),
		IsApproved:        app.IsApproved(),
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}
}

// ToAppListResponse convert App list to response structure
func ToAppListResponse(apps []*models.App) *AppListResponse {
	list := make([]*AppResponse, 0, len(apps))
	for _, app := range apps {
		list = append(list, ToAppResponse(app))
	}
	return &AppListResponse{Apps: list, Total: len(list)}
}

// ToPricingResponse convert Pricing model to response structure
func ToPricingResponse(p *models.Pricing, decimals int32) *PricingResponse {
	return &PricingResponse{
		AppID:          p.AppID,
		Price:          p.Price,
		PriceDisplay:   FormatAmount(p.Price, decimals),
		Developer:      p.Developer.String(),
		IsSubscription: p.IsSubscription,
		IntervalDays:   p.IntervalDays,
		Active:         p.Active,
	}
}

// ToPurchaseResponse convert Purchase model to response structure
func ToPurchaseResponse(p *models.Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		AppID:          p.AppID,
		Buyer:          p.Buyer.String(),
		Developer:      p.Developer.String(),
		Price:          p.Price,
		DeveloperShare: p.DeveloperShare,
		PlatformFee:    p.PlatformFee,
		PurchasedAt:    p.PurchasedAt,
	}
}

// ToBillingResponse build billing response
func ToBillingResponse(appID, period, amount uint64, decimals int32) *BillingResponse {
	return &BillingResponse{
		AppID:         appID,
		Period:        period,
		Amount:        amount,
		AmountDisplay: FormatAmount(amount, decimals),
	}
}

// ToLedgerSummaryResponse build ledger summary response
func ToLedgerSummaryResponse(owner, treasury models.Account, token string, totals models.RevenueTotals, decimals int32) *LedgerSummaryResponse {
	return &LedgerSummaryResponse{
		Owner:                   owner.String(),
		Treasury:                treasury.String(),
		TokenAddress:            token,
		TotalPlatformRevenue:    totals.PlatformRevenue,
		TotalDeveloperPayouts:   totals.DeveloperPayouts,
		PlatformRevenueDisplay:  FormatAmount(totals.PlatformRevenue, decimals),
		DeveloperPayoutsDisplay: FormatAmount(totals.DeveloperPayouts, decimals),
	}
}
