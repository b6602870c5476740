package models

// Pricing ledger pricing record of an app
type Pricing struct {
	AppID          uint64  `json:"app_id"`
	Price          uint64  `json:"price"` // smallest token unit
	Developer      Account `json:"developer"`
	IsSubscription bool    `json:"is_subscription"`
	IntervalDays   uint64  `json:"interval_days"` // meaningful only for subscriptions
	Active         bool    `json:"active"`
	UpdatedAt      int64   `json:"updated_at"`
}

// ForSale only an active, non-zero price can be purchased
func (p *Pricing) ForSale() bool {
	return p != nil && p.Active && p.Price > 0
}

// Purchase one settled purchase of an app by a buyer
type Purchase struct {
	AppID          uint64  `json:"app_id"`
	Buyer          Account `json:"buyer"`
	Developer      Account `json:"developer"`
	Price          uint64  `json:"price"`
	DeveloperShare uint64  `json:"developer_share"`
	PlatformFee    uint64  `json:"platform_fee"`
	PurchasedAt    int64   `json:"purchased_at"`
}

// BillingPayment accumulated payment for one billing period
type BillingPayment struct {
	AppID  uint64 `json:"app_id"`
	Period uint64 `json:"period"`
	Amount uint64 `json:"amount"`
}

// RevenueTotals running ledger totals
type RevenueTotals struct {
	PlatformRevenue  uint64 `json:"platform_revenue"`
	DeveloperPayouts uint64 `json:"developer_payouts"`
}
