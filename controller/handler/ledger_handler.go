package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/varity-labs/varity-app-store/controller/respond"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/service/audit_service"
	"github.com/varity-labs/varity-app-store/service/authz"
	"github.com/varity-labs/varity-app-store/service/ledger_service"
)

// LedgerHandler pricing, purchase and billing handler
type LedgerHandler struct {
	ledger   *ledger_service.LedgerService
	audit    *audit_service.AuditService
	decimals int32
}

// NewLedgerHandler audit may be nil when audits are disabled
func NewLedgerHandler(ledger *ledger_service.LedgerService, audit *audit_service.AuditService, decimals int32) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, audit: audit, decimals: decimals}
}

// SetPriceRequest pricing configuration
type SetPriceRequest struct {
	Price          uint64 `json:"price" example:"99000000"`
	IsSubscription bool   `json:"is_subscription" example:"false"`
	IntervalDays   uint64 `json:"interval_days" example:"30"`
}

// UpdatePriceRequest new price for an already priced app
type UpdatePriceRequest struct {
	Price uint64 `json:"price" example:"49000000"`
}

// PayBillRequest billing payment. period_label is hashed into a period token when period is zero.
type PayBillRequest struct {
	Period      uint64 `json:"period" example:"0"`
	PeriodLabel string `json:"period_label" example:"2026-10"`
	Amount      uint64 `json:"amount" example:"20000000"`
}

// TransferOwnershipRequest new ledger owner
type TransferOwnershipRequest struct {
	Owner string `json:"owner" binding:"required"`
}

// GetPricing get pricing of an app
// @Summary Get pricing
// @Description Unpriced apps return an inactive zero record
// @Tags Ledger
// @Produce json
// @Param appId path int true "App ID"
// @Success 200 {object} respond.Response{data=respond.PricingResponse}
// @Router /api/v1/pricing/{appId} [get]
func (h *LedgerHandler) GetPricing(c *gin.Context) {
	appID, ok := parseUintParam(c, "appId")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	h.respondPricing(c, appID)
}

func (h *LedgerHandler) respondPricing(c *gin.Context, appID uint64) {
	p, err := h.ledger.GetPricing(c.Request.Context(), appID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToPricingResponse(p, h.decimals))
}

// SetPrice configure pricing
// @Summary Set price
// @Description The caller becomes the pricing developer and receives every developer share.
// @Tags Ledger
// @Accept json
// @Produce json
// @Param X-Account header string true "Developer account"
// @Param appId path int true "App ID"
// @Param request body SetPriceRequest true "Pricing"
// @Success 200 {object} respond.Response{data=respond.PricingResponse}
// @Router /api/v1/pricing/{appId} [put]
func (h *LedgerHandler) SetPrice(c *gin.Context) {
	appID, ok := parseUintParam(c, "appId")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	var req SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}
	if err := h.ledger.SetPrice(c.Request.Context(), CallerFrom(c), appID, req.Price, req.IsSubscription, req.IntervalDays); err != nil {
		respond.FromError(c, err)
		return
	}
	h.respondPricing(c, appID)
}

// UpdatePrice change the price of active pricing
// @Summary Update price
// @Tags Ledger
// @Accept json
// @Produce json
// @Param X-Account header string true "Developer account"
// @Param appId path int true "App ID"
// @Param request body UpdatePriceRequest true "New price"
// @Success 200 {object} respond.Response{data=respond.PricingResponse}
// @Router /api/v1/pricing/{appId} [patch]
func (h *LedgerHandler) UpdatePrice(c *gin.Context) {
	appID, ok := parseUintParam(c, "appId")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}
	if err := h.ledger.UpdatePrice(c.Request.Context(), CallerFrom(c), appID, req.Price); err != nil {
		respond.FromError(c, err)
		return
	}
	h.respondPricing(c, appID)
}

// DeactivatePricing stop selling an app
// @Summary Deactivate pricing
// @Tags Ledger
// @Produce json
// @Param X-Account header string true "Developer account"
// @Param appId path int true "App ID"
// @Success 200 {object} respond.Response{data=respond.PricingResponse}
// @Router /api/v1/pricing/{appId}/deactivate [post]
func (h *LedgerHandler) DeactivatePricing(c *gin.Context) {
	appID, ok := parseUintParam(c, "appId")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	if err := h.ledger.DeactivatePricing(c.Request.Context(), CallerFrom(c), appID); err != nil {
		respond.FromError(c, err)
		return
	}
	h.respondPricing(c, appID)
}

// Purchase buy an app
// @Summary Purchase app
// @Description Pays the developer share and the platform fee from the caller's balance.
// @Tags Ledger
// @Produce json
// @Param X-Account header string true "Buyer account"
// @Param appId path int true "App ID"
// @Success 200 {object} respond.Response{data=respond.PurchaseResponse}
// @Router /api/v1/purchases/{appId} [post]
func (h *LedgerHandler) Purchase(c *gin.Context) {
	appID, ok := parseUintParam(c, "appId")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	p, err := h.ledger.Purchase(c.Request.Context(), CallerFrom(c), appID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToPurchaseResponse(p))
}

// GetPurchase get the purchase record of a buyer
// @Summary Get purchase
// @Tags Ledger
// @Produce json
// @Param appId path int true "App ID"
// @Param buyer path string true "Buyer account"
// @Success 200 {object} respond.Response{data=respond.PurchaseResponse}
// @Router /api/v1/purchases/{appId}/{buyer} [get]
func (h *LedgerHandler) GetPurchase(c *gin.Context) {
	appID, ok := parseUintParam(c, "appId")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	p, err := h.ledger.GetPurchase(c.Request.Context(), appID, models.ParseAccount(c.Param("buyer")))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToPurchaseResponse(p))
}

// PayBill pay for an infrastructure billing period
// @Summary Pay bill
// @Description Payments for the same period accumulate. The whole amount goes to the treasury.
// @Tags Ledger
// @Accept json
// @Produce json
// @Param X-Account header string true "Payer account"
// @Param appId path int true "App ID"
// @Param request body PayBillRequest true "Payment"
// @Success 200 {object} respond.Response{data=respond.BillingResponse}
// @Router /api/v1/billing/{appId} [post]
func (h *LedgerHandler) PayBill(c *gin.Context) {
	appID, ok := parseUintParam(c, "appId")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	var req PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}
	period := req.Period
	if period == 0 && req.PeriodLabel != "" {
		period = ledger_service.PeriodToken(req.PeriodLabel)
	}
	total, err := h.ledger.PayBill(c.Request.Context(), CallerFrom(c), appID, period, req.Amount)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToBillingResponse(appID, period, total, h.decimals))
}

// GetBilling get the accumulated payment of a period
// @Summary Get billing payment
// @Tags Ledger
// @Produce json
// @Param appId path int true "App ID"
// @Param period path int true "Period token"
// @Success 200 {object} respond.Response{data=respond.BillingResponse}
// @Router /api/v1/billing/{appId}/{period} [get]
func (h *LedgerHandler) GetBilling(c *gin.Context) {
	appID, ok := parseUintParam(c, "appId")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	period, ok := parseUintParam(c, "period")
	if !ok {
		respond.InvalidParam(c, "invalid period")
		return
	}
	amount, err := h.ledger.GetBillingPayment(c.Request.Context(), appID, period)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToBillingResponse(appID, period, amount, h.decimals))
}

// Summary ledger owner, treasury and revenue totals
// @Summary Ledger summary
// @Tags Ledger
// @Produce json
// @Success 200 {object} respond.Response{data=respond.LedgerSummaryResponse}
// @Router /api/v1/ledger/summary [get]
func (h *LedgerHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	totals, err := h.ledger.Totals(ctx)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	owner, err := h.ledger.Owner(ctx)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToLedgerSummaryResponse(owner, h.ledger.Treasury(), h.ledger.TokenAddress(), totals, h.decimals))
}

// TransferOwnership hand the ledger to a new owner
// @Summary Transfer ownership
// @Tags Ledger
// @Accept json
// @Produce json
// @Param X-Account header string true "Current owner"
// @Param request body TransferOwnershipRequest true "New owner"
// @Success 200 {object} respond.Response
// @Router /api/v1/ledger/owner [post]
func (h *LedgerHandler) TransferOwnership(c *gin.Context) {
	var req TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}
	if err := h.ledger.TransferOwnership(c.Request.Context(), CallerFrom(c), models.ParseAccount(req.Owner)); err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, nil)
}

// LastAudit result of the most recent revenue audit
// @Summary Last audit
// @Tags Ledger
// @Produce json
// @Success 200 {object} respond.Response{data=audit_service.Report}
// @Router /api/v1/ledger/audit [get]
func (h *LedgerHandler) LastAudit(c *gin.Context) {
	if h.audit == nil {
		respond.NotFound(c, "audit disabled")
		return
	}
	report := h.audit.Last()
	if report == nil {
		respond.NotFound(c, "no audit has run yet")
		return
	}
	respond.Success(c, report)
}

// RunAudit run a revenue audit now, owner only
// @Summary Run audit
// @Tags Ledger
// @Produce json
// @Param X-Account header string true "Ledger owner"
// @Success 200 {object} respond.Response{data=audit_service.Report}
// @Router /api/v1/ledger/audit [post]
func (h *LedgerHandler) RunAudit(c *gin.Context) {
	if h.audit == nil {
		respond.NotFound(c, "audit disabled")
		return
	}
	ctx := c.Request.Context()
	owner, err := h.ledger.Owner(ctx)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	if err := authz.RequireSelf(CallerFrom(c), owner, "ledger owner"); err != nil {
		respond.FromError(c, err)
		return
	}
	report, err := h.audit.Run(ctx, nil)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, report)
}
