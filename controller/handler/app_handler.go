package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/varity-labs/varity-app-store/controller/respond"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/service/registry_service"
	"github.com/varity-labs/varity-app-store/service/validation"
)

// AppHandler app registry handler
type AppHandler struct {
	registry *registry_service.RegistryService
}

// NewAppHandler create app registry handler
func NewAppHandler(registry *registry_service.RegistryService) *AppHandler {
	return &AppHandler{registry: registry}
}

// SubmitAppRequest app registration request
type SubmitAppRequest struct {
	Name              string   `json:"name" binding:"required" example:"Ledgerly"`
	Description       string   `json:"description" binding:"required" example:"Bookkeeping for DAOs"`
	AppURL            string   `json:"app_url" binding:"required" example:"https://ledgerly.app"`
	LogoURL           string   `json:"logo_url" binding:"required" example:"https://ledgerly.app/logo.png"`
	RepoURL           string   `json:"repo_url" example:"https://github.com/ledgerly/app"`
	Category          string   `json:"category" binding:"required" example:"Finance"`
	ChainID           uint64   `json:"chain_id" binding:"required" example:"33529"`
	Tier              string   `json:"tier" example:"growth"`
	Screenshots       []string `json:"screenshots"`
	BuiltWithPlatform bool     `json:"built_with_platform" example:"true"`
}

// UpdateAppRequest mutable app fields
type UpdateAppRequest struct {
	Description string   `json:"description" binding:"required"`
	AppURL      string   `json:"app_url" binding:"required"`
	Screenshots []string `json:"screenshots"`
}

// RejectAppRequest rejection reason, emitted with the fact only
type RejectAppRequest struct {
	Reason string `json:"reason" example:"broken app url"`
}

// AdminRequest account to grant the admin role to
type AdminRequest struct {
	Account string `json:"account" binding:"required"`
}

// SubmitApp register a new app
// @Summary Register app
// @Description Submit a new app for review. The caller becomes its developer.
// @Tags App
// @Accept json
// @Produce json
// @Param X-Account header string true "Caller account"
// @Param request body SubmitAppRequest true "App details"
// @Success 200 {object} respond.Response{data=respond.AppResponse}
// @Router /api/v1/apps [post]
func (h *AppHandler) SubmitApp(c *gin.Context) {
	var req SubmitAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}

	id, err := h.registry.Submit(c.Request.Context(), CallerFrom(c), &validation.Submission{
		Name:              req.Name,
		Description:       req.Description,
		AppURL:            req.AppURL,
		LogoURL:           req.LogoURL,
		RepoURL:           req.RepoURL,
		Category:          req.Category,
		ChainID:           req.ChainID,
		Tier:              req.Tier,
		Screenshots:       req.Screenshots,
		BuiltWithPlatform: req.BuiltWithPlatform,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	h.respondApp(c, id)
}

// GetApp get app by id
// @Summary Get app
// @Tags App
// @Produce json
// @Param id path int true "App ID"
// @Success 200 {object} respond.Response{data=respond.AppResponse}
// @Router /api/v1/apps/{id} [get]
func (h *AppHandler) GetApp(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	h.respondApp(c, id)
}

func (h *AppHandler) respondApp(c *gin.Context, id uint64) {
	app, err := h.registry.GetApp(c.Request.Context(), id)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToAppResponse(app))
}

// UpdateApp update description, app url and screenshots
// @Summary Update app
// @Description Only the developer can update. Does not change review state.
// @Tags App
// @Accept json
// @Produce json
// @Param X-Account header string true "Caller account"
// @Param id path int true "App ID"
// @Param request body UpdateAppRequest true "New values"
// @Success 200 {object} respond.Response{data=respond.AppResponse}
// @Router /api/v1/apps/{id} [put]
func (h *AppHandler) UpdateApp(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	var req UpdateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}
	if err := h.registry.Update(c.Request.Context(), CallerFrom(c), id, req.Description, req.AppURL, req.Screenshots); err != nil {
		respond.FromError(c, err)
		return
	}
	h.respondApp(c, id)
}

// ApproveApp approve app
// @Summary Approve app
// @Tags Review
// @Produce json
// @Param X-Account header string true "Admin account"
// @Param id path int true "App ID"
// @Success 200 {object} respond.Response{data=respond.AppResponse}
// @Router /api/v1/apps/{id}/approve [post]
func (h *AppHandler) ApproveApp(c *gin.Context) {
	h.adminAction(c, h.registry.Approve)
}

// RejectApp reject app
// @Summary Reject app
// @Tags Review
// @Accept json
// @Produce json
// @Param X-Account header string true "Admin account"
// @Param id path int true "App ID"
// @Param request body RejectAppRequest false "Reason"
// @Success 200 {object} respond.Response{data=respond.AppResponse}
// @Router /api/v1/apps/{id}/reject [post]
func (h *AppHandler) RejectApp(c *gin.Context) {
	var req RejectAppRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.InvalidParam(c, err.Error())
			return
		}
	}
	h.adminAction(c, func(ctx context.Context, caller models.Account, id uint64) error {
		return h.registry.Reject(ctx, caller, id, req.Reason)
	})
}

// DeactivateApp withdraw or delist app
// @Summary Deactivate app
// @Description Developer only. Pending apps become withdrawn, approved apps become delisted.
// @Tags App
// @Produce json
// @Param X-Account header string true "Caller account"
// @Param id path int true "App ID"
// @Success 200 {object} respond.Response{data=respond.AppResponse}
// @Router /api/v1/apps/{id}/deactivate [post]
func (h *AppHandler) DeactivateApp(c *gin.Context) {
	h.adminAction(c, h.registry.Deactivate)
}

// FeatureApp add app to featured list
// @Summary Feature app
// @Tags Review
// @Produce json
// @Param X-Account header string true "Admin account"
// @Param id path int true "App ID"
// @Success 200 {object} respond.Response{data=respond.AppResponse}
// @Router /api/v1/apps/{id}/feature [post]
func (h *AppHandler) FeatureApp(c *gin.Context) {
	h.adminAction(c, h.registry.Feature)
}

// UnfeatureApp remove app from featured list
// @Summary Unfeature app
// @Tags Review
// @Produce json
// @Param X-Account header string true "Admin account"
// @Param id path int true "App ID"
// @Success 200 {object} respond.Response{data=respond.AppResponse}
// @Router /api/v1/apps/{id}/feature [delete]
func (h *AppHandler) UnfeatureApp(c *gin.Context) {
	h.adminAction(c, h.registry.Unfeature)
}

func (h *AppHandler) adminAction(c *gin.Context, action func(ctx context.Context, caller models.Account, id uint64) error) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	if err := action(c.Request.Context(), CallerFrom(c), id); err != nil {
		respond.FromError(c, err)
		return
	}
	h.respondApp(c, id)
}

// ListApps list active apps, optionally filtered by category or chain
// @Summary List apps
// @Description Apps in registration order. Filters are exclusive, category wins over chain_id.
// @Tags App
// @Produce json
// @Param category query string false "Category"
// @Param chain_id query int false "Chain ID"
// @Param limit query int false "Max results" default(100)
// @Success 200 {object} respond.Response{data=respond.AppListResponse}
// @Router /api/v1/apps [get]
func (h *AppHandler) ListApps(c *gin.Context) {
	ctx := c.Request.Context()
	limit := parseLimit(c)

	var (
		apps []*models.App
		err  error
	)
	switch {
	case c.Query("category") != "":
		apps, err = h.registry.ListByCategory(ctx, c.Query("category"), limit)
	case c.Query("chain_id") != "":
		chainID, perr := strconv.ParseUint(c.Query("chain_id"), 10, 64)
		if perr != nil {
			respond.InvalidParam(c, "invalid chain_id")
			return
		}
		apps, err = h.registry.ListByChain(ctx, chainID, limit)
	default:
		apps, err = h.registry.ListAll(ctx, limit)
	}
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToAppListResponse(apps))
}

// ListByDeveloper list every app of a developer, including inactive ones
// @Summary List developer apps
// @Tags App
// @Produce json
// @Param account path string true "Developer account"
// @Param limit query int false "Max results" default(100)
// @Success 200 {object} respond.Response{data=respond.AppListResponse}
// @Router /api/v1/apps/developer/{account} [get]
func (h *AppHandler) ListByDeveloper(c *gin.Context) {
	apps, err := h.registry.ListByDeveloper(c.Request.Context(), models.ParseAccount(c.Param("account")), parseLimit(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToAppListResponse(apps))
}

// ListPending list apps awaiting review
// @Summary List pending apps
// @Tags Review
// @Produce json
// @Param limit query int false "Max results" default(100)
// @Success 200 {object} respond.Response{data=respond.AppListResponse}
// @Router /api/v1/apps/pending [get]
func (h *AppHandler) ListPending(c *gin.Context) {
	apps, err := h.registry.ListPending(c.Request.Context(), parseLimit(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToAppListResponse(apps))
}

// PendingQueue raw review queue ids
// @Summary Pending queue
// @Tags Review
// @Produce json
// @Success 200 {object} respond.Response{data=[]uint64}
// @Router /api/v1/apps/pending/queue [get]
func (h *AppHandler) PendingQueue(c *gin.Context) {
	ids, err := h.registry.PendingQueue(c.Request.Context())
	if err != nil {
		respond.FromError(c, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	respond.Success(c, ids)
}

// ListFeatured list featured apps that are still approved and active
// @Summary List featured apps
// @Tags App
// @Produce json
// @Param limit query int false "Max results" default(100)
// @Success 200 {object} respond.Response{data=respond.AppListResponse}
// @Router /api/v1/apps/featured [get]
func (h *AppHandler) ListFeatured(c *gin.Context) {
	apps, err := h.registry.ListFeatured(c.Request.Context(), parseLimit(c))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, respond.ToAppListResponse(apps))
}

// GetScreenshot get one screenshot url
// @Summary Get screenshot
// @Tags App
// @Produce json
// @Param id path int true "App ID"
// @Param index path int true "Screenshot index"
// @Success 200 {object} respond.Response{data=string}
// @Router /api/v1/apps/{id}/screenshots/{index} [get]
func (h *AppHandler) GetScreenshot(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respond.InvalidParam(c, "invalid app id")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respond.InvalidParam(c, "invalid screenshot index")
		return
	}
	url, err := h.registry.GetScreenshot(c.Request.Context(), id, index)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, url)
}

// AppCount number of registered apps
// @Summary App count
// @Tags App
// @Produce json
// @Success 200 {object} respond.Response{data=uint64}
// @Router /api/v1/apps/count [get]
func (h *AppHandler) AppCount(c *gin.Context) {
	n, err := h.registry.AppCount(c.Request.Context())
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, n)
}

// ListAdmins list admin accounts
// @Summary List admins
// @Tags Admin
// @Produce json
// @Success 200 {object} respond.Response{data=[]string}
// @Router /api/v1/admins [get]
func (h *AppHandler) ListAdmins(c *gin.Context) {
	admins, err := h.registry.Admins(c.Request.Context())
	if err != nil {
		respond.FromError(c, err)
		return
	}
	list := make([]string, 0, len(admins))
	for _, a := range admins {
		list = append(list, a.String())
	}
	respond.Success(c, list)
}

// IsAdmin check admin role
// @Summary Is admin
// @Tags Admin
// @Produce json
// @Param account path string true "Account"
// @Success 200 {object} respond.Response{data=bool}
// @Router /api/v1/admins/{account} [get]
func (h *AppHandler) IsAdmin(c *gin.Context) {
	ok, err := h.registry.IsAdmin(c.Request.Context(), models.ParseAccount(c.Param("account")))
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, ok)
}

// AddAdmin grant admin role
// @Summary Add admin
// @Tags Admin
// @Accept json
// @Produce json
// @Param X-Account header string true "Admin account"
// @Param request body AdminRequest true "Account to grant"
// @Success 200 {object} respond.Response
// @Router /api/v1/admins [post]
func (h *AppHandler) AddAdmin(c *gin.Context) {
	var req AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.InvalidParam(c, err.Error())
		return
	}
	if err := h.registry.AddAdmin(c.Request.Context(), CallerFrom(c), models.ParseAccount(req.Account)); err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, nil)
}

// RemoveAdmin revoke admin role
// @Summary Remove admin
// @Tags Admin
// @Produce json
// @Param X-Account header string true "Admin account"
// @Param account path string true "Account to revoke"
// @Success 200 {object} respond.Response
// @Router /api/v1/admins/{account} [delete]
func (h *AppHandler) RemoveAdmin(c *gin.Context) {
	if err := h.registry.RemoveAdmin(c.Request.Context(), CallerFrom(c), models.ParseAccount(c.Param("account"))); err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Success(c, nil)
}
