package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/api/transport"
	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/internal/middleware"
	"github.com/taskdeck/backend/pkg/httpcontext"
	tenantUC "github.com/taskdeck/backend/usecase/tenant"
)

// TenantHandler is the platform administration surface. Except for
// GetCurrent it sits outside tenant resolution and user auth; every
// call must carry the platform admin key instead.
type TenantHandler struct {
	baseHandler
	uc *tenantUC.UseCase
}

func NewTenantHandler(uc *tenantUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

func (h *TenantHandler) ProvisionTenant(ctx *fasthttp.RequestCtx) {
	if !h.authorized(ctx) {
		return
	}

	var req transport.TenantProvisionRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tenant, err := h.uc.Provision(stdCtx, tenantUC.ProvisionInput{
		Slug:          req.Slug,
		Name:          req.Name,
		AdminEmail:    req.AdminEmail,
		AdminName:     req.AdminName,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, tenant)
}

func (h *TenantHandler) GetTenants(ctx *fasthttp.RequestCtx) {
	if !h.authorized(ctx) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tenants, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tenants)
}

func (h *TenantHandler) SetTenantActive(ctx *fasthttp.RequestCtx) {
	if !h.authorized(ctx) {
		return
	}
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	var req transport.TenantActiveRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetActive(stdCtx, id, req.Active); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// GetCurrent echoes the tenant resolved by the middleware so the
// frontend can render the workspace name before login.
func (h *TenantHandler) GetCurrent(ctx *fasthttp.RequestCtx) {
	tenant, ok := middleware.TenantFromRequest(ctx)
	if !ok {
		h.respondError(ctx, domain.ErrNoTenant)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tenant)
}

func (h *TenantHandler) authorized(ctx *fasthttp.RequestCtx) bool {
	key := string(ctx.Request.Header.Peek("X-Admin-Key"))
	if err := h.uc.Authorize(key); err != nil {
		h.respondError(ctx, err)
		return false
	}
	return true
}
