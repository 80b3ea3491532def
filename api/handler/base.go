package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/api/transport"
	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/internal/middleware"
	"github.com/taskdeck/backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// actor retrieves the authenticated identity set by the auth
// middleware. Routes behind that middleware always have one; a missing
// actor means a wiring mistake, answered as unauthorized.
func (h baseHandler) actor(ctx *fasthttp.RequestCtx) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromRequest(ctx)
	if !ok {
		h.respondError(ctx, domain.ErrUnauthorized)
		return domain.Actor{}, false
	}
	return actor, true
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return false
	}
	return true
}

func (h baseHandler) pathParam(ctx *fasthttp.RequestCtx, name string) (string, bool) {
	value, ok := ctx.UserValue(name).(string)
	if !ok || value == "" {
		h.respondError(ctx, domain.NewErrorf(domain.ErrCodeValidation, "missing %s", name))
		return "", false
	}
	return value, true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), nil))
}

func mapError(err error) (int, string) {
	var dErr *domain.Error
	if !domain.AsDomainError(err, &dErr) {
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}

	switch dErr.Code {
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, string(dErr.Code)
	case domain.ErrCodeForbidden, domain.ErrCodeTenantMismatch:
		return http.StatusForbidden, string(dErr.Code)
	case domain.ErrCodeValidation, domain.ErrCodeNoRule, domain.ErrCodeNoTenant:
		return http.StatusBadRequest, string(dErr.Code)
	case domain.ErrCodeNotFound, domain.ErrCodeTenantNotFound:
		return http.StatusNotFound, string(dErr.Code)
	case domain.ErrCodeConflict:
		return http.StatusConflict, string(dErr.Code)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
