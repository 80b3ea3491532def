package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/api/transport"
	"github.com/taskdeck/backend/pkg/httpcontext"
	ruleUC "github.com/taskdeck/backend/usecase/rule"
)

type RuleHandler struct {
	baseHandler
	uc *ruleUC.UseCase
}

func NewRuleHandler(uc *ruleUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

func (h *RuleHandler) GetRules(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rules, err := h.uc.ListRules(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, rules)
}

func (h *RuleHandler) GetRuleForArea(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	area, ok := h.pathParam(ctx, "area")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rule, err := h.uc.GetForArea(stdCtx, actor, area)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, rule)
}

func (h *RuleHandler) UpsertRule(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.RuleUpsertRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	saved, err := h.uc.UpsertRule(stdCtx, actor, req.Area, req.AllowedRecurrences)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, saved)
}
