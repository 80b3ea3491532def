package middleware

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/pkg/logger"
)

const tenantKey = "tenant"

// TenantResolver looks up the active tenant for a slug candidate.
type TenantResolver interface {
	ResolveActiveBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
}

// TenantConfig controls subdomain extraction. BaseDomain is the suffix
// stripped to obtain the slug, e.g. "taskdeck.app" turns
// "acme.taskdeck.app" into "acme".
type TenantConfig struct {
	BaseDomain string
}

// ResolveTenant identifies the tenant for every request before auth
// runs. The slug is taken from the X-Tenant-Slug header first, then
// from the subdomain, then from the ?tenant= query parameter. No match
// means the request cannot proceed at all.
func ResolveTenant(resolver TenantResolver, cfg TenantConfig, log *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			slug := extractSlug(ctx, cfg.BaseDomain)
			if slug == "" {
				writeTenantError(ctx, fasthttp.StatusBadRequest, domain.ErrNoTenant)
				return
			}

			tenant, err := resolver.ResolveActiveBySlug(ctx, slug)
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeTenantNotFound) {
					writeTenantError(ctx, fasthttp.StatusNotFound, domain.ErrTenantNotFound)
					return
				}
				log.Error("tenant resolution failed", zap.String("slug", slug), zap.Error(err))
				writeTenantError(ctx, fasthttp.StatusInternalServerError, domain.NewError(domain.ErrCodeInternal, "tenant resolution failed"))
				return
			}

			logger.WithTenant(log, tenant.ID).Debug("tenant resolved", zap.String("slug", slug))
			ctx.SetUserValue(tenantKey, tenant)
			next(ctx)
		}
	}
}

// TenantFromRequest returns the tenant resolved for this request.
func TenantFromRequest(ctx *fasthttp.RequestCtx) (*domain.Tenant, bool) {
	tenant, ok := ctx.UserValue(tenantKey).(*domain.Tenant)
	return tenant, ok
}

func extractSlug(ctx *fasthttp.RequestCtx, baseDomain string) string {
	if slug := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Tenant-Slug"))); slug != "" {
		return strings.ToLower(slug)
	}

	host := strings.ToLower(string(ctx.Host()))
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if slug := slugFromHost(host, baseDomain); slug != "" {
		return slug
	}

	return strings.ToLower(strings.TrimSpace(string(ctx.QueryArgs().Peek("tenant"))))
}

// slugFromHost extracts the first label when the host looks like a
// real subdomain. Bare domains and localhost carry no tenant.
func slugFromHost(host, baseDomain string) string {
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ""
	}
	if baseDomain != "" {
		if host == baseDomain {
			return ""
		}
		if strings.HasSuffix(host, "."+baseDomain) {
			prefix := strings.TrimSuffix(host, "."+baseDomain)
			if !strings.Contains(prefix, ".") && prefix != "www" {
				return prefix
			}
		}
		return ""
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 || parts[0] == "www" {
		return ""
	}
	return parts[0]
}

func writeTenantError(ctx *fasthttp.RequestCtx, status int, err *domain.Error) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(`{"status":"error","code":"` + string(err.Code) + `","error":"` + err.Message + `"}`)
}
