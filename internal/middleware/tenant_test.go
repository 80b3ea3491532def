package middleware

import (
	"context"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/taskdeck/backend/domain"
)

type fakeResolver struct {
	tenants map[string]*domain.Tenant
}

func (r *fakeResolver) ResolveActiveBySlug(_ context.Context, slug string) (*domain.Tenant, error) {
	if slug == "" {
		return nil, domain.ErrNoTenant
	}
	tenant, ok := r.tenants[slug]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return tenant, nil
}

func acmeResolver() *fakeResolver {
	return &fakeResolver{tenants: map[string]*domain.Tenant{
		"acme": {ID: "t-acme", Slug: "acme", Name: "Acme", Active: true},
	}}
}

func runResolve(t *testing.T, cfg TenantConfig, prepare func(ctx *fasthttp.RequestCtx)) (*fasthttp.RequestCtx, bool) {
	t.Helper()
	reached := false
	handler := ResolveTenant(acmeResolver(), cfg, nil)(func(ctx *fasthttp.RequestCtx) {
		reached = true
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/tasks")
	prepare(&ctx)
	handler(&ctx)
	return &ctx, reached
}

func TestResolveTenantFromHeader(t *testing.T) {
	ctx, reached := runResolve(t, TenantConfig{}, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.SetHost("localhost")
		ctx.Request.Header.Set("X-Tenant-Slug", "ACME")
	})
	if !reached {
		t.Fatalf("request blocked: %d %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	tenant, ok := TenantFromRequest(ctx)
	if !ok || tenant.ID != "t-acme" {
		t.Errorf("tenant not attached: %+v", tenant)
	}
}

func TestResolveTenantFromSubdomain(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		cfg     TenantConfig
		reached bool
	}{
		{"subdomain under base domain", "acme.taskdeck.app", TenantConfig{BaseDomain: "taskdeck.app"}, true},
		{"bare base domain has no slug", "taskdeck.app", TenantConfig{BaseDomain: "taskdeck.app"}, false},
		{"www is not a tenant", "www.taskdeck.app", TenantConfig{BaseDomain: "taskdeck.app"}, false},
		{"three labels without base domain", "acme.example.com", TenantConfig{}, true},
		{"two labels without base domain", "example.com", TenantConfig{}, false},
		{"localhost never carries a slug", "localhost:8080", TenantConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, reached := runResolve(t, tt.cfg, func(ctx *fasthttp.RequestCtx) {
				ctx.Request.SetHost(tt.host)
			})
			if reached != tt.reached {
				t.Errorf("reached = %v, want %v (status %d)", reached, tt.reached, ctx.Response.StatusCode())
			}
		})
	}
}

func TestResolveTenantFromQuery(t *testing.T) {
	ctx, reached := runResolve(t, TenantConfig{}, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.SetRequestURI("/api/v1/tasks?tenant=acme")
		ctx.Request.SetHost("localhost")
	})
	if !reached {
		t.Fatalf("request blocked: %d", ctx.Response.StatusCode())
	}
}

func TestResolveTenantHeaderWinsOverSubdomain(t *testing.T) {
	// Header says acme, subdomain says ghost. The header is checked
	// first, so the request resolves.
	_, reached := runResolve(t, TenantConfig{BaseDomain: "taskdeck.app"}, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.SetHost("ghost.taskdeck.app")
		ctx.Request.Header.Set("X-Tenant-Slug", "acme")
	})
	if !reached {
		t.Fatal("header slug should take precedence")
	}
}

func TestResolveTenantErrors(t *testing.T) {
	t.Run("no slug at all", func(t *testing.T) {
		ctx, reached := runResolve(t, TenantConfig{}, func(ctx *fasthttp.RequestCtx) {
			ctx.Request.SetHost("localhost")
		})
		if reached {
			t.Fatal("request passed without a tenant")
		}
		if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
			t.Errorf("status %d, want 400", ctx.Response.StatusCode())
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		ctx, reached := runResolve(t, TenantConfig{}, func(ctx *fasthttp.RequestCtx) {
			ctx.Request.SetHost("localhost")
			ctx.Request.Header.Set("X-Tenant-Slug", "ghost")
		})
		if reached {
			t.Fatal("request passed with an unknown tenant")
		}
		if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
			t.Errorf("status %d, want 404", ctx.Response.StatusCode())
		}
	})
}
