package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskdeck/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	User   *apiHandler.UserHandler
	Rule   *apiHandler.RuleHandler
	Lookup *apiHandler.LookupHandler
	Tenant *apiHandler.TenantHandler
	Health *apiHandler.HealthHandler
}

// Middleware is a fasthttp decorator.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New wires the route table. Tenant resolution wraps everything under
// /api/v1 except the platform surface; auth additionally wraps every
// tenant route except login.
func New(handlers Handlers, resolveTenant, authenticate Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	r.GET("/api/v1/csrf", handlers.Auth.Csrf)

	// Platform administration, guarded by the admin key header.
	r.POST("/api/v1/admin/tenants", handlers.Tenant.ProvisionTenant)
	r.GET("/api/v1/admin/tenants", handlers.Tenant.GetTenants)
	r.PATCH("/api/v1/admin/tenants/{id}/active", handlers.Tenant.SetTenantActive)

	public := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return resolveTenant(h)
	}
	protected := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return resolveTenant(authenticate(h))
	}

	r.GET("/api/v1/tenants/current", public(handlers.Tenant.GetCurrent))

	r.POST("/api/v1/auth/login", public(handlers.Auth.Login))
	r.POST("/api/v1/auth/logout", protected(handlers.Auth.Logout))
	r.GET("/api/v1/auth/me", protected(handlers.Auth.Me))
	r.POST("/api/v1/auth/change-password", protected(handlers.Auth.ChangePassword))

	r.GET("/api/v1/tasks", protected(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", protected(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", protected(handlers.Task.GetTask))
	r.PATCH("/api/v1/tasks/{id}", protected(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", protected(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/{id}/duplicate", protected(handlers.Task.DuplicateTask))

	r.GET("/api/v1/users", protected(handlers.User.GetUsers))
	r.GET("/api/v1/users/all", protected(handlers.User.GetAllUsers))
	r.POST("/api/v1/users", protected(handlers.User.CreateUser))
	r.PATCH("/api/v1/users/{id}", protected(handlers.User.UpdateUser))
	r.PATCH("/api/v1/users/{id}/active", protected(handlers.User.SetActive))
	r.POST("/api/v1/users/{id}/reset-password", protected(handlers.User.ResetPassword))

	r.GET("/api/v1/rules", protected(handlers.Rule.GetRules))
	r.GET("/api/v1/rules/{area}", protected(handlers.Rule.GetRuleForArea))
	r.PUT("/api/v1/rules", protected(handlers.Rule.UpsertRule))

	r.GET("/api/v1/lookups", protected(handlers.Lookup.GetLookups))
	r.POST("/api/v1/lookups", protected(handlers.Lookup.AddLookup))
	r.POST("/api/v1/lookups/rename", protected(handlers.Lookup.RenameLookup))

	return r
}
