package middleware

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
)

const actorKey = "actor"

// TokenVerifier turns a bearer token into an acting identity, checking
// the backing session along the way.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Actor, error)
}

// Authenticate guards tenant routes. It requires a valid token AND that
// the token was issued for the tenant this request resolved to;
// a mismatch is reported as its own condition so operators can tell a
// stale tab from an attack.
func Authenticate(verifier TokenVerifier, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := extractToken(ctx)
			if token == "" {
				writeAuthError(ctx, fasthttp.StatusUnauthorized, domain.ErrUnauthorized)
				return
			}

			actor, err := verifier.Verify(ctx, token)
			if err != nil {
				writeAuthError(ctx, fasthttp.StatusUnauthorized, domain.ErrUnauthorized)
				return
			}

			if tenant, ok := TenantFromRequest(ctx); ok && tenant.ID != actor.TenantID {
				logger.Warn("token tenant mismatch",
					zap.String("request_tenant", tenant.ID),
					zap.String("token_tenant", actor.TenantID))
				writeAuthError(ctx, fasthttp.StatusForbidden, domain.ErrTenantMismatch)
				return
			}

			ctx.SetUserValue(actorKey, *actor)
			next(ctx)
		}
	}
}

// ActorFromRequest returns the authenticated identity placed by
// Authenticate.
func ActorFromRequest(ctx *fasthttp.RequestCtx) (domain.Actor, bool) {
	actor, ok := ctx.UserValue(actorKey).(domain.Actor)
	return actor, ok
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func writeAuthError(ctx *fasthttp.RequestCtx, status int, err *domain.Error) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(`{"status":"error","code":"` + string(err.Code) + `","error":"` + err.Message + `"}`)
}
