package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailroom/internal/model"
	"mailroom/internal/service"
)

// ActorLocalKey is the key under which the authenticated caller is stored in locals.
const ActorLocalKey = "actor"

// Authenticator turns a bearer token into the calling actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (service.Actor, error)
}

// IPChecker answers whether a client address may use admin routes.
type IPChecker interface {
	Allowed(ctx context.Context, ip string) (bool, error)
}

// ActorFrom returns the actor stored by Authenticate.
func ActorFrom(c *fiber.Ctx) (service.Actor, bool) {
	a, ok := c.Locals(ActorLocalKey).(service.Actor)
	return a, ok
}

// Authenticate requires a valid "Authorization: Bearer <jwt>" header.
func Authenticate(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		actor, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			return err
		}
		actor.IP = c.IP()
		c.Locals(ActorLocalKey, actor)
		return c.Next()
	}
}

// RequireRole rejects callers ranked below role. It must run after Authenticate.
func RequireRole(role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !actor.Is(role) {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// IPAllowlist rejects clients whose address is outside the admin allowlist.
func IPAllowlist(checker IPChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := checker.Allowed(c.UserContext(), c.IP())
		if err != nil {
			return err
		}
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "client address not allowed")
		}
		return c.Next()
	}
}
