package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-gradebook/internal/utils"
)

// Roles recognised by the gradebook.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleViewer  = "viewer"
)

// RequireRole ensures that the authenticated caller holds one of the allowed
// roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := roleSet(roles)
	return func(c *fiber.Ctx) error {
		if _, ok := allowed[roleFromLocals(c)]; !ok {
			return utils.SendErrorKind(c, fiber.StatusForbidden, "forbidden", "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireWriteRole lets read requests through and applies RequireRole to
// everything that can change the gradebook.
func RequireWriteRole(roles ...string) fiber.Handler {
	guard := RequireRole(roles...)
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		default:
			return guard(c)
		}
	}
}

func roleSet(roles []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}
	return allowed
}

func roleFromLocals(c *fiber.Ctx) string {
	if role, ok := c.Locals("role").(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return ""
}
