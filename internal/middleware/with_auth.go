package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-result-api/internal/utils"
)

// Auth role groups used by the WithAuth helper.
const (
	AuthRoleAny    = "any"
	AuthRoleStaff  = "staff"
	AuthRoleFamily = "family"
)

var authRoleGroups = map[string][]string{
	AuthRoleStaff:  {"admin", "teacher"},
	AuthRoleFamily: {"parent", "student"},
}

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
	// AllowAnonymous lets requests without a user through when Role is any.
	AllowAnonymous bool
}

// WithAuth wraps a handler with authentication and role guards. Role is
// either a group (staff, family), a single role name, or any.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := !opts.AllowAnonymous || role != AuthRoleAny

	allowed := map[string]struct{}{}
	if members, ok := authRoleGroups[role]; ok {
		for _, member := range members {
			allowed[member] = struct{}{}
		}
	} else if role != AuthRoleAny {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if role == AuthRoleAny {
			return handler(c)
		}

		if _, ok := allowed[normalizeRoleValue(c.Locals("user_role"))]; !ok {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}

		return handler(c)
	}
}
