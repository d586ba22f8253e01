// middleware/user_context.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	UserIDKey    = "user_id"
	UserRolesKey = "user_roles"
	BrandIDKey   = "brand_id"
)

// Operation names guarded by RequirePermission, mapped to the roles allowed
// to perform them. The gateway authenticates; this table authorizes.
var rolePolicy = map[string][]string{
	"attempt.review":     {"ADMIN"},
	"budget.manage":      {"ADMIN"},
	"application.review": {"ADMIN"},
	"mission.manage":     {"BRAND", "ADMIN"},
	"brand.manage":       {"BRAND", "ADMIN"},
	"giftcard.redeem":    {"BRAND", "ADMIN"},
}

// UserContextMiddleware extracts user identity and roles set by Gateway.
// Secured paths (/s/ and below) require an identity; everything else passes
// whatever context is present.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")
		brandID := c.Get("X-Brand-ID")

		path := c.Path()
		if strings.HasPrefix(path, "/s/") && userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s", path)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.ToUpper(strings.TrimSpace(r))
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals(UserIDKey, userID)
		c.Locals(UserRolesKey, roles)
		c.Locals(BrandIDKey, brandID)

		return c.Next()
	}
}

// UserID reads the authenticated user id from the request context.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// BrandID reads the caller's brand id from the request context.
func BrandID(c *fiber.Ctx) string {
	if v, ok := c.Locals(BrandIDKey).(string); ok {
		return v
	}
	return ""
}

// Roles reads the caller's roles from the request context.
func Roles(c *fiber.Ctx) []string {
	if v, ok := c.Locals(UserRolesKey).([]string); ok {
		return v
	}
	return nil
}

// RequirePermission guards a route with the role policy for the named
// operation. Unknown operations deny everything.
func RequirePermission(operation string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed := rolePolicy[operation]
		for _, role := range Roles(c) {
			for _, want := range allowed {
				if role == want {
					return c.Next()
				}
			}
		}
		log.Printf("🚫 [USER_CTX] user %s denied %s (roles=%v)", UserID(c), operation, Roles(c))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient role for " + operation,
		})
	}
}
