package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tiryaq/internal/models"
	"github.com/example/tiryaq/internal/utils"
)

const claimsContextKey = "currentClaims"

// AuthMiddleware validates bearer tokens and loads the caller's claims into context.
// A missing token is 401; a token that fails verification is 403.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusForbidden, "Invalid Token")
		}

		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// CurrentClaims extracts the authenticated identity from context.
func CurrentClaims(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals(claimsContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}

// HasRole reports whether role is in allowed.
func HasRole(role models.Role, allowed ...models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// RequireRole rejects callers whose role is not in the allow-list. It must
// run after AuthMiddleware.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := CurrentClaims(c)
		if !ok || !HasRole(claims.Role, roles...) {
			return fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}
		return c.Next()
	}
}
