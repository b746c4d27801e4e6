package middleware

import (
	"strings"

	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token and resolves the opaque actor
// identity (and requested locale) every downstream call receives.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		tokenString := parts[1]

		// Validate token
		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}

		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		// Set actor info in context for downstream handlers
		c.Locals("actor_identity", claims.UserID.String())
		c.Locals("actor_email", claims.Email)
		c.Locals("actor_name", claims.Name)
		c.Locals("actor_role", claims.Role)

		// Locale is resolved at the boundary only; the core never sees it.
		locale := c.Get("Accept-Language")
		if locale == "" {
			locale = "en"
		}
		c.Locals("locale", locale)

		return c.Next()
	}
}

// RequireRole checks if the authenticated user has the required role
func RequireRole(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("actor_role").(string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}

		if role != requiredRole {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + requiredRole + "' role",
			})
		}

		return c.Next()
	}
}
