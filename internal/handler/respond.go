package handler

import (
	"go-retail-pos/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// getActor returns the opaque actor identity set by the auth middleware.
func getActor(c *fiber.Ctx) string {
	actor := c.Locals("actor_identity")
	if actor == nil {
		return "system" // Fallback (shouldn't happen on protected routes)
	}
	return actor.(string)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// statusFor maps the core's typed error kinds onto HTTP status codes. The
// message text stays untranslated here; localization belongs to the
// boundary collaborator consuming the error_kind field.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindDuplicateResource, apperr.KindInsufficientStock, apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindInvalidArgument:
		return fiber.StatusBadRequest
	case apperr.KindDataIntegrity:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	body := fiber.Map{"error": err.Error()}
	if kind := apperr.KindOf(err); kind != apperr.KindUnknown {
		body["error_kind"] = kind.String()
	}
	if status == fiber.StatusInternalServerError && apperr.KindOf(err) == apperr.KindUnknown {
		// Never leak raw store errors to clients.
		body["error"] = "Internal Server Error"
	}
	return c.Status(status).JSON(body)
}
