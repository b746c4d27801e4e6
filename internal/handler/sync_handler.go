package handler

import (
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SyncHandler struct {
	service service.SyncService
}

func NewSyncHandler(s service.SyncService) *SyncHandler {
	return &SyncHandler{service: s}
}

// POST /api/v1/sync
//
// Replays a batch of offline bills and inventory counts. The response is
// always 200: per-item failures are carried in the errors list, never as
// an HTTP failure for the whole batch.
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	var req service.SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result := h.service.Reconcile(&req, getActor(c))
	return c.JSON(result)
}
