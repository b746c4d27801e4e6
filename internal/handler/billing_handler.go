package handler

import (
	"strconv"

	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BillingHandler struct {
	service service.BillingService
}

func NewBillingHandler(s service.BillingService) *BillingHandler {
	return &BillingHandler{service: s}
}

// POST /api/v1/bills
func (h *BillingHandler) CreateBill(c *fiber.Ctx) error {
	var req service.CreateBillRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	bill, err := h.service.CreateBill(&req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Bill created", "data": bill})
}

// GET /api/v1/bills/:id
func (h *BillingHandler) GetBill(c *fiber.Ctx) error {
	bill, err := h.service.GetBill(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bill)
}

// GET /api/v1/bills?limit=100
func (h *BillingHandler) GetBills(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid limit"})
	}

	bills, err := h.service.ListBills(limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bills)
}
