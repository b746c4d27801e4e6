package handler

import (
	"strconv"
	"time"

	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GET /api/v1/reports/sales?start=2026-08-01&end=2026-08-31
func (h *ReportHandler) SalesReport(c *fiber.Ctx) error {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid start date, expected YYYY-MM-DD"})
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid end date, expected YYYY-MM-DD"})
	}
	// Make the end date inclusive for the whole day.
	end = end.Add(24*time.Hour - time.Nanosecond)

	report, err := h.service.SalesReport(start.UTC(), end.UTC())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// GET /api/v1/reports/inventory?low_stock_threshold=10&expiry_days=30
func (h *ReportHandler) InventoryReport(c *fiber.Ctx) error {
	threshold, err := strconv.Atoi(c.Query("low_stock_threshold", "10"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid low_stock_threshold"})
	}
	expiryDays, err := strconv.Atoi(c.Query("expiry_days", "30"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid expiry_days"})
	}

	report, err := h.service.InventoryReport(threshold, expiryDays)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// GET /api/v1/reports/stock-movement?days=7
func (h *ReportHandler) StockMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid days"})
	}

	data, err := h.service.StockMovement(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}
