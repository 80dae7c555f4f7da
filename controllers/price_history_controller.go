package controllers

import (
	"agrimarket/apperrors"
	"agrimarket/logger"
	"agrimarket/middleware"
	"agrimarket/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetPriceHistory(c *fiber.Ctx) error {
	page, err := h.prices.ListHistory(c.UserContext(), c.Queries())
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) GetPriceHistoryStats(c *fiber.Ctx) error {
	stats, err := h.prices.HistoryStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// GetPriceChart returns the days on which one product's price moved.
func (h *Handler) GetPriceChart(c *fiber.Ctx) error {
	product := c.Params("product")
	if product == "" {
		return apperrors.BadRequest("product is required")
	}
	chart, err := h.prices.PriceChart(c.UserContext(), product)
	if err != nil {
		return err
	}
	return c.JSON(chart)
}

func (h *Handler) UpdatePriceHistory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in models.PriceHistoryEntry
	if err := c.BodyParser(&in); err != nil {
		return apperrors.BadRequest("invalid price history body: " + err.Error())
	}

	entry, err := h.dashboard.UpdateHistory(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	h.log.WithFields(logger.Fields{"id": id, "admin": c.Locals(middleware.LocalUsername)}).Info("✅ price history updated by admin")
	return c.JSON(entry)
}

func (h *Handler) DeletePriceHistory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.dashboard.DeleteHistory(c.UserContext(), id); err != nil {
		return err
	}
	h.log.WithFields(logger.Fields{"id": id, "admin": c.Locals(middleware.LocalUsername)}).Info("🗑️ price history entry deleted by admin")
	return c.SendStatus(fiber.StatusNoContent)
}
