package controllers

import "github.com/gofiber/fiber/v2"

// RefreshMarketPrices scrapes today's board and reloads the dashboard. The
// request body is ignored.
func (h *Handler) RefreshMarketPrices(c *fiber.Ctx) error {
	result, err := h.dashboard.TriggerRefresh(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}
