package controllers

import (
	"agrimarket/apperrors"
	"agrimarket/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetMarketAnalysis(c *fiber.Ctx) error {
	analysis, err := h.prices.MarketAnalysis(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(analysis)
}

func (h *Handler) GetCrops(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"crops": h.crops})
}

// GetForecast reconciles the crop against the dashboard's market data. A
// failed market load still answers from the forecast, with the failure in
// notices.
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	crop := models.CropID(c.Params("crop"))
	if !h.selectable(crop) {
		return apperrors.NotFound("unknown crop " + string(crop))
	}

	h.retryFailed(c)
	view, err := h.dashboard.Forecast(crop, c.Query("growth_stage"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"forecast": view,
		"notices":  h.notices(),
	})
}

// GetDashboard mirrors the loaded dashboard: market data, summary counts
// and the state of every pipeline.
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	h.retryFailed(c)
	market := h.dashboard.Market()
	resp := fiber.Map{
		"market":          market.Data,
		"product_summary": h.dashboard.ProductSummary(),
		"history_summary": h.dashboard.HistorySummary(),
		"pipelines":       h.dashboard.Status(),
	}

	if crop := models.CropID(c.Query("crop")); crop != "" {
		if !h.selectable(crop) {
			return apperrors.NotFound("unknown crop " + string(crop))
		}
		view, err := h.dashboard.Forecast(crop, c.Query("growth_stage"))
		if err != nil {
			return err
		}
		resp["forecast"] = view
	}
	return c.JSON(resp)
}

func (h *Handler) selectable(crop models.CropID) bool {
	for _, c := range h.crops {
		if c == crop {
			return true
		}
	}
	return false
}

func (h *Handler) notices() []string {
	notices := []string{}
	for _, err := range h.dashboard.Notices() {
		notices = append(notices, err.Error())
	}
	return notices
}

// retryFailed gives failed pipelines another try before answering, so a feed
// that was down at startup heals on the next read. A retry that fails
// again only leaves its notice in place.
func (h *Handler) retryFailed(c *fiber.Ctx) {
	if err := h.dashboard.RetryFailed(c.UserContext()); err != nil {
		h.log.WithError(err).Debug("pipeline retry failed")
	}
}
