package controllers

import (
	"agrimarket/apperrors"
	"agrimarket/models"

	"github.com/gofiber/fiber/v2"
)

// DashboardFilters is the filter input of the dashboard tables. A nil map
// leaves that table's filters untouched. Without Apply the new input is
// fetched once it has settled for the debounce delay.
type DashboardFilters struct {
	Products map[string]string `json:"products"`
	History  map[string]string `json:"history"`
	Apply    bool              `json:"apply"`
}

type DashboardSelection struct {
	Crop        models.CropID `json:"crop"`
	GrowthStage string        `json:"growth_stage"`
}

// RetryPipeline reloads one dashboard pipeline. A failed retry answers with
// the fetch failure and the pipeline keeps its previous data.
func (h *Handler) RetryPipeline(c *fiber.Ctx) error {
	name := c.Params("pipeline")
	if err := h.dashboard.RetryPipeline(c.UserContext(), name); err != nil {
		return err
	}
	h.log.WithField("pipeline", name).Info("✅ pipeline reloaded")
	return c.JSON(fiber.Map{"pipelines": h.dashboard.Status()})
}

func (h *Handler) UpdateFilters(c *fiber.Ctx) error {
	var in DashboardFilters
	if err := c.BodyParser(&in); err != nil {
		return apperrors.BadRequest("invalid filter body: " + err.Error())
	}
	if in.Products == nil && in.History == nil && !in.Apply {
		return apperrors.BadRequest("products or history filters required")
	}

	if in.Products != nil {
		h.dashboard.SetProductParams(in.Products)
	}
	if in.History != nil {
		h.dashboard.SetHistoryParams(in.History)
	}
	if !in.Apply {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"pipelines": h.dashboard.Status()})
	}
	if err := h.dashboard.ApplyFilters(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"pipelines": h.dashboard.Status()})
}

// GetDashboardProducts lists the dashboard's products with its committed
// filters and ordering applied.
func (h *Handler) GetDashboardProducts(c *fiber.Ctx) error {
	products := h.dashboard.Products()
	return c.JSON(fiber.Map{
		"count":   len(products),
		"results": products,
		"summary": h.dashboard.ProductSummary(),
		"notices": h.notices(),
	})
}

func (h *Handler) GetDashboardHistory(c *fiber.Ctx) error {
	history := h.dashboard.History()
	return c.JSON(fiber.Map{
		"count":   len(history),
		"results": history,
		"summary": h.dashboard.HistorySummary(),
		"notices": h.notices(),
	})
}

func (h *Handler) UpdateSelection(c *fiber.Ctx) error {
	var in DashboardSelection
	if err := c.BodyParser(&in); err != nil {
		return apperrors.BadRequest("invalid selection body: " + err.Error())
	}
	if err := h.dashboard.Select(in.Crop, in.GrowthStage); err != nil {
		return err
	}
	sel := h.dashboard.Selection()
	return c.JSON(DashboardSelection{Crop: sel.Crop, GrowthStage: sel.GrowthStage})
}

// GetSelectedForecast reconciles the selected crop, retrying a failed
// market load first.
func (h *Handler) GetSelectedForecast(c *fiber.Ctx) error {
	h.retryFailed(c)
	view, err := h.dashboard.Reconciled()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"forecast": view,
		"notices":  h.notices(),
	})
}
