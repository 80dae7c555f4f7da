package routes

import (
	"agrimarket/controllers"

	"github.com/gofiber/fiber/v2"
)

// Register mounts the public and admin endpoints under /api. admin guards
// every mutation.
func Register(app *fiber.App, h *controllers.Handler, admin fiber.Handler) {
	api := app.Group("/api")

	api.Post("/login", h.Login)

	api.Get("/market-analysis", h.GetMarketAnalysis)
	api.Get("/crops", h.GetCrops)
	api.Get("/forecast/:crop", h.GetForecast)
	api.Get("/dashboard", h.GetDashboard)
	api.Post("/dashboard/retry/:pipeline", h.RetryPipeline)
	api.Put("/dashboard/filters", h.UpdateFilters)
	api.Get("/dashboard/products", h.GetDashboardProducts)
	api.Get("/dashboard/history", h.GetDashboardHistory)
	api.Put("/dashboard/selection", h.UpdateSelection)
	api.Get("/dashboard/forecast", h.GetSelectedForecast)

	api.Get("/master-products", h.GetProducts)
	api.Get("/master-products/stats", h.GetProductStats)
	api.Get("/master-products/:id", h.GetProductByID)
	api.Put("/master-products/:id", admin, h.UpdateProduct)
	api.Delete("/master-products/:id", admin, h.DeleteProduct)

	api.Get("/price-history", h.GetPriceHistory)
	api.Get("/price-history/stats", h.GetPriceHistoryStats)
	api.Get("/price-history/chart/:product", h.GetPriceChart)
	api.Put("/price-history/:id", admin, h.UpdatePriceHistory)
	api.Delete("/price-history/:id", admin, h.DeletePriceHistory)

	api.Post("/refresh-market-prices", admin, h.RefreshMarketPrices)
}
