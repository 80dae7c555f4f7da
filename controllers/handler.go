package controllers

import (
	"context"
	"strconv"

	"agrimarket/apperrors"
	"agrimarket/catalog"
	"agrimarket/config"
	"agrimarket/loader"
	"agrimarket/logger"
	"agrimarket/models"

	"github.com/gofiber/fiber/v2"
)

// Prices answers the read endpoints. Both the local service and the
// upstream client satisfy it.
type Prices interface {
	MarketAnalysis(ctx context.Context) (models.MarketAnalysis, error)
	ListProducts(ctx context.Context, params map[string]string) (models.Page[models.Product], error)
	ListHistory(ctx context.Context, params map[string]string) (models.Page[models.PriceHistoryEntry], error)
	ProductStats(ctx context.Context) (catalog.ProductSummary, error)
	HistoryStats(ctx context.Context) (catalog.HistorySummary, error)
	PriceChart(ctx context.Context, product string) ([]models.PriceHistoryEntry, error)
	Product(ctx context.Context, id uint) (models.Product, error)
}

// Dashboard is the loaded view admin mutations go through, so its rows
// stay in step with the backend.
type Dashboard interface {
	RetryPipeline(ctx context.Context, name string) error
	RetryFailed(ctx context.Context) error
	SetProductParams(params map[string]string)
	SetHistoryParams(params map[string]string)
	ApplyFilters(ctx context.Context) error
	Select(crop models.CropID, growthStage string) error
	Selection() loader.Selection
	Reconciled() (models.ReconciledView, error)
	Forecast(crop models.CropID, growthStage string) (models.ReconciledView, error)
	Products() []models.Product
	History() []models.PriceHistoryEntry
	Notices() []error
	Market() loader.Snapshot[models.MarketAnalysis]
	Status() []loader.Status
	ProductSummary() catalog.ProductSummary
	HistorySummary() catalog.HistorySummary
	UpdateProduct(ctx context.Context, id uint, in models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	UpdateHistory(ctx context.Context, id uint, in models.PriceHistoryEntry) (models.PriceHistoryEntry, error)
	DeleteHistory(ctx context.Context, id uint) error
	TriggerRefresh(ctx context.Context) (models.RefreshResult, error)
}

type Users interface {
	User(ctx context.Context, username string) (models.User, error)
}

type Handler struct {
	prices    Prices
	dashboard Dashboard
	users     Users
	crops     []models.CropID
	auth      config.AuthConfig
	log       *logger.Entry
}

func New(prices Prices, dashboard Dashboard, users Users, crops []models.CropID, auth config.AuthConfig, log *logger.Log) *Handler {
	return &Handler{
		prices:    prices,
		dashboard: dashboard,
		users:     users,
		crops:     crops,
		auth:      auth,
		log:       log.WithComponent("controllers"),
	}
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("invalid id " + strconv.Quote(c.Params("id")))
	}
	return uint(id), nil
}
