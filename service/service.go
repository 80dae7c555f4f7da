package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"agrimarket/analysis"
	"agrimarket/apperrors"
	"agrimarket/catalog"
	"agrimarket/database"
	"agrimarket/logger"
	"agrimarket/models"

	"github.com/google/uuid"
)

// Store is the persistence the service reads and writes.
type Store interface {
	Products(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id uint) (models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	History(ctx context.Context) ([]models.PriceHistoryEntry, error)
	HistoryEntry(ctx context.Context, id uint) (models.PriceHistoryEntry, error)
	SaveHistory(ctx context.Context, entry *models.PriceHistoryEntry) error
	DeleteHistory(ctx context.Context, id uint) error
	ApplyBoard(ctx context.Context, day models.Date, quotes []models.Quote) (database.BoardResult, error)
}

// Board supplies the day's published quotes.
type Board interface {
	Fetch(ctx context.Context) ([]models.Quote, error)
}

// Service answers the price endpoints from the local store.
type Service struct {
	store Store
	board Board
	log   *logger.Entry
	now   func() time.Time

	refreshing sync.Mutex
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, board Board, log *logger.Log, opts ...Option) *Service {
	s := &Service{
		store: store,
		board: board,
		log:   log.WithComponent("service"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarketAnalysis compares the latest recorded day against the one before it.
func (s *Service) MarketAnalysis(ctx context.Context) (models.MarketAnalysis, error) {
	history, err := s.store.History(ctx)
	if err != nil {
		return models.MarketAnalysis{}, err
	}
	return analysis.Analyze(history), nil
}

func (s *Service) ListProducts(ctx context.Context, params map[string]string) (models.Page[models.Product], error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return models.Page[models.Product]{}, err
	}
	filtered := catalog.Products(products, catalog.ParseProductCriteria(params))
	page, size := catalog.ParsePage(params)
	return catalog.Paginate(filtered, page, size), nil
}

func (s *Service) ListHistory(ctx context.Context, params map[string]string) (models.Page[models.PriceHistoryEntry], error) {
	history, err := s.store.History(ctx)
	if err != nil {
		return models.Page[models.PriceHistoryEntry]{}, err
	}
	filtered := catalog.History(history, catalog.ParseHistoryCriteria(params))
	page, size := catalog.ParsePage(params)
	return catalog.Paginate(filtered, page, size), nil
}

func (s *Service) ProductStats(ctx context.Context) (catalog.ProductSummary, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return catalog.ProductSummary{}, err
	}
	return catalog.SummarizeProducts(products), nil
}

func (s *Service) HistoryStats(ctx context.Context) (catalog.HistorySummary, error) {
	history, err := s.store.History(ctx)
	if err != nil {
		return catalog.HistorySummary{}, err
	}
	return catalog.SummarizeHistory(history), nil
}

// PriceChart lists the days on which a product's average price changed.
func (s *Service) PriceChart(ctx context.Context, product string) ([]models.PriceHistoryEntry, error) {
	history, err := s.store.History(ctx)
	if err != nil {
		return nil, err
	}
	changes := analysis.PriceChanges(history, product)
	if len(changes) == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("no price history for %q", product))
	}
	return changes, nil
}

func (s *Service) Product(ctx context.Context, id uint) (models.Product, error) {
	return s.store.Product(ctx, id)
}

// UpdateProduct replaces the editable fields of a product. ID and
// InsertDate are kept from the stored row.
func (s *Service) UpdateProduct(ctx context.Context, id uint, in models.Product) (models.Product, error) {
	if err := validateProduct(in); err != nil {
		return models.Product{}, err
	}
	product, err := s.store.Product(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	product.CommodityName = strings.TrimSpace(in.CommodityName)
	product.Unit = in.Unit
	product.MinPrice = in.MinPrice
	product.MaxPrice = in.MaxPrice
	product.AvgPrice = in.AvgPrice
	product.LastPrice = in.LastPrice

	if err := s.store.SaveProduct(ctx, &product); err != nil {
		return models.Product{}, err
	}
	s.log.WithFields(logger.Fields{"id": id, "commodity": product.CommodityName}).Info("✅ product updated")
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.log.WithField("id", id).Info("🗑️ product deleted")
	return nil
}

func (s *Service) UpdateHistory(ctx context.Context, id uint, in models.PriceHistoryEntry) (models.PriceHistoryEntry, error) {
	if err := validateHistory(in); err != nil {
		return models.PriceHistoryEntry{}, err
	}
	entry, err := s.store.HistoryEntry(ctx, id)
	if err != nil {
		return models.PriceHistoryEntry{}, err
	}

	entry.ProductName = strings.TrimSpace(in.ProductName)
	entry.Date = in.Date
	entry.MinPrice = in.MinPrice
	entry.MaxPrice = in.MaxPrice
	entry.AvgPrice = in.AvgPrice

	if err := s.store.SaveHistory(ctx, &entry); err != nil {
		return models.PriceHistoryEntry{}, err
	}
	s.log.WithFields(logger.Fields{"id": id, "product": entry.ProductName, "date": entry.Date.String()}).Info("✅ price history updated")
	return entry, nil
}

func (s *Service) DeleteHistory(ctx context.Context, id uint) error {
	if err := s.store.DeleteHistory(ctx, id); err != nil {
		return err
	}
	s.log.WithField("id", id).Info("🗑️ price history entry deleted")
	return nil
}

// RefreshMarketPrices scrapes today's board and writes it to the store.
// Only one refresh runs at a time; a concurrent call gets a conflict.
func (s *Service) RefreshMarketPrices(ctx context.Context) (models.RefreshResult, error) {
	if s.board == nil {
		return models.RefreshResult{}, apperrors.Configuration("market board URL is not configured")
	}
	if !s.refreshing.TryLock() {
		return models.RefreshResult{}, apperrors.Conflict("a market price refresh is already running")
	}
	defer s.refreshing.Unlock()

	started := s.now()
	result := models.RefreshResult{
		JobID:     uuid.NewString(),
		Date:      models.DateOf(started),
		StartedAt: started,
	}
	log := s.log.WithFields(logger.Fields{"job_id": result.JobID, "date": result.Date.String()})
	log.Info("🚀 market price refresh started")

	quotes, err := s.board.Fetch(ctx)
	if err != nil {
		log.WithError(err).Error("❌ market board fetch failed")
		return result, apperrors.FetchFailure(err, "market board")
	}
	if len(quotes) == 0 {
		log.Warn("⚠️ market board returned no quotes")
		return result, apperrors.FetchFailure(fmt.Errorf("no quotes on board"), "market board")
	}
	result.Quotes = len(quotes)

	applied, err := s.store.ApplyBoard(ctx, result.Date, quotes)
	if err != nil {
		log.WithError(err).Error("❌ failed to store market board")
		return result, err
	}
	result.Created = applied.Created
	result.Updated = applied.Updated
	result.Missing = applied.Missing
	result.FinishedAt = s.now()

	log.WithFields(logger.Fields{
		"quotes":  result.Quotes,
		"created": result.Created,
		"updated": result.Updated,
		"missing": result.Missing,
	}).Info("✅ market price refresh finished")
	return result, nil
}

func validateProduct(p models.Product) error {
	if strings.TrimSpace(p.CommodityName) == "" {
		return apperrors.BadRequest("commodity_name is required")
	}
	prices := []struct {
		field string
		valid bool
		neg   bool
	}{
		{"min_price", p.MinPrice.Valid, p.MinPrice.Decimal.IsNegative()},
		{"max_price", p.MaxPrice.Valid, p.MaxPrice.Decimal.IsNegative()},
		{"avg_price", p.AvgPrice.Valid, p.AvgPrice.Decimal.IsNegative()},
		{"last_price", p.LastPrice.Valid, p.LastPrice.Decimal.IsNegative()},
	}
	for _, price := range prices {
		if price.valid && price.neg {
			return apperrors.BadRequest(price.field + " must not be negative")
		}
	}
	return nil
}

func validateHistory(e models.PriceHistoryEntry) error {
	if strings.TrimSpace(e.ProductName) == "" {
		return apperrors.BadRequest("product_name is required")
	}
	if e.Date.IsZero() {
		return apperrors.BadRequest("date is required")
	}
	if e.MinPrice.IsNegative() || e.MaxPrice.IsNegative() || e.AvgPrice.IsNegative() {
		return apperrors.BadRequest("prices must not be negative")
	}
	return nil
}
