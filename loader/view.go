package loader

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"sync"
	"time"

	"agrimarket/apperrors"
	"agrimarket/catalog"
	"agrimarket/forecast"
	"agrimarket/logger"
	"agrimarket/models"

	"golang.org/x/sync/errgroup"
)

// Source is the price backend behind a View: the local service or a remote
// agrimarket backend.
type Source interface {
	MarketAnalysis(ctx context.Context) (models.MarketAnalysis, error)
	ListProducts(ctx context.Context, params map[string]string) (models.Page[models.Product], error)
	ListHistory(ctx context.Context, params map[string]string) (models.Page[models.PriceHistoryEntry], error)
	UpdateProduct(ctx context.Context, id uint, in models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	UpdateHistory(ctx context.Context, id uint, in models.PriceHistoryEntry) (models.PriceHistoryEntry, error)
	DeleteHistory(ctx context.Context, id uint) error
	RefreshMarketPrices(ctx context.Context) (models.RefreshResult, error)
}

type Options struct {
	Debounce time.Duration
	PageSize int
	MaxPages int
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = 500 * time.Millisecond
	}
	if o.PageSize < 1 {
		o.PageSize = 100
	}
	if o.MaxPages < 1 {
		o.MaxPages = 50
	}
	return o
}

// Selection is the crop and growth stage chosen on the page.
type Selection struct {
	Crop        models.CropID
	GrowthStage string
}

// View owns the market, product and history pipelines of one dashboard.
// Each pipeline loads and fails on its own.
type View struct {
	src    Source
	engine *forecast.Engine
	opts   Options
	log    *logger.Entry

	ctx    context.Context
	cancel context.CancelFunc

	market   *Pipeline[models.MarketAnalysis]
	products *Pipeline[[]models.Product]
	history  *Pipeline[[]models.PriceHistoryEntry]

	productDebounce *Debouncer
	historyDebounce *Debouncer

	mu              sync.Mutex
	selection       Selection
	productParams   map[string]string
	historyParams   map[string]string
	pendingProducts map[string]string
	pendingHistory  map[string]string
	productCriteria catalog.ProductCriteria
	historyCriteria catalog.HistoryCriteria
}

func NewView(ctx context.Context, src Source, engine *forecast.Engine, opts Options, log *logger.Log) *View {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	return &View{
		src:             src,
		engine:          engine,
		opts:            opts,
		log:             log.WithComponent("loader"),
		ctx:             ctx,
		cancel:          cancel,
		market:          NewPipeline("market", models.MarketAnalysis{Changes: []models.CommodityPrice{}}, log),
		products:        NewPipeline("products", []models.Product{}, log),
		history:         NewPipeline("history", []models.PriceHistoryEntry{}, log),
		productDebounce: NewDebouncer(opts.Debounce),
		historyDebounce: NewDebouncer(opts.Debounce),
		productParams:   map[string]string{},
		historyParams:   map[string]string{},
	}
}

// LoadAll starts all three pipelines and waits for them to settle. It
// returns the first failure; the other pipelines are not affected by it.
func (v *View) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return v.RetryMarket(ctx) })
	g.Go(func() error { return v.RetryProducts(ctx) })
	g.Go(func() error { return v.RetryHistory(ctx) })
	return g.Wait()
}

func (v *View) RetryMarket(ctx context.Context) error {
	return v.market.Run(ctx, v.src.MarketAnalysis)
}

func (v *View) RetryProducts(ctx context.Context) error {
	params := v.activeProductParams()
	return v.products.Run(ctx, func(ctx context.Context) ([]models.Product, error) {
		return collect(ctx, v.src.ListProducts, params, v.opts.PageSize, v.opts.MaxPages)
	})
}

func (v *View) RetryHistory(ctx context.Context) error {
	params := v.activeHistoryParams()
	return v.history.Run(ctx, func(ctx context.Context) ([]models.PriceHistoryEntry, error) {
		return collect(ctx, v.src.ListHistory, params, v.opts.PageSize, v.opts.MaxPages)
	})
}

// RetryPipeline retries one pipeline by name.
func (v *View) RetryPipeline(ctx context.Context, name string) error {
	switch name {
	case v.market.Name():
		return v.RetryMarket(ctx)
	case v.products.Name():
		return v.RetryProducts(ctx)
	case v.history.Name():
		return v.RetryHistory(ctx)
	}
	return apperrors.NotFound(fmt.Sprintf("unknown pipeline %q", name))
}

// RetryFailed retries every pipeline whose error slot is set and leaves
// healthy ones alone. A retry that fails again keeps its notice.
func (v *View) RetryFailed(ctx context.Context) error {
	var g errgroup.Group
	if v.market.Snapshot().Err != nil {
		g.Go(func() error { return v.RetryMarket(ctx) })
	}
	if v.products.Snapshot().Err != nil {
		g.Go(func() error { return v.RetryProducts(ctx) })
	}
	if v.history.Snapshot().Err != nil {
		g.Go(func() error { return v.RetryHistory(ctx) })
	}
	return g.Wait()
}

// SetProductParams records new product filter input and refetches once the
// input has settled for the debounce delay.
func (v *View) SetProductParams(params map[string]string) {
	v.mu.Lock()
	v.pendingProducts = maps.Clone(params)
	v.mu.Unlock()
	v.productDebounce.Schedule(func() {
		v.commitProducts()
		v.background(v.RetryProducts)
	})
}

func (v *View) SetHistoryParams(params map[string]string) {
	v.mu.Lock()
	v.pendingHistory = maps.Clone(params)
	v.mu.Unlock()
	v.historyDebounce.Schedule(func() {
		v.commitHistory()
		v.background(v.RetryHistory)
	})
}

// ApplyFilters commits pending filter input without waiting for the
// debounce and refetches both catalogs.
func (v *View) ApplyFilters(ctx context.Context) error {
	v.productDebounce.Cancel()
	v.historyDebounce.Cancel()
	v.commitProducts()
	v.commitHistory()

	var g errgroup.Group
	g.Go(func() error { return v.RetryProducts(ctx) })
	g.Go(func() error { return v.RetryHistory(ctx) })
	return g.Wait()
}

func (v *View) commitProducts() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pendingProducts == nil {
		return
	}
	v.productParams = v.pendingProducts
	v.productCriteria = catalog.ParseProductCriteria(v.productParams)
	v.pendingProducts = nil
}

func (v *View) commitHistory() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pendingHistory == nil {
		return
	}
	v.historyParams = v.pendingHistory
	v.historyCriteria = catalog.ParseHistoryCriteria(v.historyParams)
	v.pendingHistory = nil
}

func (v *View) background(run func(context.Context) error) {
	if v.ctx.Err() != nil {
		return
	}
	if err := run(v.ctx); err != nil && v.ctx.Err() == nil {
		v.log.WithError(err).Debug("debounced refetch failed")
	}
}

func (v *View) activeProductParams() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return maps.Clone(v.productParams)
}

func (v *View) activeHistoryParams() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return maps.Clone(v.historyParams)
}

// Select sets the crop and growth stage. Only crops from the forecast
// tables can be selected.
func (v *View) Select(crop models.CropID, growthStage string) error {
	if !v.engine.Tables().Selectable(crop) {
		return apperrors.NotFound(fmt.Sprintf("unknown crop %q", crop))
	}
	v.mu.Lock()
	v.selection = Selection{Crop: crop, GrowthStage: growthStage}
	v.mu.Unlock()
	return nil
}

func (v *View) Selection() Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection
}

// Reconciled merges the selected crop's forecast with the latest market
// data held by the view. A failed market pipeline falls back to whatever it
// last loaded, which may be nothing.
func (v *View) Reconciled() (models.ReconciledView, error) {
	sel := v.Selection()
	if sel.Crop == "" {
		return models.ReconciledView{}, apperrors.BadRequest("no crop selected")
	}
	return v.Forecast(sel.Crop, sel.GrowthStage)
}

// Forecast reconciles crop against the held market data without changing
// the selection.
func (v *View) Forecast(crop models.CropID, growthStage string) (models.ReconciledView, error) {
	market := v.market.Snapshot()
	view, err := v.engine.Reconcile(crop, market.Data.Changes)
	if err != nil {
		v.log.WithError(err).WithField("crop", crop).Error("❌ forecast unavailable")
		return models.ReconciledView{}, err
	}
	view.GrowthStage = growthStage
	return view, nil
}

func (v *View) Market() Snapshot[models.MarketAnalysis] {
	return v.market.Snapshot()
}

// Products returns the loaded products with the committed criteria applied.
func (v *View) Products() []models.Product {
	v.mu.Lock()
	criteria := v.productCriteria
	v.mu.Unlock()
	return catalog.Products(v.products.Snapshot().Data, criteria)
}

func (v *View) History() []models.PriceHistoryEntry {
	v.mu.Lock()
	criteria := v.historyCriteria
	v.mu.Unlock()
	return catalog.History(v.history.Snapshot().Data, criteria)
}

// ProductSummary counts over the loaded products before the committed
// criteria are applied locally. The load itself already used the committed
// params, so a filtered catalog gives filtered counts.
func (v *View) ProductSummary() catalog.ProductSummary {
	return catalog.SummarizeProducts(v.products.Snapshot().Data)
}

func (v *View) HistorySummary() catalog.HistorySummary {
	return catalog.SummarizeHistory(v.history.Snapshot().Data)
}

// Status reports the loading flag and error slot of each pipeline.
type Status struct {
	Pipeline string    `json:"pipeline"`
	Loading  bool      `json:"loading"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (v *View) Status() []Status {
	return []Status{
		status(v.market.Name(), v.market.Snapshot()),
		status(v.products.Name(), v.products.Snapshot()),
		status(v.history.Name(), v.history.Snapshot()),
	}
}

func status[T any](name string, s Snapshot[T]) Status {
	st := Status{Pipeline: name, Loading: s.Loading, LoadedAt: s.LoadedAt}
	if s.Err != nil {
		st.Error = s.Err.Error()
	}
	return st
}

// Notices lists the error slots that are currently set.
func (v *View) Notices() []error {
	var notices []error
	for _, err := range []error{v.market.Snapshot().Err, v.products.Snapshot().Err, v.history.Snapshot().Err} {
		if err != nil {
			notices = append(notices, err)
		}
	}
	return notices
}

// UpdateProduct saves the product and replaces only that row locally.
func (v *View) UpdateProduct(ctx context.Context, id uint, in models.Product) (models.Product, error) {
	updated, err := v.src.UpdateProduct(ctx, id, in)
	if err != nil {
		return models.Product{}, err
	}
	v.products.Update(func(items []models.Product) []models.Product {
		return replaceRow(items, updated, func(p models.Product) bool { return p.ID == id })
	})
	return updated, nil
}

func (v *View) DeleteProduct(ctx context.Context, id uint) error {
	if err := v.src.DeleteProduct(ctx, id); err != nil {
		return err
	}
	v.products.Update(func(items []models.Product) []models.Product {
		return removeRow(items, func(p models.Product) bool { return p.ID == id })
	})
	return nil
}

func (v *View) UpdateHistory(ctx context.Context, id uint, in models.PriceHistoryEntry) (models.PriceHistoryEntry, error) {
	updated, err := v.src.UpdateHistory(ctx, id, in)
	if err != nil {
		return models.PriceHistoryEntry{}, err
	}
	v.history.Update(func(items []models.PriceHistoryEntry) []models.PriceHistoryEntry {
		return replaceRow(items, updated, func(h models.PriceHistoryEntry) bool { return h.ID == id })
	})
	v.reloadMarket(ctx)
	return updated, nil
}

func (v *View) DeleteHistory(ctx context.Context, id uint) error {
	if err := v.src.DeleteHistory(ctx, id); err != nil {
		return err
	}
	v.history.Update(func(items []models.PriceHistoryEntry) []models.PriceHistoryEntry {
		return removeRow(items, func(h models.PriceHistoryEntry) bool { return h.ID == id })
	})
	v.reloadMarket(ctx)
	return nil
}

// reloadMarket refetches the market analysis, which is derived from
// history. A failure only sets the notice.
func (v *View) reloadMarket(ctx context.Context) {
	if err := v.RetryMarket(ctx); err != nil {
		v.log.WithError(err).Warn("⚠️ market reload after history edit failed")
	}
}

// TriggerRefresh asks the backend to refresh market prices, then reloads
// every pipeline. Reload failures land in the pipelines' error slots.
func (v *View) TriggerRefresh(ctx context.Context) (models.RefreshResult, error) {
	result, err := v.src.RefreshMarketPrices(ctx)
	if err != nil {
		return result, err
	}
	if err := v.LoadAll(ctx); err != nil {
		v.log.WithError(err).Warn("⚠️ reload after refresh incomplete")
	}
	return result, nil
}

// Close stops pending debounced fetches and discards anything still in
// flight.
func (v *View) Close() {
	v.productDebounce.Stop()
	v.historyDebounce.Stop()
	v.market.Close()
	v.products.Close()
	v.history.Close()
	v.cancel()
}

// collect walks the pages of a list endpoint until count is reached, an
// empty page comes back, or maxPages is hit.
func collect[T any](ctx context.Context, list func(context.Context, map[string]string) (models.Page[T], error), params map[string]string, size, maxPages int) ([]T, error) {
	out := []T{}
	for page := 1; page <= maxPages; page++ {
		query := maps.Clone(params)
		if query == nil {
			query = map[string]string{}
		}
		query[catalog.ParamPage] = strconv.Itoa(page)
		query[catalog.ParamPageSize] = strconv.Itoa(size)

		p, err := list(ctx, query)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Results...)
		if len(p.Results) == 0 || len(out) >= p.Count {
			break
		}
	}
	return out, nil
}

// replaceRow returns a copy of items with the matching row swapped out, so
// snapshots taken earlier stay untouched.
func replaceRow[T any](items []T, row T, match func(T) bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		if match(out[i]) {
			out[i] = row
		}
	}
	return out
}

func removeRow[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !match(item) {
			out = append(out, item)
		}
	}
	return out
}
