package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"agrimarket/apperrors"
	"agrimarket/catalog"
	"agrimarket/config"
	"agrimarket/logger"
	"agrimarket/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const userAgent = "agrimarket-dashboard/1.0"

// Client reads and mutates prices on a remote agrimarket backend. It is paced
// by a token bucket so dashboard retries cannot flood the backend.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	limiter *rate.Limiter
	log     *logger.Entry
}

func New(cfg config.UpstreamConfig, log *logger.Log) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		log:     log.WithComponent("upstream"),
	}
}

type errorEnvelope struct {
	Success bool                `json:"success"`
	Error   *apperrors.AppError `json:"error"`
}

func (c *Client) MarketAnalysis(ctx context.Context) (models.MarketAnalysis, error) {
	var out models.MarketAnalysis
	err := c.do(ctx, fiber.MethodGet, "/api/market-analysis", nil, nil, &out)
	return out, err
}

func (c *Client) ListProducts(ctx context.Context, params map[string]string) (models.Page[models.Product], error) {
	var out models.Page[models.Product]
	err := c.do(ctx, fiber.MethodGet, "/api/master-products", params, nil, &out)
	return out, err
}

func (c *Client) ListHistory(ctx context.Context, params map[string]string) (models.Page[models.PriceHistoryEntry], error) {
	var out models.Page[models.PriceHistoryEntry]
	err := c.do(ctx, fiber.MethodGet, "/api/price-history", params, nil, &out)
	return out, err
}

func (c *Client) ProductStats(ctx context.Context) (catalog.ProductSummary, error) {
	var out catalog.ProductSummary
	err := c.do(ctx, fiber.MethodGet, "/api/master-products/stats", nil, nil, &out)
	return out, err
}

func (c *Client) HistoryStats(ctx context.Context) (catalog.HistorySummary, error) {
	var out catalog.HistorySummary
	err := c.do(ctx, fiber.MethodGet, "/api/price-history/stats", nil, nil, &out)
	return out, err
}

func (c *Client) PriceChart(ctx context.Context, product string) ([]models.PriceHistoryEntry, error) {
	var out []models.PriceHistoryEntry
	err := c.do(ctx, fiber.MethodGet, "/api/price-history/chart/"+url.PathEscape(product), nil, nil, &out)
	return out, err
}

func (c *Client) Product(ctx context.Context, id uint) (models.Product, error) {
	var out models.Product
	err := c.do(ctx, fiber.MethodGet, fmt.Sprintf("/api/master-products/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, in models.Product) (models.Product, error) {
	var out models.Product
	err := c.do(ctx, fiber.MethodPut, fmt.Sprintf("/api/master-products/%d", id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.do(ctx, fiber.MethodDelete, fmt.Sprintf("/api/master-products/%d", id), nil, nil, nil)
}

func (c *Client) UpdateHistory(ctx context.Context, id uint, in models.PriceHistoryEntry) (models.PriceHistoryEntry, error) {
	var out models.PriceHistoryEntry
	err := c.do(ctx, fiber.MethodPut, fmt.Sprintf("/api/price-history/%d", id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteHistory(ctx context.Context, id uint) error {
	return c.do(ctx, fiber.MethodDelete, fmt.Sprintf("/api/price-history/%d", id), nil, nil, nil)
}

// RefreshMarketPrices asks the remote backend to scrape today's board. The
// request carries no body.
func (c *Client) RefreshMarketPrices(ctx context.Context) (models.RefreshResult, error) {
	var out models.RefreshResult
	err := c.do(ctx, fiber.MethodPost, "/api/refresh-market-prices", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	agent := newAgent(method, c.baseURL+path)
	agent.Set(fiber.HeaderUserAgent, userAgent)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if len(params) > 0 {
		agent.QueryString(encode(params))
	}
	if body != nil {
		agent.JSON(body)
	}
	agent.Timeout(effectiveTimeout(ctx, c.timeout))

	start := time.Now()
	code, resp, errs := agent.Bytes()
	log := c.log.WithFields(logger.Fields{
		"method":      method,
		"path":        path,
		"status":      code,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if len(errs) > 0 {
		log.WithError(errs[0]).Warn("⚠️ upstream request failed")
		return apperrors.FetchFailure(errs[0], path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if code >= fiber.StatusBadRequest {
		log.Warn("⚠️ upstream returned an error")
		return decodeError(code, resp, path)
	}
	log.Debug("upstream request finished")

	if out == nil || len(resp) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return apperrors.FetchFailure(fmt.Errorf("decode response: %w", err), path)
	}
	return nil
}

// decodeError keeps the remote error kind when the backend sent the standard
// error envelope, so a remote 404 stays a NOT_FOUND here.
func decodeError(code int, body []byte, path string) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil && env.Error.Kind != "" {
		appErr := apperrors.New(env.Error.Kind, env.Error.Message)
		if env.Error.Kind == apperrors.KindInternal {
			appErr.Cause = fmt.Errorf("upstream status %d", code)
		}
		return appErr
	}
	return apperrors.FetchFailure(fmt.Errorf("upstream status %d", code), path)
}

// newAgent returns a parsed agent. Bytes releases it back to fiber's pool.
func newAgent(method, uri string) *fiber.Agent {
	switch method {
	case fiber.MethodPut:
		return fiber.Put(uri)
	case fiber.MethodPost:
		return fiber.Post(uri)
	case fiber.MethodDelete:
		return fiber.Delete(uri)
	default:
		return fiber.Get(uri)
	}
}

func encode(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	return values.Encode()
}

func effectiveTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return remaining
		}
	}
	return timeout
}
