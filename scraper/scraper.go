package scraper

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"agrimarket/logger"
	"agrimarket/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const userAgent = "agrimarket-board-scraper/1.0"

// Scraper downloads and parses the daily market price board.
type Scraper struct {
	url     string
	timeout time.Duration
	limiter *rate.Limiter
	log     *logger.Entry
}

func New(url string, timeout time.Duration, log *logger.Log) *Scraper {
	return &Scraper{
		url:     url,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 1),
		log:     log.WithComponent("scraper"),
	}
}

// Fetch downloads the board and returns its rows.
func (s *Scraper) Fetch(ctx context.Context) ([]models.Quote, error) {
	if s.url == "" {
		return nil, fmt.Errorf("market board url is not configured")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	agent := fiber.Get(s.url)
	agent.Set(fiber.HeaderUserAgent, userAgent)
	agent.Timeout(effectiveTimeout(ctx, s.timeout))

	start := time.Now()
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("fetching board: %w", errs[0])
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("board returned status %d", code)
	}

	rows, err := ParseBoard(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logger.Fields{
		"rows":        len(rows),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("📥 market board scraped")
	return rows, nil
}

// effectiveTimeout shortens timeout to the context deadline, if earlier.
func effectiveTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return remaining
		}
	}
	return timeout
}
