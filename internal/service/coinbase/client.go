// Package coinbase fetches daily candle history from the Coinbase Exchange
// REST API and normalizes it into a clean close-price series.
package coinbase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CoinScope/internal/domain/models"
	xhttp "CoinScope/pkg/http"
	xlogger "CoinScope/pkg/logger"
)

const dayGranularity = 86400

// Client pages backward through the candles endpoint. The API caps each
// request at 300 buckets, so windows are kept at windowDays (200) and
// iterated from now toward the start of the requested range.
type Client struct {
	baseURL        string
	windowDays     int
	rateLimitSleep time.Duration
	pageDelay      time.Duration
	client         *xhttp.Client
	logger         *xlogger.Logger
}

// Option configures the Client.
type Option func(*Client)

// New creates a candle source against the given base URL.
func New(baseURL string, logger *xlogger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		windowDays:     200,
		rateLimitSleep: time.Second,
		pageDelay:      100 * time.Millisecond,
		client:         xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithWindow sets the per-request window size in days.
func WithWindow(days int) Option {
	return func(c *Client) {
		if days > 0 {
			c.windowDays = days
		}
	}
}

// WithDelays sets the 429 backoff and the inter-page delay.
func WithDelays(rateLimitSleep, pageDelay time.Duration) Option {
	return func(c *Client) {
		c.rateLimitSleep = rateLimitSleep
		c.pageDelay = pageDelay
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// rawCandle is the wire format: [time, low, high, open, close, volume].
type rawCandle [6]float64

func (r rawCandle) toCandle() models.Candle {
	return models.Candle{
		Bucket: time.Unix(int64(r[0]), 0).UTC(),
		Low:    r[1],
		High:   r[2],
		Open:   r[3],
		Close:  r[4],
		Volume: r[5],
	}
}

// DailySeries returns up to `days` of daily closes for symbol, ascending by
// date. An unreachable or erroring source yields an empty series; rate-limit
// responses are retried in place after a short sleep.
func (c *Client) DailySeries(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	var all []models.Candle
	currentEnd := end

	for currentEnd.After(start) {
		currentStart := currentEnd.AddDate(0, 0, -c.windowDays)
		if currentStart.Before(start) {
			currentStart = start
		}

		page, err := c.fetchWindow(ctx, symbol, currentStart, currentEnd)
		if err != nil {
			var serr *xhttp.StatusError
			if errors.As(err, &serr) && serr.Code == 429 {
				if c.logger != nil {
					c.logger.Warn("coinbase rate limited, backing off",
						xlogger.String("symbol", symbol))
				}
				if err := sleepCtx(ctx, c.rateLimitSleep); err != nil {
					return models.PriceSeries{}, err
				}
				continue
			}
			if c.logger != nil {
				c.logger.Error("coinbase candle fetch failed",
					xlogger.String("symbol", symbol), xlogger.Error(err))
			}
			break
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)

		currentEnd = currentStart.Add(-time.Second)
		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return models.PriceSeries{}, err
		}
	}

	return FromCandles(all), nil
}

func (c *Client) fetchWindow(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	var raw []rawCandle
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/products/%s/candles", c.baseURL, symbol),
		QueryParams: map[string]string{
			"start":       start.Format(time.RFC3339),
			"end":         end.Format(time.RFC3339),
			"granularity": fmt.Sprintf("%d", dayGranularity),
		},
	}, &raw)
	if err != nil {
		return nil, err
	}

	out := make([]models.Candle, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toCandle())
	}
	return out, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
