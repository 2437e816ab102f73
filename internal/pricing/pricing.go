// Package pricing provides clients for the historical and live CAD
// price APIs. Both share the same timeout and bounded-retry discipline
// as the chain explorer client.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/madame-president/normaDB/internal/apperrors"
)

// historicalResponse is the raw payload of the historical price API.
type historicalResponse struct {
	Prices []map[string]float64 `json:"prices"`
}

// liveResponse is the raw payload of the live price API.
type liveResponse struct {
	CAD *float64 `json:"CAD"`
}

// HistoricalClient fetches the CAD price at a specific Unix timestamp.
type HistoricalClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	retryBase  time.Duration
}

// NewHistoricalClient creates a new historical price client.
func NewHistoricalClient(baseURL string, timeout time.Duration, maxRetries uint64, retryBase time.Duration) *HistoricalClient {
	return &HistoricalClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		retryBase:  retryBase,
	}
}

// PriceAt returns the CAD price at the given Unix timestamp.
//
// Non-2xx statuses and transport errors are retried with backoff. A
// payload without prices[0].CAD is a hard failure
// (apperrors.ErrHistoricalPriceMalformed).
func (c *HistoricalClient) PriceAt(ctx context.Context, timestamp int64) (float64, error) {
	url := fmt.Sprintf("%s?currency=CAD&timestamp=%d", c.baseURL, timestamp)

	var price float64
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		data, err := get(ctx, c.httpClient, url, apperrors.ErrHistoricalPriceRequestFailed)
		if err != nil {
			return err
		}

		var payload historicalResponse
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrHistoricalPriceMalformed, err)
		}

		if len(payload.Prices) == 0 {
			return fmt.Errorf("%w: empty prices array", apperrors.ErrHistoricalPriceMalformed)
		}
		value, ok := payload.Prices[0]["CAD"]
		if !ok {
			return fmt.Errorf("%w: missing CAD field", apperrors.ErrHistoricalPriceMalformed)
		}

		price = value
		return nil
	})
	if err != nil {
		return 0, err
	}

	return price, nil
}

// LiveClient fetches the current spot CAD price.
type LiveClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	retryBase  time.Duration
}

// NewLiveClient creates a new live price client.
func NewLiveClient(baseURL string, timeout time.Duration, maxRetries uint64, retryBase time.Duration) *LiveClient {
	return &LiveClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		retryBase:  retryBase,
	}
}

// Current returns the live CAD price.
func (c *LiveClient) Current(ctx context.Context) (float64, error) {
	var price float64
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		data, err := get(ctx, c.httpClient, c.baseURL, apperrors.ErrLivePriceRequestFailed)
		if err != nil {
			return err
		}

		var payload liveResponse
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrLivePriceRequestFailed, err)
		}
		if payload.CAD == nil {
			return fmt.Errorf("%w: missing CAD field", apperrors.ErrLivePriceRequestFailed)
		}

		price = *payload.CAD
		return nil
	})
	if err != nil {
		return 0, err
	}

	return price, nil
}

// get executes one GET attempt and returns the body. Transport errors
// and non-2xx statuses come back as retryable.
func get(ctx context.Context, client *http.Client, url string, statusErr error) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, retry.RetryableError(fmt.Errorf("%w: status %d: %s", statusErr, resp.StatusCode, data))
	}

	return data, nil
}
