package mempool

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

// Client fetches address transaction history from a mempool.space-style
// chain explorer. It wraps an HTTP client with a per-request timeout
// and a bounded fibonacci retry for transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	retryBase  time.Duration
}

// NewClient creates a new explorer client.
//
// Parameters:
//   - baseURL: explorer base URL without trailing slash
//   - timeout: per-attempt HTTP timeout
//   - maxRetries: number of retries after the first attempt
//   - retryBase: base interval for the fibonacci backoff
func NewClient(baseURL string, timeout time.Duration, maxRetries uint64, retryBase time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		retryBase:  retryBase,
	}
}

// AddressTransactions fetches the full current transaction list for the
// given address.
//
// Transport errors and non-2xx statuses are retried with backoff; an
// unparseable body is a hard failure because retrying cannot fix a
// malformed payload.
func (c *Client) AddressTransactions(ctx context.Context, address string) ([]RawTransaction, error) {
	url := fmt.Sprintf("%s/%s/txs", c.baseURL, address)

	var transactions []RawTransaction
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}

		if resp.StatusCode != http.StatusOK {
			return retry.RetryableError(fmt.Errorf("%w: status %d: %s",
				apperrors.ErrExplorerRequestFailed, resp.StatusCode, data))
		}

		if err := json.Unmarshal(data, &transactions); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrExplorerRequestFailed, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
