package testutil

import (
	"context"

	"github.com/madame-president/normaDB/internal/mempool"
)

// MockExplorerClient is a mock implementation of the chain explorer
// client for testing. It returns predefined transactions instead of
// making actual API calls.
type MockExplorerClient struct {
	// Transactions is the list to return from AddressTransactions
	Transactions []mempool.RawTransaction
	// Err is the error to return from AddressTransactions
	Err error
	// CallCount tracks how many times AddressTransactions was called
	CallCount int
}

// NewMockExplorerClient creates a mock explorer with no transactions.
func NewMockExplorerClient() *MockExplorerClient {
	return &MockExplorerClient{}
}

// AddressTransactions returns the configured transactions or error.
func (m *MockExplorerClient) AddressTransactions(_ context.Context, _ string) ([]mempool.RawTransaction, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Transactions, nil
}

// WithTransactions configures the mock to return the given transactions.
func (m *MockExplorerClient) WithTransactions(txs []mempool.RawTransaction) *MockExplorerClient {
	m.Transactions = txs
	return m
}

// WithError configures the mock to return the specified error.
func (m *MockExplorerClient) WithError(err error) *MockExplorerClient {
	m.Err = err
	return m
}

// MockHistoricalClient is a mock implementation of the historical price
// fetcher. It tracks fetch counts so tests can assert cache-first
// behaviour.
type MockHistoricalClient struct {
	// Prices maps timestamps to prices; Fallback is used for timestamps
	// not in the map
	Prices map[int64]float64
	// Fallback is the price returned when no mapping exists
	Fallback float64
	// Err is the error to return from PriceAt
	Err error
	// FetchCount tracks how many times PriceAt was called
	FetchCount int
}

// NewMockHistoricalClient creates a mock historical price fetcher with
// a flat default price.
func NewMockHistoricalClient() *MockHistoricalClient {
	return &MockHistoricalClient{
		Prices:   map[int64]float64{},
		Fallback: 50000,
	}
}

// PriceAt returns the configured price or error for the timestamp.
func (m *MockHistoricalClient) PriceAt(_ context.Context, timestamp int64) (float64, error) {
	m.FetchCount++
	if m.Err != nil {
		return 0, m.Err
	}
	if price, ok := m.Prices[timestamp]; ok {
		return price, nil
	}
	return m.Fallback, nil
}

// WithPrice configures the mock price for a specific timestamp.
func (m *MockHistoricalClient) WithPrice(timestamp int64, price float64) *MockHistoricalClient {
	m.Prices[timestamp] = price
	return m
}

// WithError configures the mock to return the specified error.
func (m *MockHistoricalClient) WithError(err error) *MockHistoricalClient {
	m.Err = err
	return m
}

// MockLiveClient is a mock implementation of the live price quoter.
type MockLiveClient struct {
	// Price is the live price to return from Current
	Price float64
	// Err is the error to return from Current
	Err error
	// CallCount tracks how many times Current was called
	CallCount int
}

// NewMockLiveClient creates a mock live quoter with a default price.
func NewMockLiveClient() *MockLiveClient {
	return &MockLiveClient{Price: 100000}
}

// Current returns the configured live price or error.
func (m *MockLiveClient) Current(_ context.Context) (float64, error) {
	m.CallCount++
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

// WithPrice configures the live price to return.
func (m *MockLiveClient) WithPrice(price float64) *MockLiveClient {
	m.Price = price
	return m
}

// WithError configures the mock to return the specified error.
func (m *MockLiveClient) WithError(err error) *MockLiveClient {
	m.Err = err
	return m
}
