package testutil

import (
	"database/sql"
	"testing"

	"github.com/madame-president/normaDB/internal/repository"
	"github.com/madame-president/normaDB/internal/service"
)

// TestFundAddress is the fund address used throughout the test suite.
const TestFundAddress = "bc1qtestfundaddressxxxxxxxxxxxxxxxxxxxxxx"

// NewTestFundService builds a FundService over the given stores with a
// mock live quoter.
func NewTestFundService(t *testing.T, txDB, priceDB *sql.DB, live *MockLiveClient) *service.FundService {
	t.Helper()

	return service.NewFundService(
		repository.NewTransactionRepository(txDB),
		repository.NewPriceRepository(priceDB),
		repository.NewClosingPriceRepository(priceDB),
		live,
	)
}

// NewTestSyncService builds a SyncService over the given stores with
// mock upstream clients.
func NewTestSyncService(t *testing.T, txDB, priceDB *sql.DB, explorer *MockExplorerClient, historical *MockHistoricalClient) *service.SyncService {
	t.Helper()

	priceRepo := repository.NewPriceRepository(priceDB)
	return service.NewSyncService(
		TestFundAddress,
		repository.NewTransactionRepository(txDB),
		priceRepo,
		service.NewPriceService(priceRepo, historical),
		explorer,
	)
}
