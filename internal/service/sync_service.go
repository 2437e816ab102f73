package service

import (
	"context"
	"fmt"

	"github.com/madame-president/normaDB/internal/ledger"
	"github.com/madame-president/normaDB/internal/mempool"
	"github.com/madame-president/normaDB/internal/model"
	"github.com/madame-president/normaDB/internal/repository"
)

// TransactionFetcher fetches the full current transaction list for an
// address from the external chain explorer.
type TransactionFetcher interface {
	AddressTransactions(ctx context.Context, address string) ([]mempool.RawTransaction, error)
}

// SyncService orchestrates the two ingestion pipelines: transaction
// sync and price sync. Both are idempotent and safe to re-run
// arbitrarily often; a failed run leaves prior progress persisted and
// is repaired by the next run.
type SyncService struct {
	fundAddress  string
	txRepo       *repository.TransactionRepository
	priceRepo    *repository.PriceRepository
	priceService *PriceService
	fetcher      TransactionFetcher
}

// NewSyncService creates a new SyncService with the provided repository, service, and client dependencies.
func NewSyncService(
	fundAddress string,
	txRepo *repository.TransactionRepository,
	priceRepo *repository.PriceRepository,
	priceService *PriceService,
	fetcher TransactionFetcher,
) *SyncService {
	return &SyncService{
		fundAddress:  fundAddress,
		txRepo:       txRepo,
		priceRepo:    priceRepo,
		priceService: priceService,
		fetcher:      fetcher,
	}
}

// SyncResult reports what one full pipeline run did.
type SyncResult struct {
	NewTransactions int `json:"new_transactions"`
	TotalLedger     int `json:"total_ledger"`
	TotalPrices     int `json:"total_prices"`
}

// SyncTransactions fetches the fund address's transaction list, filters
// out already-known txids, parses the remainder into net value records,
// appends them to the ledger, and returns the full ledger contents.
//
// An explorer failure aborts the run; the re-filter by known ids makes
// the pipeline at-least-once safe across partial runs.
func (s *SyncService) SyncTransactions(ctx context.Context) ([]model.TransactionRecord, int, error) {
	known, err := s.txRepo.KnownIDs()
	if err != nil {
		return nil, 0, err
	}

	raw, err := s.fetcher.AddressTransactions(ctx, s.fundAddress)
	if err != nil {
		return nil, 0, fmt.Errorf("transaction sync failed: %w", err)
	}

	fresh := make([]mempool.RawTransaction, 0, len(raw))
	for _, tx := range raw {
		if _, seen := known[tx.TxID]; !seen {
			fresh = append(fresh, tx)
		}
	}

	parsed := ledger.ParseAll(fresh, s.fundAddress)
	if err := s.txRepo.InsertBatch(parsed); err != nil {
		return nil, 0, err
	}

	records, err := s.txRepo.All()
	if err != nil {
		return nil, 0, err
	}

	return records, len(parsed), nil
}

// SyncPrices ensures a cached price exists for every distinct block
// time in the ledger, then returns the full price store contents.
//
// The first failed fetch aborts the run; prices cached so far stay
// cached, so the next run only owes the remainder.
func (s *SyncService) SyncPrices(ctx context.Context) ([]model.PriceRecord, error) {
	records, err := s.txRepo.All()
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(records))
	for _, record := range records {
		if _, done := seen[record.BlockTime]; done {
			continue
		}
		seen[record.BlockTime] = struct{}{}

		if _, err := s.priceService.GetOrFetch(ctx, record.BlockTime); err != nil {
			return nil, fmt.Errorf("price sync failed: %w", err)
		}
	}

	return s.priceRepo.All()
}

// Run executes the full pipeline in order: transaction sync, then price
// sync, so prices exist for all known transactions.
func (s *SyncService) Run(ctx context.Context) (SyncResult, error) {
	records, inserted, err := s.SyncTransactions(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	prices, err := s.SyncPrices(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	return SyncResult{
		NewTransactions: inserted,
		TotalLedger:     len(records),
		TotalPrices:     len(prices),
	}, nil
}
