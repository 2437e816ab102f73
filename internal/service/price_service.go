package service

import (
	"context"
	"fmt"

	"github.com/madame-president/normaDB/internal/repository"
)

// HistoricalPriceFetcher fetches the CAD price at a Unix timestamp from
// the external historical price API.
type HistoricalPriceFetcher interface {
	PriceAt(ctx context.Context, timestamp int64) (float64, error)
}

// PriceService handles historical price lookups with durable
// cache-first semantics. Historical prices for a fixed timestamp never
// change, so cached values have no TTL.
type PriceService struct {
	priceRepo *repository.PriceRepository
	fetcher   HistoricalPriceFetcher
}

// NewPriceService creates a new PriceService with the provided repository and fetcher dependencies.
func NewPriceService(priceRepo *repository.PriceRepository, fetcher HistoricalPriceFetcher) *PriceService {
	return &PriceService{
		priceRepo: priceRepo,
		fetcher:   fetcher,
	}
}

// GetOrFetch returns the cached price for blockTime, fetching and
// storing it on a cache miss. The fetcher is never invoked when a
// cached value exists.
//
// On fetch failure nothing is cached; the timestamp remains owed and is
// fetched again on the next run.
func (s *PriceService) GetOrFetch(ctx context.Context, blockTime int64) (float64, error) {
	price, found, err := s.priceRepo.Get(blockTime)
	if err != nil {
		return 0, err
	}
	if found {
		return price, nil
	}

	price, err = s.fetcher.PriceAt(ctx, blockTime)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch price for block time %d: %w", blockTime, err)
	}

	if err := s.priceRepo.Upsert(blockTime, price); err != nil {
		return 0, err
	}

	return price, nil
}
