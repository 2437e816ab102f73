package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/madame-president/normaDB/internal/apperrors"
	"github.com/madame-president/normaDB/internal/model"
	"github.com/madame-president/normaDB/internal/repository"
)

// LiveQuoter fetches the current spot CAD price used to value current
// holdings.
type LiveQuoter interface {
	Current(ctx context.Context) (float64, error)
}

// yearOneWindowDays is the length of the fixed early-performance
// reporting window, starting at fund inception.
const yearOneWindowDays = 365

// FundService derives read-only views from the transaction ledger and
// price cache: the merged ledger with cumulative series, the live fund
// snapshot, and the Year 1 report. It never mutates the two stores
// beyond appending closing prices.
type FundService struct {
	txRepo      *repository.TransactionRepository
	priceRepo   *repository.PriceRepository
	closingRepo *repository.ClosingPriceRepository
	liveQuoter  LiveQuoter
}

// NewFundService creates a new FundService with the provided repository and client dependencies.
func NewFundService(
	txRepo *repository.TransactionRepository,
	priceRepo *repository.PriceRepository,
	closingRepo *repository.ClosingPriceRepository,
	liveQuoter LiveQuoter,
) *FundService {
	return &FundService{
		txRepo:      txRepo,
		priceRepo:   priceRepo,
		closingRepo: closingRepo,
		liveQuoter:  liveQuoter,
	}
}

// Ledger returns the merged ledger newest-first for display. Cumulative
// fields are computed in ascending block-time order before the result
// is reversed, so they are independent of the display order.
func (s *FundService) Ledger(ctx context.Context) ([]model.LedgerRow, error) {
	rows, err := s.mergedRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	livePrice, err := s.liveQuoter.Current(ctx)
	if err != nil {
		return nil, err
	}
	applyCumulative(rows, livePrice)

	// Newest first for display
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	return rows, nil
}

// Snapshot computes the fund-level aggregate scalars valued at the live
// price. An empty ledger yields zero totals with PnL% guarded to 0.
func (s *FundService) Snapshot(ctx context.Context) (model.FundSnapshot, error) {
	livePrice, err := s.liveQuoter.Current(ctx)
	if err != nil {
		return model.FundSnapshot{}, err
	}

	rows, err := s.mergedRows()
	if err != nil {
		return model.FundSnapshot{}, err
	}

	totalBTC, totalCost, unpriced := sumRows(rows)
	currentValue := totalBTC * livePrice
	pnl := currentValue - totalCost

	snapshot := model.FundSnapshot{
		TotalBTCHeld:        totalBTC,
		TotalCostCAD:        totalCost,
		CurrentFundValueCAD: currentValue,
		LivePriceCAD:        livePrice,
		PnLCAD:              pnl,
		PnLPercent:          percentOf(pnl, totalCost),
		UnpricedCount:       unpriced,
	}

	if len(rows) > 0 {
		inception := time.Unix(rows[0].BlockTime, 0).UTC()
		snapshot.FundInception = inception.Format("2006-01-02")
		snapshot.FundAgeDays = int(time.Now().UTC().Sub(inception).Hours() / 24)
	}

	return snapshot, nil
}

// YearOne computes the fixed 365-day early-performance report using the
// manually recorded closing price for the window instead of a live
// quote.
//
// Returns apperrors.ErrEmptyLedger when inception is undefined, and
// apperrors.ErrClosingPriceNotFound when no closing price has been
// recorded for the window end date.
func (s *FundService) YearOne(_ context.Context) (model.YearOneSnapshot, error) {
	rows, err := s.mergedRows()
	if err != nil {
		return model.YearOneSnapshot{}, err
	}
	if len(rows) == 0 {
		return model.YearOneSnapshot{}, apperrors.ErrEmptyLedger
	}

	inception := time.Unix(rows[0].BlockTime, 0).UTC()
	endDate := inception.AddDate(0, 0, yearOneWindowDays)

	closing, err := s.closingRepo.ForDate(endDate)
	if err != nil {
		return model.YearOneSnapshot{}, err
	}

	var window []model.LedgerRow
	for _, row := range rows {
		if row.BlockTime <= endDate.Unix() {
			window = append(window, row)
		}
	}

	btcHeld, cost, unpriced := sumRows(window)
	closingValue := btcHeld * closing.PriceCAD

	return model.YearOneSnapshot{
		EndDate:            endDate.Format("2006-01-02"),
		ClosingPriceCAD:    closing.PriceCAD,
		BTCHeld:            btcHeld,
		ClosingFundValue:   closingValue,
		ClosingFundCostCAD: cost,
		AnnualReturnPct:    percentOf(closingValue-cost, cost),
		UnpricedCount:      unpriced,
	}, nil
}

// RecordClosingPrice appends a closing price for a reporting window.
func (s *FundService) RecordClosingPrice(windowEnd time.Time, priceCAD float64) (model.ClosingPrice, error) {
	if priceCAD < 0 {
		return model.ClosingPrice{}, apperrors.ErrNegativeAmount
	}

	cp := model.ClosingPrice{
		ID:            uuid.New().String(),
		WindowEndDate: windowEnd.UTC(),
		PriceCAD:      priceCAD,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.closingRepo.Insert(cp); err != nil {
		return model.ClosingPrice{}, err
	}

	return cp, nil
}

// ClosingPrices returns every recorded closing price.
func (s *FundService) ClosingPrices() ([]model.ClosingPrice, error) {
	return s.closingRepo.All()
}

// mergedRows left-joins ledger rows to cached prices on block time and
// returns them sorted ascending. Rows with no cached price keep nil
// PriceCAD/CostCAD rather than a silent zero.
func (s *FundService) mergedRows() ([]model.LedgerRow, error) {
	records, err := s.txRepo.All()
	if err != nil {
		return nil, err
	}

	prices, err := s.priceRepo.All()
	if err != nil {
		return nil, err
	}
	priceByTime := make(map[int64]float64, len(prices))
	for _, price := range prices {
		priceByTime[price.BlockTime] = price.PriceCAD
	}

	rows := make([]model.LedgerRow, 0, len(records))
	for _, record := range records {
		row := model.LedgerRow{
			TxID:        record.TxID,
			BlockHeight: record.BlockHeight,
			BlockTime:   record.BlockTime,
			BTCValue:    record.BTCValue,
		}
		if price, ok := priceByTime[record.BlockTime]; ok {
			cost := record.BTCValue * price
			row.PriceCAD = &price
			row.CostCAD = &cost
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].BlockTime < rows[j].BlockTime })

	return rows, nil
}

// applyCumulative fills the running totals over rows sorted ascending.
// Fund value applies the live price to the cumulative position
// uniformly across history; that is the growth-vs-cost semantics, not a
// per-row historical valuation.
func applyCumulative(rows []model.LedgerRow, livePrice float64) {
	var cumBTC, cumCost float64
	for i := range rows {
		cumBTC += rows[i].BTCValue
		if rows[i].CostCAD != nil {
			cumCost += *rows[i].CostCAD
		}
		rows[i].CumulativeBTC = cumBTC
		rows[i].CumulativeCostCAD = cumCost
		rows[i].FundValueCAD = cumBTC * livePrice
	}
}

// sumRows totals net BTC and cost over the given rows. Unpriced rows
// contribute no cost and are counted separately so callers can surface
// the data-quality gap instead of understating cost silently.
func sumRows(rows []model.LedgerRow) (totalBTC, totalCost float64, unpriced int) {
	for _, row := range rows {
		totalBTC += row.BTCValue
		if row.CostCAD != nil {
			totalCost += *row.CostCAD
		} else {
			unpriced++
		}
	}
	return totalBTC, totalCost, unpriced
}

// percentOf returns part/whole as a percentage, defined as 0 when whole
// is 0. For PnL this is a display convention, not a true 0% return.
func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
