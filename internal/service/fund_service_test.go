package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/madame-president/normaDB/internal/apperrors"
	"github.com/madame-president/normaDB/internal/testutil"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFundService_Snapshot(t *testing.T) {
	t.Run("empty ledger yields guarded zeros", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)
		svc := testutil.NewTestFundService(t, txDB, priceDB, testutil.NewMockLiveClient())

		snapshot, err := svc.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if snapshot.TotalCostCAD != 0 {
			t.Errorf("Expected zero cost, got %v", snapshot.TotalCostCAD)
		}
		if snapshot.PnLPercent != 0 {
			t.Errorf("Expected guarded 0 PnL%%, got %v", snapshot.PnLPercent)
		}
		if snapshot.FundInception != "" {
			t.Errorf("Expected empty inception, got %s", snapshot.FundInception)
		}
	})

	t.Run("totals, value, and PnL", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)

		// 1.5 BTC bought at 50,000 -> cost 75,000
		testutil.NewTransaction().WithTxID("t1").WithBlockTime(1700000000).WithBTCValue(1.5).Build(t, txDB)
		testutil.NewPrice().WithBlockTime(1700000000).WithPriceCAD(50000).Build(t, priceDB)

		// 0.5 BTC bought at 60,000 -> cost 30,000
		testutil.NewTransaction().WithTxID("t2").WithBlockTime(1700100000).WithBTCValue(0.5).Build(t, txDB)
		testutil.NewPrice().WithBlockTime(1700100000).WithPriceCAD(60000).Build(t, priceDB)

		live := testutil.NewMockLiveClient().WithPrice(100000)
		svc := testutil.NewTestFundService(t, txDB, priceDB, live)

		snapshot, err := svc.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if !almostEqual(snapshot.TotalBTCHeld, 2.0) {
			t.Errorf("Expected 2.0 BTC held, got %v", snapshot.TotalBTCHeld)
		}
		if !almostEqual(snapshot.TotalCostCAD, 105000) {
			t.Errorf("Expected cost 105000, got %v", snapshot.TotalCostCAD)
		}
		if !almostEqual(snapshot.CurrentFundValueCAD, 200000) {
			t.Errorf("Expected value 200000, got %v", snapshot.CurrentFundValueCAD)
		}
		if !almostEqual(snapshot.PnLCAD, 95000) {
			t.Errorf("Expected PnL 95000, got %v", snapshot.PnLCAD)
		}
		wantPct := 95000.0 / 105000.0 * 100
		if !almostEqual(snapshot.PnLPercent, wantPct) {
			t.Errorf("Expected PnL%% %v, got %v", wantPct, snapshot.PnLPercent)
		}
		if snapshot.FundInception != time.Unix(1700000000, 0).UTC().Format("2006-01-02") {
			t.Errorf("Unexpected inception: %s", snapshot.FundInception)
		}
		if snapshot.UnpricedCount != 0 {
			t.Errorf("Expected no unpriced rows, got %d", snapshot.UnpricedCount)
		}
	})

	t.Run("unpriced rows are counted, not zeroed into cost", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)

		testutil.NewTransaction().WithTxID("t1").WithBlockTime(100).WithBTCValue(1.0).Build(t, txDB)
		testutil.NewPrice().WithBlockTime(100).WithPriceCAD(40000).Build(t, priceDB)

		// No cached price for this row
		testutil.NewTransaction().WithTxID("t2").WithBlockTime(200).WithBTCValue(1.0).Build(t, txDB)

		svc := testutil.NewTestFundService(t, txDB, priceDB, testutil.NewMockLiveClient())

		snapshot, err := svc.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !almostEqual(snapshot.TotalBTCHeld, 2.0) {
			t.Errorf("Expected BTC total to include unpriced rows, got %v", snapshot.TotalBTCHeld)
		}
		if !almostEqual(snapshot.TotalCostCAD, 40000) {
			t.Errorf("Expected cost 40000 from priced rows only, got %v", snapshot.TotalCostCAD)
		}
		if snapshot.UnpricedCount != 1 {
			t.Errorf("Expected 1 unpriced row, got %d", snapshot.UnpricedCount)
		}
	})

	t.Run("live quote failure propagates", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)
		live := testutil.NewMockLiveClient().WithError(errors.New("quote down"))
		svc := testutil.NewTestFundService(t, txDB, priceDB, live)

		if _, err := svc.Snapshot(context.Background()); err == nil {
			t.Fatal("Expected error when live quote fails")
		}
	})
}

func TestFundService_Ledger(t *testing.T) {
	txDB := testutil.SetupTxDB(t)
	priceDB := testutil.SetupPriceDB(t)

	testutil.NewTransaction().WithTxID("t1").WithBlockTime(100).WithBTCValue(1.0).Build(t, txDB)
	testutil.NewPrice().WithBlockTime(100).WithPriceCAD(40000).Build(t, priceDB)
	testutil.NewTransaction().WithTxID("t2").WithBlockTime(200).WithBTCValue(-0.25).Build(t, txDB)
	testutil.NewPrice().WithBlockTime(200).WithPriceCAD(44000).Build(t, priceDB)
	testutil.NewTransaction().WithTxID("t3").WithBlockTime(300).WithBTCValue(0.5).Build(t, txDB)

	live := testutil.NewMockLiveClient().WithPrice(80000)
	svc := testutil.NewTestFundService(t, txDB, priceDB, live)

	rows, err := svc.Ledger(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	// Display order is newest first
	if rows[0].TxID != "t3" || rows[2].TxID != "t1" {
		t.Errorf("Expected newest-first order, got %s..%s", rows[0].TxID, rows[2].TxID)
	}

	// Cumulative columns reflect ascending block-time order regardless
	// of display order: oldest row carries the first delta only.
	oldest, newest := rows[2], rows[0]
	if !almostEqual(oldest.CumulativeBTC, 1.0) {
		t.Errorf("Expected oldest cumulative 1.0, got %v", oldest.CumulativeBTC)
	}
	if !almostEqual(newest.CumulativeBTC, 1.25) {
		t.Errorf("Expected newest cumulative 1.25, got %v", newest.CumulativeBTC)
	}

	// Sum of per-row deltas equals the final cumulative total exactly
	var total float64
	for _, row := range rows {
		total += row.BTCValue
	}
	if !almostEqual(total, newest.CumulativeBTC) {
		t.Errorf("Deltas sum %v != cumulative total %v", total, newest.CumulativeBTC)
	}

	// Fund value applies the live price to the cumulative position
	if !almostEqual(newest.FundValueCAD, 1.25*80000) {
		t.Errorf("Expected fund value %v, got %v", 1.25*80000, newest.FundValueCAD)
	}

	// Unpriced row keeps nil cost and contributes nothing to cumulative cost
	if newest.CostCAD != nil {
		t.Error("Expected nil cost on unpriced row")
	}
	wantCumCost := 1.0*40000 + (-0.25)*44000
	if !almostEqual(newest.CumulativeCostCAD, wantCumCost) {
		t.Errorf("Expected cumulative cost %v, got %v", wantCumCost, newest.CumulativeCostCAD)
	}
}

func TestFundService_YearOne(t *testing.T) {
	t0 := time.Date(2023, 11, 14, 12, 0, 0, 0, time.UTC)

	t.Run("window includes rows within 365 days of inception", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)

		inWindow1 := t0.Unix()
		inWindow2 := t0.AddDate(0, 0, 30).Unix()
		outOfWindow := t0.AddDate(0, 0, 400).Unix()

		testutil.NewTransaction().WithTxID("t1").WithBlockTime(inWindow1).WithBTCValue(1.0).Build(t, txDB)
		testutil.NewPrice().WithBlockTime(inWindow1).WithPriceCAD(40000).Build(t, priceDB)
		testutil.NewTransaction().WithTxID("t2").WithBlockTime(inWindow2).WithBTCValue(0.5).Build(t, txDB)
		testutil.NewPrice().WithBlockTime(inWindow2).WithPriceCAD(50000).Build(t, priceDB)
		testutil.NewTransaction().WithTxID("t3").WithBlockTime(outOfWindow).WithBTCValue(2.0).Build(t, txDB)
		testutil.NewPrice().WithBlockTime(outOfWindow).WithPriceCAD(90000).Build(t, priceDB)

		endDate := time.Unix(inWindow1, 0).UTC().AddDate(0, 0, 365)
		testutil.NewClosingPrice().
			WithWindowEndDate(time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC)).
			WithPriceCAD(120548).
			Build(t, priceDB)

		svc := testutil.NewTestFundService(t, txDB, priceDB, testutil.NewMockLiveClient())

		report, err := svc.YearOne(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if !almostEqual(report.BTCHeld, 1.5) {
			t.Errorf("Expected 1.5 BTC in window, got %v", report.BTCHeld)
		}
		wantCost := 1.0*40000 + 0.5*50000
		if !almostEqual(report.ClosingFundCostCAD, wantCost) {
			t.Errorf("Expected window cost %v, got %v", wantCost, report.ClosingFundCostCAD)
		}
		wantValue := 1.5 * 120548
		if !almostEqual(report.ClosingFundValue, wantValue) {
			t.Errorf("Expected closing value %v, got %v", wantValue, report.ClosingFundValue)
		}
		wantReturn := (wantValue - wantCost) / wantCost * 100
		if !almostEqual(report.AnnualReturnPct, wantReturn) {
			t.Errorf("Expected annual return %v, got %v", wantReturn, report.AnnualReturnPct)
		}
		if report.ClosingPriceCAD != 120548 {
			t.Errorf("Expected closing price 120548, got %v", report.ClosingPriceCAD)
		}
	})

	t.Run("empty ledger has no inception", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)
		svc := testutil.NewTestFundService(t, txDB, priceDB, testutil.NewMockLiveClient())

		_, err := svc.YearOne(context.Background())
		if !errors.Is(err, apperrors.ErrEmptyLedger) {
			t.Errorf("Expected ErrEmptyLedger, got %v", err)
		}
	})

	t.Run("missing closing price fails loudly", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)

		testutil.NewTransaction().WithBlockTime(t0.Unix()).Build(t, txDB)

		svc := testutil.NewTestFundService(t, txDB, priceDB, testutil.NewMockLiveClient())

		_, err := svc.YearOne(context.Background())
		if !errors.Is(err, apperrors.ErrClosingPriceNotFound) {
			t.Errorf("Expected ErrClosingPriceNotFound, got %v", err)
		}
	})
}

func TestFundService_RecordClosingPrice(t *testing.T) {
	t.Run("rejects negative price", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)
		svc := testutil.NewTestFundService(t, txDB, priceDB, testutil.NewMockLiveClient())

		_, err := svc.RecordClosingPrice(time.Now().UTC(), -1)
		if !errors.Is(err, apperrors.ErrNegativeAmount) {
			t.Errorf("Expected ErrNegativeAmount, got %v", err)
		}
	})

	t.Run("records and lists", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)
		svc := testutil.NewTestFundService(t, txDB, priceDB, testutil.NewMockLiveClient())

		windowEnd := time.Date(2024, 11, 14, 0, 0, 0, 0, time.UTC)
		cp, err := svc.RecordClosingPrice(windowEnd, 120548)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cp.ID == "" {
			t.Error("Expected generated id")
		}

		all, err := svc.ClosingPrices()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(all) != 1 || all[0].PriceCAD != 120548 {
			t.Errorf("Unexpected closing prices: %+v", all)
		}

		// Append-only: same window again conflicts
		_, err = svc.RecordClosingPrice(windowEnd, 999)
		if !errors.Is(err, apperrors.ErrDuplicateClosingPrice) {
			t.Errorf("Expected ErrDuplicateClosingPrice, got %v", err)
		}
	})
}
