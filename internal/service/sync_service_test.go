package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/madame-president/normaDB/internal/mempool"
	"github.com/madame-president/normaDB/internal/repository"
	"github.com/madame-president/normaDB/internal/testutil"
)

func rawDeposit(txid string, height, blockTime, sats int64) mempool.RawTransaction {
	return mempool.RawTransaction{
		TxID:   txid,
		Status: mempool.TxStatus{Confirmed: true, BlockHeight: height, BlockTime: blockTime},
		Vout: []mempool.TxVout{
			{ScriptpubkeyAddress: testutil.TestFundAddress, Value: sats},
		},
	}
}

func TestSyncService_SyncTransactions(t *testing.T) {
	t.Run("ingests new confirmed transactions", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)
		explorer := testutil.NewMockExplorerClient().WithTransactions([]mempool.RawTransaction{
			rawDeposit("tx1", 1, 100, 150000000),
			rawDeposit("tx2", 2, 200, 50000000),
			{TxID: "tx3"}, // unconfirmed, skipped by the parser
		})
		svc := testutil.NewTestSyncService(t, txDB, priceDB, explorer, testutil.NewMockHistoricalClient())

		records, inserted, err := svc.SyncTransactions(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if inserted != 2 {
			t.Errorf("Expected 2 inserted, got %d", inserted)
		}
		if len(records) != 2 {
			t.Errorf("Expected 2 ledger rows, got %d", len(records))
		}
	})

	t.Run("re-run with no new upstream data changes nothing", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)
		explorer := testutil.NewMockExplorerClient().WithTransactions([]mempool.RawTransaction{
			rawDeposit("tx1", 1, 100, 150000000),
		})
		historical := testutil.NewMockHistoricalClient()
		svc := testutil.NewTestSyncService(t, txDB, priceDB, explorer, historical)

		first, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		txRepo := repository.NewTransactionRepository(txDB)
		priceRepo := repository.NewPriceRepository(priceDB)
		ledgerBefore, _ := txRepo.All()
		pricesBefore, _ := priceRepo.All()

		second, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if second.NewTransactions != 0 {
			t.Errorf("Expected 0 new transactions on re-run, got %d", second.NewTransactions)
		}
		if second.TotalLedger != first.TotalLedger || second.TotalPrices != first.TotalPrices {
			t.Errorf("Re-run changed totals: first=%+v second=%+v", first, second)
		}

		ledgerAfter, _ := txRepo.All()
		pricesAfter, _ := priceRepo.All()
		if !reflect.DeepEqual(ledgerBefore, ledgerAfter) {
			t.Error("Ledger changed on idempotent re-run")
		}
		if !reflect.DeepEqual(pricesBefore, pricesAfter) {
			t.Error("Price store changed on idempotent re-run")
		}
		if historical.FetchCount != 1 {
			t.Errorf("Expected 1 historical fetch across both runs, got %d", historical.FetchCount)
		}
	})

	t.Run("explorer failure aborts but keeps prior progress", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)
		explorer := testutil.NewMockExplorerClient().WithTransactions([]mempool.RawTransaction{
			rawDeposit("tx1", 1, 100, 150000000),
		})
		svc := testutil.NewTestSyncService(t, txDB, priceDB, explorer, testutil.NewMockHistoricalClient())

		if _, _, err := svc.SyncTransactions(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		explorer.Err = errors.New("explorer down")
		if _, _, err := svc.SyncTransactions(context.Background()); err == nil {
			t.Fatal("Expected error when explorer fails")
		}

		records, err := repository.NewTransactionRepository(txDB).All()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("Expected prior progress to survive, got %d records", len(records))
		}
	})
}

func TestSyncService_SyncPrices(t *testing.T) {
	t.Run("fetches one price per distinct block time", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)

		// Two records sharing a block time, one distinct
		testutil.NewTransaction().WithBlockTime(100).Build(t, txDB)
		testutil.NewTransaction().WithBlockTime(100).Build(t, txDB)
		testutil.NewTransaction().WithBlockTime(200).Build(t, txDB)

		historical := testutil.NewMockHistoricalClient()
		svc := testutil.NewTestSyncService(t, txDB, priceDB, testutil.NewMockExplorerClient(), historical)

		prices, err := svc.SyncPrices(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(prices) != 2 {
			t.Errorf("Expected 2 cached prices, got %d", len(prices))
		}
		if historical.FetchCount != 2 {
			t.Errorf("Expected 2 fetches, got %d", historical.FetchCount)
		}
	})

	t.Run("one failed fetch aborts the run", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)

		testutil.NewTransaction().WithBlockTime(100).Build(t, txDB)

		historical := testutil.NewMockHistoricalClient().WithError(errors.New("api down"))
		svc := testutil.NewTestSyncService(t, txDB, priceDB, testutil.NewMockExplorerClient(), historical)

		if _, err := svc.SyncPrices(context.Background()); err == nil {
			t.Fatal("Expected error when price fetch fails")
		}
	})

	t.Run("already cached prices are not refetched", func(t *testing.T) {
		txDB := testutil.SetupTxDB(t)
		priceDB := testutil.SetupPriceDB(t)

		testutil.NewTransaction().WithBlockTime(100).Build(t, txDB)
		testutil.NewPrice().WithBlockTime(100).WithPriceCAD(45000).Build(t, priceDB)

		historical := testutil.NewMockHistoricalClient()
		svc := testutil.NewTestSyncService(t, txDB, priceDB, testutil.NewMockExplorerClient(), historical)

		prices, err := svc.SyncPrices(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(prices) != 1 {
			t.Errorf("Expected 1 cached price, got %d", len(prices))
		}
		if historical.FetchCount != 0 {
			t.Errorf("Expected no fetches for cached block time, got %d", historical.FetchCount)
		}
	})
}
