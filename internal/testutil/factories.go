package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/madame-president/normaDB/internal/model"
)

// TransactionBuilder provides a fluent interface for creating test
// ledger records.
//
// Example usage:
//
//	// Simple creation with defaults
//	record := testutil.NewTransaction().Build(t, txDB)
//
//	// Customized record
//	record := testutil.NewTransaction().
//	    WithBlockTime(1700000000).
//	    WithBTCValue(-0.25).
//	    Build(t, txDB)
type TransactionBuilder struct {
	TxID        string
	BlockHeight int64
	BlockTime   int64
	BTCValue    float64
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{
		TxID:        MakeTxID(),
		BlockHeight: 800000,
		BlockTime:   1700000000,
		BTCValue:    0.5,
	}
}

// WithTxID sets a custom txid.
func (b *TransactionBuilder) WithTxID(txid string) *TransactionBuilder {
	b.TxID = txid
	return b
}

// WithBlockHeight sets a custom block height.
func (b *TransactionBuilder) WithBlockHeight(height int64) *TransactionBuilder {
	b.BlockHeight = height
	return b
}

// WithBlockTime sets a custom block time.
func (b *TransactionBuilder) WithBlockTime(blockTime int64) *TransactionBuilder {
	b.BlockTime = blockTime
	return b
}

// WithBTCValue sets a custom net BTC value.
func (b *TransactionBuilder) WithBTCValue(value float64) *TransactionBuilder {
	b.BTCValue = value
	return b
}

// Build inserts the record into the transaction store and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.TransactionRecord {
	t.Helper()

	query := `
		INSERT INTO transactions (txid, block_height, block_time, btc_value)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.TxID, b.BlockHeight, b.BlockTime, b.BTCValue)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.TransactionRecord{
		TxID:        b.TxID,
		BlockHeight: b.BlockHeight,
		BlockTime:   b.BlockTime,
		BTCValue:    b.BTCValue,
	}
}

// PriceBuilder provides a fluent interface for creating test price
// records.
type PriceBuilder struct {
	BlockTime int64
	PriceCAD  float64
}

// NewPrice creates a PriceBuilder with sensible defaults.
func NewPrice() *PriceBuilder {
	return &PriceBuilder{
		BlockTime: 1700000000,
		PriceCAD:  50000,
	}
}

// WithBlockTime sets a custom block time.
func (b *PriceBuilder) WithBlockTime(blockTime int64) *PriceBuilder {
	b.BlockTime = blockTime
	return b
}

// WithPriceCAD sets a custom price.
func (b *PriceBuilder) WithPriceCAD(price float64) *PriceBuilder {
	b.PriceCAD = price
	return b
}

// Build inserts the record into the price store and returns it.
func (b *PriceBuilder) Build(t *testing.T, db *sql.DB) model.PriceRecord {
	t.Helper()

	query := `INSERT OR REPLACE INTO prices (block_time, price_cad) VALUES (?, ?)`

	_, err := db.Exec(query, b.BlockTime, b.PriceCAD)
	if err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}

	return model.PriceRecord{
		BlockTime: b.BlockTime,
		PriceCAD:  b.PriceCAD,
	}
}

// ClosingPriceBuilder provides a fluent interface for creating test
// closing prices.
type ClosingPriceBuilder struct {
	ID            string
	WindowEndDate time.Time
	PriceCAD      float64
}

// NewClosingPrice creates a ClosingPriceBuilder with sensible defaults.
func NewClosingPrice() *ClosingPriceBuilder {
	return &ClosingPriceBuilder{
		ID:            uuid.New().String(),
		WindowEndDate: time.Date(2024, 11, 14, 0, 0, 0, 0, time.UTC),
		PriceCAD:      120548,
	}
}

// WithWindowEndDate sets a custom window end date.
func (b *ClosingPriceBuilder) WithWindowEndDate(date time.Time) *ClosingPriceBuilder {
	b.WindowEndDate = date
	return b
}

// WithPriceCAD sets a custom closing price.
func (b *ClosingPriceBuilder) WithPriceCAD(price float64) *ClosingPriceBuilder {
	b.PriceCAD = price
	return b
}

// Build inserts the record into the price store and returns it.
func (b *ClosingPriceBuilder) Build(t *testing.T, db *sql.DB) model.ClosingPrice {
	t.Helper()

	createdAt := time.Now().UTC()
	query := `
		INSERT INTO closing_price (id, window_end_date, price_cad, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.WindowEndDate.Format("2006-01-02"), b.PriceCAD, createdAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test closing price: %v", err)
	}

	return model.ClosingPrice{
		ID:            b.ID,
		WindowEndDate: b.WindowEndDate,
		PriceCAD:      b.PriceCAD,
		CreatedAt:     createdAt,
	}
}

var txIDCounter int

// MakeTxID generates a unique fake txid for tests.
func MakeTxID() string {
	txIDCounter++
	return fmt.Sprintf("%064x", txIDCounter)
}
