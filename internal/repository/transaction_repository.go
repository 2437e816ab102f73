package repository

import (
	"database/sql"
	"fmt"

	"github.com/madame-president/normaDB/internal/model"
)

// TransactionRepository provides data access methods for the
// append-only transactions store. Records are never updated or deleted.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// KnownIDs returns the set of txids currently persisted. The ingestion
// pipeline uses it to filter upstream results down to new transactions.
func (r *TransactionRepository) KnownIDs() (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT txid FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions table: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var txid string
		if err := rows.Scan(&txid); err != nil {
			return nil, fmt.Errorf("failed to scan txid: %w", err)
		}
		known[txid] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions table: %w", err)
	}

	return known, nil
}

// InsertBatch persists the given records. Records are pre-filtered by
// known txids, but INSERT OR IGNORE makes a duplicate key a no-op
// instead of a corruption, keeping re-runs safe.
func (r *TransactionRepository) InsertBatch(records []model.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO transactions (txid, block_height, block_time, btc_value)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.Exec(record.TxID, record.BlockHeight, record.BlockTime, record.BTCValue); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", record.TxID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	return nil
}

// All returns the full ledger ordered by block time descending (newest
// first). Aggregation re-sorts ascending internally where cumulative
// computation needs it.
func (r *TransactionRepository) All() ([]model.TransactionRecord, error) {
	rows, err := r.db.Query(`
		SELECT txid, block_height, block_time, btc_value
		FROM transactions
		ORDER BY block_time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions table: %w", err)
	}
	defer rows.Close()

	records := []model.TransactionRecord{}
	for rows.Next() {
		var record model.TransactionRecord
		err := rows.Scan(&record.TxID, &record.BlockHeight, &record.BlockTime, &record.BTCValue)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transactions table results: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions table: %w", err)
	}

	return records, nil
}

// OldestBlockTime returns the earliest block time in the ledger, which
// defines fund inception. Returns 0 when the ledger is empty.
func (r *TransactionRepository) OldestBlockTime() (int64, error) {
	var oldest sql.NullInt64
	err := r.db.QueryRow(`SELECT MIN(block_time) FROM transactions`).Scan(&oldest)
	if err != nil {
		return 0, fmt.Errorf("failed to query oldest block time: %w", err)
	}
	if !oldest.Valid {
		return 0, nil
	}
	return oldest.Int64, nil
}
