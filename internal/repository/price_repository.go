package repository

import (
	"database/sql"
	"fmt"

	"github.com/madame-president/normaDB/internal/model"
)

// PriceRepository provides data access methods for the historical price
// cache. At most one price exists per exact block timestamp.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// Get returns the cached price for the given block time. The second
// return value is false when no price is cached.
func (r *PriceRepository) Get(blockTime int64) (float64, bool, error) {
	var price float64
	err := r.db.QueryRow(`SELECT price_cad FROM prices WHERE block_time = ?`, blockTime).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query prices table: %w", err)
	}
	return price, true, nil
}

// Upsert stores a price for the given block time, replacing any
// existing value. Normal operation never re-derives a different price
// for the same timestamp; the replace is defensive.
func (r *PriceRepository) Upsert(blockTime int64, priceCAD float64) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO prices (block_time, price_cad) VALUES (?, ?)`,
		blockTime, priceCAD,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price: %w", err)
	}
	return nil
}

// All returns the full price store ordered by block time descending.
func (r *PriceRepository) All() ([]model.PriceRecord, error) {
	rows, err := r.db.Query(`
		SELECT block_time, price_cad
		FROM prices
		ORDER BY block_time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices table: %w", err)
	}
	defer rows.Close()

	records := []model.PriceRecord{}
	for rows.Next() {
		var record model.PriceRecord
		if err := rows.Scan(&record.BlockTime, &record.PriceCAD); err != nil {
			return nil, fmt.Errorf("failed to scan prices table results: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices table: %w", err)
	}

	return records, nil
}
