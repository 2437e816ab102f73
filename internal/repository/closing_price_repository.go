package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/madame-president/normaDB/internal/apperrors"
	"github.com/madame-president/normaDB/internal/model"
)

// ClosingPriceRepository provides data access methods for the
// append-only closing_price table: one manually recorded closing price
// per reporting window.
type ClosingPriceRepository struct {
	db *sql.DB
}

// NewClosingPriceRepository creates a new ClosingPriceRepository with the provided database connection.
func NewClosingPriceRepository(db *sql.DB) *ClosingPriceRepository {
	return &ClosingPriceRepository{db: db}
}

// Insert records a closing price for a reporting window. Returns
// apperrors.ErrDuplicateClosingPrice when a row already exists for the
// window end date; rows are never replaced.
func (r *ClosingPriceRepository) Insert(cp model.ClosingPrice) error {
	result, err := r.db.Exec(`
		INSERT OR IGNORE INTO closing_price (id, window_end_date, price_cad, created_at)
		VALUES (?, ?, ?, ?)
	`,
		cp.ID,
		cp.WindowEndDate.UTC().Format("2006-01-02"),
		cp.PriceCAD,
		cp.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert closing price: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrDuplicateClosingPrice
	}

	return nil
}

// ForDate returns the closing price recorded for the given window end
// date. Returns apperrors.ErrClosingPriceNotFound when no row exists.
func (r *ClosingPriceRepository) ForDate(windowEnd time.Time) (model.ClosingPrice, error) {
	var cp model.ClosingPrice
	var dateStr, createdAtStr string

	err := r.db.QueryRow(`
		SELECT id, window_end_date, price_cad, created_at
		FROM closing_price
		WHERE window_end_date = ?
	`, windowEnd.UTC().Format("2006-01-02")).Scan(&cp.ID, &dateStr, &cp.PriceCAD, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.ClosingPrice{}, apperrors.ErrClosingPriceNotFound
	}
	if err != nil {
		return model.ClosingPrice{}, fmt.Errorf("failed to query closing_price table: %w", err)
	}

	cp.WindowEndDate, err = ParseTime(dateStr)
	if err != nil {
		return model.ClosingPrice{}, err
	}
	cp.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.ClosingPrice{}, err
	}

	return cp, nil
}

// All returns every recorded closing price ordered by window end date.
func (r *ClosingPriceRepository) All() ([]model.ClosingPrice, error) {
	rows, err := r.db.Query(`
		SELECT id, window_end_date, price_cad, created_at
		FROM closing_price
		ORDER BY window_end_date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query closing_price table: %w", err)
	}
	defer rows.Close()

	records := []model.ClosingPrice{}
	for rows.Next() {
		var cp model.ClosingPrice
		var dateStr, createdAtStr string
		if err := rows.Scan(&cp.ID, &dateStr, &cp.PriceCAD, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan closing_price table results: %w", err)
		}
		cp.WindowEndDate, err = ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		cp.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		records = append(records, cp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating closing_price table: %w", err)
	}

	return records, nil
}
