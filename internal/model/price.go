package model

import "time"

// PriceRecord is a cached historical CAD price for one exact block
// timestamp. Historical prices never change, so a stored record is
// effectively immutable.
type PriceRecord struct {
	BlockTime int64   `json:"block_time"`
	PriceCAD  float64 `json:"price_cad"`
}

// ClosingPrice is a manually recorded year-end closing price. The table
// is append-only: one row per reporting window, recorded once the
// window closes.
type ClosingPrice struct {
	ID            string    `json:"id"`
	WindowEndDate time.Time `json:"window_end_date"`
	PriceCAD      float64   `json:"price_cad"`
	CreatedAt     time.Time `json:"created_at"`
}
