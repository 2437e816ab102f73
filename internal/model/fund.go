package model

// LedgerRow is a transaction joined with its historical price, plus the
// cumulative series used for the growth-vs-cost view. PriceCAD and
// CostCAD are nil when no price is cached for the row's block time;
// unpriced rows are excluded from cost sums rather than counted as
// zero.
type LedgerRow struct {
	TxID        string   `json:"txid"`
	BlockHeight int64    `json:"block_height"`
	BlockTime   int64    `json:"block_time"`
	BTCValue    float64  `json:"btc_value"`
	PriceCAD    *float64 `json:"price_cad"`
	CostCAD     *float64 `json:"cost_cad"`

	// Running totals in ascending block-time order. FundValueCAD values
	// the cumulative position at the live price uniformly across
	// history, which is what the growth-vs-cost chart plots.
	CumulativeBTC     float64 `json:"cumulative_btc"`
	CumulativeCostCAD float64 `json:"cumulative_cost_cad"`
	FundValueCAD      float64 `json:"fund_value_cad"`
}

// FundSnapshot is the point-in-time aggregate view of the fund, valued
// at the live price.
type FundSnapshot struct {
	TotalBTCHeld        float64 `json:"total_btc_held"`
	TotalCostCAD        float64 `json:"total_cost_cad"`
	CurrentFundValueCAD float64 `json:"current_fund_value_cad"`
	LivePriceCAD        float64 `json:"live_price_cad"`
	FundInception       string  `json:"fund_inception"` // YYYY-MM-DD, UTC
	FundAgeDays         int     `json:"fund_age_days"`
	PnLCAD              float64 `json:"pnl_cad"`
	PnLPercent          float64 `json:"pnl_percent"`
	UnpricedCount       int     `json:"unpriced_count"`
}

// YearOneSnapshot is the fixed 365-day early-performance report,
// valued at a manually recorded closing price instead of a live quote.
type YearOneSnapshot struct {
	EndDate            string  `json:"end_date"` // YYYY-MM-DD, UTC
	ClosingPriceCAD    float64 `json:"closing_price_cad"`
	BTCHeld            float64 `json:"btc_held"`
	ClosingFundValue   float64 `json:"closing_fund_value_cad"`
	ClosingFundCostCAD float64 `json:"closing_fund_cost_cad"`
	AnnualReturnPct    float64 `json:"annual_return_pct"`
	UnpricedCount      int     `json:"unpriced_count"`
}
