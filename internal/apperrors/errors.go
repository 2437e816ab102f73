package apperrors

import "errors"

// Upstream API errors represent failures talking to the three external
// data sources. None of these are retried beyond the bounded retry
// policy on the client; a failed pipeline run relies on idempotent
// re-execution instead.
var (
	// ErrExplorerRequestFailed indicates the chain explorer returned a
	// non-success status or an unreadable body.
	ErrExplorerRequestFailed = errors.New("transaction request failed")

	// ErrHistoricalPriceRequestFailed indicates the historical price API
	// returned a non-success status.
	ErrHistoricalPriceRequestFailed = errors.New("historical price request failed")

	// ErrHistoricalPriceMalformed indicates the historical price payload
	// could not be parsed into a CAD price.
	ErrHistoricalPriceMalformed = errors.New("failed to parse historical price")

	// ErrLivePriceRequestFailed indicates the live price API returned a
	// non-success status or an unparseable payload.
	ErrLivePriceRequestFailed = errors.New("live price request failed")
)

// Domain errors represent missing or invalid data within our own
// stores rather than upstream failures.
var (
	// ErrEmptyLedger indicates an aggregate was requested before any
	// transaction has been ingested.
	ErrEmptyLedger = errors.New("ledger is empty")

	// ErrClosingPriceNotFound indicates no closing price has been
	// recorded for the requested reporting window.
	ErrClosingPriceNotFound = errors.New("closing price not found for window")

	// ErrDuplicateClosingPrice indicates a closing price already exists
	// for the reporting window; the table is append-only.
	ErrDuplicateClosingPrice = errors.New("closing price already recorded for window")

	// ErrInvalidDate indicates a date parameter is missing or not in
	// YYYY-MM-DD format.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNegativeAmount indicates an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")
)
