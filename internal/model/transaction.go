package model

// TransactionRecord is one net fund-address cash flow derived from an
// on-chain transaction. Records are append-only: once stored they are
// never updated or deleted, and txid is unique across the ledger.
type TransactionRecord struct {
	TxID        string  `json:"txid"`
	BlockHeight int64   `json:"block_height"`
	BlockTime   int64   `json:"block_time"`
	BTCValue    float64 `json:"btc_value"`
}
