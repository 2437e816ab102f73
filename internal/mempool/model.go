package mempool

// RawTransaction is the chain explorer's transaction representation.
// Only the fields the ledger parser needs are mapped: confirmation
// status, outputs, and each input's previous output.
//
// Unconfirmed transactions carry a zero/absent block height and block
// time inside Status.
type RawTransaction struct {
	TxID   string   `json:"txid"`
	Status TxStatus `json:"status"`
	Vin    []TxVin  `json:"vin"`
	Vout   []TxVout `json:"vout"`
}

// TxStatus is the explorer's confirmation sub-structure.
type TxStatus struct {
	Confirmed   bool  `json:"confirmed"`
	BlockHeight int64 `json:"block_height"`
	BlockTime   int64 `json:"block_time"`
}

// TxVin is a transaction input; Prevout is the output it spends and may
// be absent (coinbase inputs).
type TxVin struct {
	Prevout *TxVout `json:"prevout"`
}

// TxVout is a transaction output. Value is in integer base units
// (satoshis). ScriptpubkeyAddress may be absent for non-standard
// scripts.
type TxVout struct {
	ScriptpubkeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}
