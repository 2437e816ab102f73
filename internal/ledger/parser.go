// Package ledger derives net fund-address cash flows from raw chain
// explorer transactions.
package ledger

import (
	"github.com/madame-president/normaDB/internal/mempool"
	"github.com/madame-president/normaDB/internal/model"
)

// satsPerBTC converts the chain's integer base unit to BTC.
const satsPerBTC = 1e8

// Parse converts one raw explorer transaction into a TransactionRecord
// relative to fundAddress. It is pure and deterministic.
//
// The second return value is false when the transaction produces no
// record:
//   - unconfirmed transactions (block height or block time absent/zero)
//   - transactions with zero net value for the fund address
//     (self-transfers, no economic effect)
func Parse(tx mempool.RawTransaction, fundAddress string) (model.TransactionRecord, bool) {
	if tx.Status.BlockHeight == 0 || tx.Status.BlockTime == 0 {
		return model.TransactionRecord{}, false
	}

	var receivedSats int64
	for _, vout := range tx.Vout {
		if vout.ScriptpubkeyAddress == fundAddress {
			receivedSats += vout.Value
		}
	}

	var spentSats int64
	for _, vin := range tx.Vin {
		if vin.Prevout != nil && vin.Prevout.ScriptpubkeyAddress == fundAddress {
			spentSats += vin.Prevout.Value
		}
	}

	netSats := receivedSats - spentSats
	if netSats == 0 {
		return model.TransactionRecord{}, false
	}

	return model.TransactionRecord{
		TxID:        tx.TxID,
		BlockHeight: tx.Status.BlockHeight,
		BlockTime:   tx.Status.BlockTime,
		BTCValue:    float64(netSats) / satsPerBTC,
	}, true
}

// ParseAll applies Parse to a batch, keeping only transactions that
// produce a record.
func ParseAll(txs []mempool.RawTransaction, fundAddress string) []model.TransactionRecord {
	records := make([]model.TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		if record, ok := Parse(tx, fundAddress); ok {
			records = append(records, record)
		}
	}
	return records
}
