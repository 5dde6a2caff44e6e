package model

import "time"

// TransactionKind tags a transaction as a buy or a sell.
type TransactionKind string

// Transaction kinds stored in the wallet database.
const (
	TransactionBuy  TransactionKind = "buy"
	TransactionSell TransactionKind = "sell"
)

// Valid reports whether k is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	return k == TransactionBuy || k == TransactionSell
}

// Transaction represents a buy or sell of shares of an asset.
type Transaction struct {
	ID            int64
	AssetB3Code   string
	Date          time.Time
	Kind          TransactionKind
	ValuePerShare float64
	Shares        int64
}
