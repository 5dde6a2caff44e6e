package model

import "time"

// EarningKind classifies a payout event.
type EarningKind string

// Earning kinds stored in the wallet database.
const (
	EarningDividend EarningKind = "dividend"
	EarningJSCP     EarningKind = "jscp"
	EarningTaxable  EarningKind = "taxable"
)

// Valid reports whether k is one of the known earning kinds.
func (k EarningKind) Valid() bool {
	switch k {
	case EarningDividend, EarningJSCP, EarningTaxable:
		return true
	}
	return false
}

// Earning represents a payout announced for an asset. HoldDate is the
// custody cut-off: transactions dated on or before it are entitled to the
// payout. IRPercentage is the withholding-tax rate applied per share.
type Earning struct {
	ID            int64
	AssetB3Code   string
	HoldDate      time.Time
	PaymentDate   time.Time
	ValuePerShare float64
	IRPercentage  float64
	Kind          EarningKind
}
