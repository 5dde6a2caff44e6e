package model

import "time"

// AssetKind classifies a listed asset by its instrument type.
type AssetKind string

// Asset kinds stored in the wallet database.
const (
	AssetStock AssetKind = "stock"
	AssetBDR   AssetKind = "bdr"
	AssetFII   AssetKind = "fii"
	AssetETF   AssetKind = "etf"
)

// Valid reports whether k is one of the known asset kinds.
func (k AssetKind) Valid() bool {
	switch k {
	case AssetStock, AssetBDR, AssetFII, AssetETF:
		return true
	}
	return false
}

// Asset represents a tradeable asset registered in the wallet store,
// identified by its B3 trading code.
type Asset struct {
	B3Code      string
	Name        string
	Description string
	Kind        AssetKind
	Added       time.Time
}
