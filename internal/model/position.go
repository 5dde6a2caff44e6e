package model

// Position is the net holding of an asset at a reference date, computed by
// average-cost accounting over all transactions up to and including that
// date: buys raise the share count and fold their cost into the
// share-weighted average price, sells reduce the share count only.
type Position struct {
	B3Code        string
	Shares        int64
	AvgPrice      float64
	TotalInvested float64
	AssetKind     AssetKind
}
