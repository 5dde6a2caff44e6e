package model

import "time"

// EarningYield is one row of the derived earning_yield table: a payout
// joined with the holder's position at the hold date and the economic
// indices for the hold month. There is exactly one row per wallet earning;
// EarningID doubles as the source earning's id and the primary key.
type EarningYield struct {
	EarningID               int64       `json:"earning_id"`
	B3Code                  string      `json:"b3_code"`
	AssetKind               AssetKind   `json:"asset_kind"`
	EarningKind             EarningKind `json:"earning_kind"`
	HoldDate                time.Time   `json:"hold_date"`
	PaymentDate             time.Time   `json:"payment_date"`
	IR                      float64     `json:"ir"`
	ValuePerShare           float64     `json:"value_per_share"`
	IRAdjustedValuePerShare float64     `json:"ir_adjusted_value_per_share"`
	Shares                  int64       `json:"shares"`
	AvgPrice                float64     `json:"avg_price"`
	TotalEarnings           float64     `json:"total_earnings"`
	YoC                     float64     `json:"yoc"`
	CDIOnHoldMonth          float64     `json:"cdi_on_hold_month"`
	IPCAOnHoldMonth         float64     `json:"ipca_on_hold_month"`
}

// ComputeEarningYield derives the analytic row for an earning from its
// three inputs: the earning itself (with its asset's kind), the position at
// the hold date, and the CDI/IPCA changes for the hold month. The result is
// a pure function of its arguments, so recomputing with the same inputs
// always yields an identical row.
func ComputeEarningYield(e Earning, assetKind AssetKind, pos Position, cdi, ipca float64) EarningYield {
	adjusted := e.ValuePerShare * (1 - e.IRPercentage/100)

	yoc := 0.0
	if pos.Shares > 0 && pos.AvgPrice > 0 {
		yoc = 100 * adjusted / pos.AvgPrice
	}

	return EarningYield{
		EarningID:               e.ID,
		B3Code:                  e.AssetB3Code,
		AssetKind:               assetKind,
		EarningKind:             e.Kind,
		HoldDate:                e.HoldDate,
		PaymentDate:             e.PaymentDate,
		IR:                      e.IRPercentage,
		ValuePerShare:           e.ValuePerShare,
		IRAdjustedValuePerShare: adjusted,
		Shares:                  pos.Shares,
		AvgPrice:                pos.AvgPrice,
		TotalEarnings:           float64(pos.Shares) * adjusted,
		YoC:                     yoc,
		CDIOnHoldMonth:          cdi,
		IPCAOnHoldMonth:         ipca,
	}
}
