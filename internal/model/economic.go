package model

import (
	"strings"
	"time"
)

// EconomicIndex identifies an economic indicator series.
type EconomicIndex string

// Economic indices tracked by the wallet store. The stored value is the
// series name; the market symbol (CDI, IPCA, ...) maps onto it via
// ParseEconomicIndex.
const (
	IndexCDI      EconomicIndex = "cdi"
	IndexIPCA     EconomicIndex = "ipca"
	IndexIMAB     EconomicIndex = "ima_b"
	IndexIMAB5Sup EconomicIndex = "ima_b_5plus"
)

// Valid reports whether i is one of the known economic indices.
func (i EconomicIndex) Valid() bool {
	switch i {
	case IndexCDI, IndexIPCA, IndexIMAB, IndexIMAB5Sup:
		return true
	}
	return false
}

// ParseEconomicIndex resolves a series name or market symbol to an
// EconomicIndex. Matching is case-insensitive.
func ParseEconomicIndex(s string) (EconomicIndex, bool) {
	switch strings.ToLower(s) {
	case "cdi":
		return IndexCDI, true
	case "ipca":
		return IndexIPCA, true
	case "ima_b", "ima-b":
		return IndexIMAB, true
	case "ima_b_5plus", "ima-b 5+":
		return IndexIMAB5Sup, true
	}
	return "", false
}

// EconomicData holds the monthly change of an economic index. The
// composite key is (Index, ReferenceDate); reference dates are always
// normalized to the last day of the month they describe.
type EconomicData struct {
	Index            EconomicIndex
	ReferenceDate    time.Time
	PercentageChange float64
}

// MonthEnd returns the last day of the month containing d, at midnight UTC.
func MonthEnd(d time.Time) time.Time {
	firstOfNext := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
