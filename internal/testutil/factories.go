package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/invest-earning/event-engine/internal/model"
)

const dateLayout = "2006-01-02"

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	// Simple creation with defaults
//	asset := testutil.NewAsset("PETR4").Build(t, walletDB)
//
//	// Customized asset
//	asset := testutil.NewAsset("HGLG11").
//	    WithKind(model.AssetFII).
//	    WithName("CSHG Logistica").
//	    Build(t, walletDB)
type AssetBuilder struct {
	B3Code      string
	Name        string
	Description string
	Kind        model.AssetKind
	Added       time.Time
}

// NewAsset creates an AssetBuilder with sensible defaults.
func NewAsset(b3Code string) *AssetBuilder {
	return &AssetBuilder{
		B3Code:      b3Code,
		Name:        "Test Asset " + b3Code,
		Description: "Test description",
		Kind:        model.AssetStock,
		Added:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithName sets a custom name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.Name = name
	return b
}

// WithKind sets the asset kind.
func (b *AssetBuilder) WithKind(kind model.AssetKind) *AssetBuilder {
	b.Kind = kind
	return b
}

// Build inserts the asset into the wallet store and returns it.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO asset (b3_code, name, description, kind, added) VALUES (?, ?, ?, ?, ?)`,
		b.B3Code, b.Name, b.Description, string(b.Kind), b.Added.Format(dateLayout),
	)
	if err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}

	return model.Asset{
		B3Code:      b.B3Code,
		Name:        b.Name,
		Description: b.Description,
		Kind:        b.Kind,
		Added:       b.Added,
	}
}

// EarningBuilder provides a fluent interface for creating test earnings.
type EarningBuilder struct {
	AssetB3Code   string
	HoldDate      time.Time
	PaymentDate   time.Time
	ValuePerShare float64
	IRPercentage  float64
	Kind          model.EarningKind
}

// NewEarning creates an EarningBuilder with sensible defaults.
func NewEarning(assetB3Code string) *EarningBuilder {
	return &EarningBuilder{
		AssetB3Code:   assetB3Code,
		HoldDate:      time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC),
		PaymentDate:   time.Date(2024, time.May, 25, 0, 0, 0, 0, time.UTC),
		ValuePerShare: 1.0,
		IRPercentage:  0,
		Kind:          model.EarningDividend,
	}
}

// WithHoldDate sets the hold date.
func (b *EarningBuilder) WithHoldDate(year int, month time.Month, day int) *EarningBuilder {
	b.HoldDate = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return b
}

// WithPaymentDate sets the payment date.
func (b *EarningBuilder) WithPaymentDate(year int, month time.Month, day int) *EarningBuilder {
	b.PaymentDate = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return b
}

// WithValuePerShare sets the gross value per share.
func (b *EarningBuilder) WithValuePerShare(value float64) *EarningBuilder {
	b.ValuePerShare = value
	return b
}

// WithIR sets the income tax percentage.
func (b *EarningBuilder) WithIR(percentage float64) *EarningBuilder {
	b.IRPercentage = percentage
	return b
}

// WithKind sets the earning kind.
func (b *EarningBuilder) WithKind(kind model.EarningKind) *EarningBuilder {
	b.Kind = kind
	return b
}

// Build inserts the earning into the wallet store and returns it with the
// id SQLite assigned.
func (b *EarningBuilder) Build(t *testing.T, db *sql.DB) model.Earning {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO earning (asset_b3_code, hold_date, payment_date, value_per_share, ir_percentage, kind)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.AssetB3Code,
		b.HoldDate.Format(dateLayout),
		b.PaymentDate.Format(dateLayout),
		b.ValuePerShare,
		b.IRPercentage,
		string(b.Kind),
	)
	if err != nil {
		t.Fatalf("Failed to create test earning: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get earning id: %v", err)
	}

	return model.Earning{
		ID:            id,
		AssetB3Code:   b.AssetB3Code,
		HoldDate:      b.HoldDate,
		PaymentDate:   b.PaymentDate,
		ValuePerShare: b.ValuePerShare,
		IRPercentage:  b.IRPercentage,
		Kind:          b.Kind,
	}
}

// TransactionBuilder provides a fluent interface for creating test
// transactions.
type TransactionBuilder struct {
	AssetB3Code   string
	Date          time.Time
	Kind          model.TransactionKind
	ValuePerShare float64
	Shares        int64
}

// NewTransaction creates a TransactionBuilder defaulting to a buy.
func NewTransaction(assetB3Code string) *TransactionBuilder {
	return &TransactionBuilder{
		AssetB3Code:   assetB3Code,
		Date:          time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Kind:          model.TransactionBuy,
		ValuePerShare: 100,
		Shares:        10,
	}
}

// WithDate sets the trade date.
func (b *TransactionBuilder) WithDate(year int, month time.Month, day int) *TransactionBuilder {
	b.Date = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return b
}

// Sell marks the transaction as a sale.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Kind = model.TransactionSell
	return b
}

// WithValuePerShare sets the price per share.
func (b *TransactionBuilder) WithValuePerShare(value float64) *TransactionBuilder {
	b.ValuePerShare = value
	return b
}

// WithShares sets the share count.
func (b *TransactionBuilder) WithShares(shares int64) *TransactionBuilder {
	b.Shares = shares
	return b
}

// Build inserts the transaction into the wallet store and returns it with
// the id SQLite assigned.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO "transaction" (asset_b3_code, date, kind, value_per_share, shares)
		 VALUES (?, ?, ?, ?, ?)`,
		b.AssetB3Code,
		b.Date.Format(dateLayout),
		string(b.Kind),
		b.ValuePerShare,
		b.Shares,
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get transaction id: %v", err)
	}

	return model.Transaction{
		ID:            id,
		AssetB3Code:   b.AssetB3Code,
		Date:          b.Date,
		Kind:          b.Kind,
		ValuePerShare: b.ValuePerShare,
		Shares:        b.Shares,
	}
}

// EconomicDataBuilder provides a fluent interface for creating test
// economic index rows.
type EconomicDataBuilder struct {
	Index            model.EconomicIndex
	ReferenceDate    time.Time
	PercentageChange float64
}

// NewEconomicData creates an EconomicDataBuilder with sensible defaults.
func NewEconomicData(index model.EconomicIndex) *EconomicDataBuilder {
	return &EconomicDataBuilder{
		Index:            index,
		ReferenceDate:    time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC),
		PercentageChange: 0.5,
	}
}

// WithReferenceDate sets the reference date.
func (b *EconomicDataBuilder) WithReferenceDate(year int, month time.Month, day int) *EconomicDataBuilder {
	b.ReferenceDate = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return b
}

// WithChange sets the monthly percentage change.
func (b *EconomicDataBuilder) WithChange(change float64) *EconomicDataBuilder {
	b.PercentageChange = change
	return b
}

// Build inserts the economic row into the wallet store.
func (b *EconomicDataBuilder) Build(t *testing.T, db *sql.DB) model.EconomicData {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO economic_data ("index", reference_date, percentage_change) VALUES (?, ?, ?)`,
		string(b.Index),
		b.ReferenceDate.Format(dateLayout),
		b.PercentageChange,
	)
	if err != nil {
		t.Fatalf("Failed to create test economic data: %v", err)
	}

	return model.EconomicData{
		Index:            b.Index,
		ReferenceDate:    b.ReferenceDate,
		PercentageChange: b.PercentageChange,
	}
}
