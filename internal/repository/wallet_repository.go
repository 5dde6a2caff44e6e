package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/invest-earning/event-engine/internal/errors"
	"github.com/invest-earning/event-engine/internal/model"
)

// WalletRepository provides read access to the operational wallet store:
// earnings, transactions, entitlement lookups, and economic index data. The
// event engine never writes to this store; the CRUD API and the scrapers
// own it.
type WalletRepository struct {
	db *sql.DB
}

// NewWalletRepository creates a new WalletRepository with the provided database connection.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetEarning retrieves an earning together with its asset's kind.
//
// The asset is joined with a LEFT JOIN on purpose: an earning referencing a
// vanished asset is a data inconsistency that resolves to an empty asset
// kind rather than an error, so a recompute batch never fails on it.
//
// Returns apperrors.ErrEarningNotFound if no earning has the given id.
func (r *WalletRepository) GetEarning(id int64) (model.Earning, model.AssetKind, error) {
	query := `
		SELECT e.id, e.asset_b3_code, e.hold_date, e.payment_date,
		       e.value_per_share, COALESCE(e.ir_percentage, 0), e.kind,
		       COALESCE(a.kind, '')
		FROM earning e
		LEFT JOIN asset a ON a.b3_code = e.asset_b3_code
		WHERE e.id = ?
	`

	var e model.Earning
	var assetKind model.AssetKind
	var holdStr, paymentStr string

	err := r.db.QueryRow(query, id).Scan(
		&e.ID,
		&e.AssetB3Code,
		&holdStr,
		&paymentStr,
		&e.ValuePerShare,
		&e.IRPercentage,
		&e.Kind,
		&assetKind,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Earning{}, "", apperrors.ErrEarningNotFound
	}
	if err != nil {
		return model.Earning{}, "", fmt.Errorf("failed to query earning table: %w", err)
	}

	if e.HoldDate, err = ParseTime(holdStr); err != nil {
		return model.Earning{}, "", fmt.Errorf("failed to parse hold_date: %w", err)
	}
	if e.PaymentDate, err = ParseTime(paymentStr); err != nil {
		return model.Earning{}, "", fmt.Errorf("failed to parse payment_date: %w", err)
	}

	return e, assetKind, nil
}

// GetTransaction retrieves a single transaction by id.
//
// Returns apperrors.ErrTransactionNotFound if no transaction has the given id.
func (r *WalletRepository) GetTransaction(id int64) (model.Transaction, error) {
	query := `
		SELECT id, asset_b3_code, date, kind, value_per_share, shares
		FROM "transaction"
		WHERE id = ?
	`

	var t model.Transaction
	var dateStr string

	err := r.db.QueryRow(query, id).Scan(
		&t.ID,
		&t.AssetB3Code,
		&dateStr,
		&t.Kind,
		&t.ValuePerShare,
		&t.Shares,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to query transaction table: %w", err)
	}

	if t.Date, err = ParseTime(dateStr); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return t, nil
}

// EarningIDsEntitledTo returns the ids of every earning a transaction at
// (assetB3Code, asOf) is entitled to: same asset, hold date on or after the
// transaction date. This is the pure form of the entitlement relation the
// CRUD API materializes in the earnings_rights join table.
func (r *WalletRepository) EarningIDsEntitledTo(assetB3Code string, asOf time.Time) ([]int64, error) {
	query := `
		SELECT id FROM earning
		WHERE asset_b3_code = ? AND hold_date >= ?
		ORDER BY id ASC
	`
	return r.queryIDs(query, assetB3Code, asOf.Format("2006-01-02"))
}

// EarningIDsForMonth returns the ids of every earning whose hold date falls
// within the given year and month.
func (r *WalletRepository) EarningIDsForMonth(year int, month time.Month) ([]int64, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := model.MonthEnd(first)

	query := `
		SELECT id FROM earning
		WHERE hold_date >= ? AND hold_date <= ?
		ORDER BY id ASC
	`
	return r.queryIDs(query, first.Format("2006-01-02"), last.Format("2006-01-02"))
}

// AllEarningIDs returns the id of every earning in the wallet store, in
// ascending order. This is the source-of-truth id set the reconciliation
// sweep rebuilds from.
func (r *WalletRepository) AllEarningIDs() ([]int64, error) {
	return r.queryIDs(`SELECT id FROM earning ORDER BY id ASC`)
}

// CountEarnings returns the number of earnings in the wallet store.
func (r *WalletRepository) CountEarnings() (int64, error) {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM earning`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count earnings: %w", err)
	}
	return count, nil
}

// EconomicChangesForMonth returns the CDI and IPCA percentage changes
// recorded for the month ending at monthEnd, keyed by index. Indices with
// no row for that month are simply absent from the map; callers default
// them to 0.0. Should an index carry more than one row in the month, the
// latest reference date wins, so repeated lookups always resolve the same
// way.
func (r *WalletRepository) EconomicChangesForMonth(monthEnd time.Time) (map[model.EconomicIndex]float64, error) {
	monthStart := time.Date(monthEnd.Year(), monthEnd.Month(), 1, 0, 0, 0, 0, time.UTC)

	query := `
		SELECT "index", percentage_change
		FROM economic_data
		WHERE "index" IN (?, ?)
		AND reference_date >= ?
		AND reference_date <= ?
		ORDER BY reference_date ASC
	`

	rows, err := r.db.Query(query,
		string(model.IndexCDI),
		string(model.IndexIPCA),
		monthStart.Format("2006-01-02"),
		monthEnd.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query economic_data table: %w", err)
	}
	defer rows.Close()

	changes := make(map[model.EconomicIndex]float64)
	for rows.Next() {
		var index model.EconomicIndex
		var change float64
		if err := rows.Scan(&index, &change); err != nil {
			return nil, fmt.Errorf("failed to scan economic_data results: %w", err)
		}
		changes[index] = change
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating economic_data table: %w", err)
	}

	return changes, nil
}

// queryIDs runs a query returning a single integer column and collects it.
func (r *WalletRepository) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query earning ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan earning id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earning ids: %w", err)
	}

	return ids, nil
}
