package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/invest-earning/event-engine/internal/errors"
	"github.com/invest-earning/event-engine/internal/model"
)

// YieldRepository owns the earning_yield table in the analytic store. It is
// the only writer of that table; every mutation runs inside a caller-owned
// transaction so that one upstream event commits as a single batch.
type YieldRepository struct {
	db *sql.DB
}

// NewYieldRepository creates a new YieldRepository with the provided database connection.
func NewYieldRepository(db *sql.DB) *YieldRepository {
	return &YieldRepository{db: db}
}

// Upsert inserts the row, or overwrites every field in place if a row with
// the same earning_id already exists. Both branches are idempotent: writing
// the same row twice leaves the table unchanged.
func (r *YieldRepository) Upsert(tx *sql.Tx, y model.EarningYield) error {
	query := `
		INSERT INTO earning_yield (
			earning_id, b3_code, asset_kind, earning_kind, hold_date, payment_date,
			ir, value_per_share, ir_adjusted_value_per_share, shares, avg_price,
			total_earnings, yoc, cdi_on_hold_month, ipca_on_hold_month
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(earning_id) DO UPDATE SET
			b3_code = excluded.b3_code,
			asset_kind = excluded.asset_kind,
			earning_kind = excluded.earning_kind,
			hold_date = excluded.hold_date,
			payment_date = excluded.payment_date,
			ir = excluded.ir,
			value_per_share = excluded.value_per_share,
			ir_adjusted_value_per_share = excluded.ir_adjusted_value_per_share,
			shares = excluded.shares,
			avg_price = excluded.avg_price,
			total_earnings = excluded.total_earnings,
			yoc = excluded.yoc,
			cdi_on_hold_month = excluded.cdi_on_hold_month,
			ipca_on_hold_month = excluded.ipca_on_hold_month
	`

	_, err := tx.Exec(query,
		y.EarningID,
		y.B3Code,
		y.AssetKind,
		y.EarningKind,
		y.HoldDate.Format("2006-01-02"),
		y.PaymentDate.Format("2006-01-02"),
		y.IR,
		y.ValuePerShare,
		y.IRAdjustedValuePerShare,
		y.Shares,
		y.AvgPrice,
		y.TotalEarnings,
		y.YoC,
		y.CDIOnHoldMonth,
		y.IPCAOnHoldMonth,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert earning_yield row %d: %w", y.EarningID, err)
	}
	return nil
}

// Delete removes the row for an earning id. Deleting an absent row is a
// no-op, which keeps replayed delete events harmless.
func (r *YieldRepository) Delete(tx *sql.Tx, earningID int64) error {
	if _, err := tx.Exec(`DELETE FROM earning_yield WHERE earning_id = ?`, earningID); err != nil {
		return fmt.Errorf("failed to delete earning_yield row %d: %w", earningID, err)
	}
	return nil
}

// DeleteByAsset removes every row keyed by the given B3 code.
func (r *YieldRepository) DeleteByAsset(tx *sql.Tx, b3Code string) error {
	if _, err := tx.Exec(`DELETE FROM earning_yield WHERE b3_code = ?`, b3Code); err != nil {
		return fmt.Errorf("failed to delete earning_yield rows for %s: %w", b3Code, err)
	}
	return nil
}

// DeleteExcept prunes every row whose earning_id is not in keep. An empty
// keep set empties the table. The sweep uses this to drop orphans before a
// rebuild.
func (r *YieldRepository) DeleteExcept(tx *sql.Tx, keep []int64) error {
	if len(keep) == 0 {
		if _, err := tx.Exec(`DELETE FROM earning_yield`); err != nil {
			return fmt.Errorf("failed to clear earning_yield table: %w", err)
		}
		return nil
	}

	placeholders := make([]string, len(keep))
	args := make([]any, len(keep))
	for i, id := range keep {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `DELETE FROM earning_yield WHERE earning_id NOT IN (` + strings.Join(placeholders, ",") + `)`
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to prune earning_yield orphans: %w", err)
	}
	return nil
}

// Get retrieves one row by earning id.
//
// Returns apperrors.ErrYieldNotFound if no row exists for the id.
func (r *YieldRepository) Get(earningID int64) (model.EarningYield, error) {
	query := `
		SELECT earning_id, b3_code, asset_kind, earning_kind, hold_date, payment_date,
		       ir, value_per_share, ir_adjusted_value_per_share, shares, avg_price,
		       total_earnings, yoc, cdi_on_hold_month, ipca_on_hold_month
		FROM earning_yield
		WHERE earning_id = ?
	`

	var y model.EarningYield
	var holdStr, paymentStr string

	err := r.db.QueryRow(query, earningID).Scan(
		&y.EarningID,
		&y.B3Code,
		&y.AssetKind,
		&y.EarningKind,
		&holdStr,
		&paymentStr,
		&y.IR,
		&y.ValuePerShare,
		&y.IRAdjustedValuePerShare,
		&y.Shares,
		&y.AvgPrice,
		&y.TotalEarnings,
		&y.YoC,
		&y.CDIOnHoldMonth,
		&y.IPCAOnHoldMonth,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EarningYield{}, apperrors.ErrYieldNotFound
	}
	if err != nil {
		return model.EarningYield{}, fmt.Errorf("failed to query earning_yield table: %w", err)
	}

	if y.HoldDate, err = ParseTime(holdStr); err != nil {
		return model.EarningYield{}, fmt.Errorf("failed to parse hold_date: %w", err)
	}
	if y.PaymentDate, err = ParseTime(paymentStr); err != nil {
		return model.EarningYield{}, fmt.Errorf("failed to parse payment_date: %w", err)
	}

	return y, nil
}

// AssetCode returns the b3_code recorded on the row for an earning id.
// This is how the deleted-transaction fan-out re-derives the affected
// asset once the transaction row itself is gone.
//
// Returns apperrors.ErrYieldNotFound if no row exists for the id.
func (r *YieldRepository) AssetCode(earningID int64) (string, error) {
	var b3Code string
	err := r.db.QueryRow(`SELECT b3_code FROM earning_yield WHERE earning_id = ?`, earningID).Scan(&b3Code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrYieldNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query earning_yield table: %w", err)
	}
	return b3Code, nil
}

// EarningIDsByAsset returns the earning ids of every row keyed by the
// given B3 code, in ascending order.
func (r *YieldRepository) EarningIDsByAsset(b3Code string) ([]int64, error) {
	return r.queryIDs(`SELECT earning_id FROM earning_yield WHERE b3_code = ? ORDER BY earning_id ASC`, b3Code)
}

// AllEarningIDs returns the earning id of every row, in ascending order.
func (r *YieldRepository) AllEarningIDs() ([]int64, error) {
	return r.queryIDs(`SELECT earning_id FROM earning_yield ORDER BY earning_id ASC`)
}

// Count returns the number of rows in earning_yield.
func (r *YieldRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM earning_yield`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count earning_yield rows: %w", err)
	}
	return count, nil
}

func (r *YieldRepository) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query earning_yield ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan earning_yield id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earning_yield ids: %w", err)
	}

	return ids, nil
}
