package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/invest-earning/event-engine/internal/model"
)

// PositionRepository computes net positions from the wallet store's
// transaction history using average-cost accounting. Positions are derived
// on demand; nothing is persisted.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// GetPositions returns the net position of every asset as of the given
// date, computed over all transactions dated on or before it. The average
// price is the share-weighted mean of buy legs only; sells reduce the share
// count without touching it. Assets whose net share count is zero are
// excluded.
//
// Pass an empty assetB3Code to get all assets, or a code to restrict the
// result to one.
func (r *PositionRepository) GetPositions(asOf time.Time, assetB3Code string) ([]model.Position, error) {
	query := `
		SELECT t.asset_b3_code,
		       COALESCE(a.kind, ''),
		       SUM(CASE WHEN t.kind = 'buy' THEN t.shares ELSE 0 END),
		       SUM(CASE WHEN t.kind = 'sell' THEN t.shares ELSE 0 END),
		       SUM(CASE WHEN t.kind = 'buy' THEN t.shares * t.value_per_share ELSE 0 END)
		FROM "transaction" t
		LEFT JOIN asset a ON a.b3_code = t.asset_b3_code
		WHERE t.date <= ?
	`

	args := []any{asOf.Format("2006-01-02")}
	if assetB3Code != "" {
		query += ` AND t.asset_b3_code = ?`
		args = append(args, assetB3Code)
	}
	query += `
		GROUP BY t.asset_b3_code
		ORDER BY t.asset_b3_code ASC
	`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		var p model.Position
		var bought, sold int64
		var totalBuy float64

		if err := rows.Scan(&p.B3Code, &p.AssetKind, &bought, &sold, &totalBuy); err != nil {
			return nil, fmt.Errorf("failed to scan position results: %w", err)
		}

		p.Shares = bought - sold
		if p.Shares == 0 {
			continue
		}
		if bought > 0 {
			p.AvgPrice = totalBuy / float64(bought)
		}
		p.TotalInvested = float64(p.Shares) * p.AvgPrice

		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position results: %w", err)
	}

	return positions, nil
}

// PositionAt returns the position of a single asset as of the given date.
// An asset with no transactions, or whose holdings net out to zero, yields
// a zero-valued Position rather than an error.
func (r *PositionRepository) PositionAt(assetB3Code string, asOf time.Time) (model.Position, error) {
	positions, err := r.GetPositions(asOf, assetB3Code)
	if err != nil {
		return model.Position{}, err
	}
	if len(positions) == 0 {
		return model.Position{B3Code: assetB3Code}, nil
	}
	return positions[0], nil
}
