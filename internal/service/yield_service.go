package service

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/invest-earning/event-engine/internal/errors"
	"github.com/invest-earning/event-engine/internal/model"
	"github.com/invest-earning/event-engine/internal/repository"
)

// PositionLedger computes the net holding of an asset at a reference date.
// The wallet-backed implementation lives in the repository package; tests
// substitute a fake.
type PositionLedger interface {
	PositionAt(assetB3Code string, asOf time.Time) (model.Position, error)
}

// YieldService maintains the derived earning_yield table. Every public
// method corresponds to one upstream event and runs its writes inside a
// single analytic-store transaction: either the whole batch commits or
// none of it does.
//
// Each row is recomputed from current upstream state (earning, position at
// hold date, economic indices for the hold month), never from event
// history, so replaying an event against a consistent table is a no-op.
type YieldService struct {
	analyticDB  *sql.DB
	walletRepo  *repository.WalletRepository
	yieldRepo   *repository.YieldRepository
	ledger      PositionLedger
	temperature float64
	sample      func() float64
	log         zerolog.Logger
}

// NewYieldService creates a new YieldService.
//
// temperature is the probability, in [0, 1], of forcing a full rebuild
// during a reconciliation sweep whose counts already match; 0 disables the
// probabilistic path.
func NewYieldService(
	analyticDB *sql.DB,
	walletRepo *repository.WalletRepository,
	yieldRepo *repository.YieldRepository,
	ledger PositionLedger,
	temperature float64,
	log zerolog.Logger,
) *YieldService {
	return &YieldService{
		analyticDB:  analyticDB,
		walletRepo:  walletRepo,
		yieldRepo:   yieldRepo,
		ledger:      ledger,
		temperature: temperature,
		sample:      rand.Float64,
		log:         log.With().Str("component", "yield_service").Logger(),
	}
}

// SyncEarning recomputes (or creates) the analytic row for one earning.
// If the earning no longer exists in the wallet store, the analytic row is
// removed instead, which keeps the row set a subset of wallet earnings.
func (s *YieldService) SyncEarning(earningID int64) error {
	return s.inTx(func(tx *sql.Tx) error {
		return s.recompute(tx, earningID)
	})
}

// DeleteEarning removes the analytic row for an earning id.
func (s *YieldService) DeleteEarning(earningID int64) error {
	return s.inTx(func(tx *sql.Tx) error {
		return s.yieldRepo.Delete(tx, earningID)
	})
}

// SyncTransaction recomputes the analytic rows of every earning the
// transaction is entitled to (same asset, hold date on or after the
// transaction date), as one batch. A transaction that has already vanished
// from the wallet store produces no writes.
func (s *YieldService) SyncTransaction(transactionID int64) error {
	t, err := s.walletRepo.GetTransaction(transactionID)
	if errors.Is(err, apperrors.ErrTransactionNotFound) {
		s.log.Debug().Int64("transaction_id", transactionID).Msg("transaction vanished before processing")
		return nil
	}
	if err != nil {
		return err
	}

	ids, err := s.walletRepo.EarningIDsEntitledTo(t.AssetB3Code, t.Date)
	if err != nil {
		return err
	}

	return s.recomputeBatch(ids)
}

// SyncAssetOfEarning handles the deleted-transaction fan-out. The
// transaction row is gone, so the affected asset is read back from the
// analytic table via the referenced earning id, and every analytic row for
// that asset is recomputed. This is best-effort: if the analytic table has
// no row for the earning, there is nothing to re-derive from.
func (s *YieldService) SyncAssetOfEarning(earningID int64) error {
	b3Code, err := s.yieldRepo.AssetCode(earningID)
	if errors.Is(err, apperrors.ErrYieldNotFound) {
		s.log.Debug().Int64("earning_id", earningID).Msg("no analytic row to re-derive asset from")
		return nil
	}
	if err != nil {
		return err
	}

	ids, err := s.yieldRepo.EarningIDsByAsset(b3Code)
	if err != nil {
		return err
	}

	return s.recomputeBatch(ids)
}

// SyncMonth recomputes every analytic row whose earning's hold date falls
// in the given year and month. Economic-index writes fan out through here.
func (s *YieldService) SyncMonth(year int, month time.Month) error {
	ids, err := s.walletRepo.EarningIDsForMonth(year, month)
	if err != nil {
		return err
	}
	return s.recomputeBatch(ids)
}

// DeleteAsset removes every analytic row keyed by the given B3 code.
func (s *YieldService) DeleteAsset(b3Code string) error {
	return s.inTx(func(tx *sql.Tx) error {
		return s.yieldRepo.DeleteByAsset(tx, b3Code)
	})
}

// Reconcile runs the reconciliation sweep. When the wallet and analytic
// row counts differ the table has drifted: orphan rows are pruned and every
// wallet earning is recomputed, all in one transaction. When the counts
// match, the same rebuild still runs with probability temperature, to heal
// drift that slipped past the event path (restored backups, out-of-band
// writes). Returns whether a rebuild ran.
func (s *YieldService) Reconcile() (bool, error) {
	earningCount, err := s.walletRepo.CountEarnings()
	if err != nil {
		return false, err
	}
	yieldCount, err := s.yieldRepo.Count()
	if err != nil {
		return false, err
	}

	if earningCount == yieldCount {
		if s.temperature <= 0 || s.sample() >= s.temperature {
			return false, nil
		}
		s.log.Debug().Float64("temperature", s.temperature).Msg("temperature sample forced a rebuild")
	} else {
		s.log.Info().
			Int64("earnings", earningCount).
			Int64("yield_rows", yieldCount).
			Msg("earning_yield drifted from wallet, rebuilding")
	}

	ids, err := s.walletRepo.AllEarningIDs()
	if err != nil {
		return false, err
	}

	err = s.inTx(func(tx *sql.Tx) error {
		if err := s.yieldRepo.DeleteExcept(tx, ids); err != nil {
			return err
		}
		for _, id := range ids {
			if err := s.recompute(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// recomputeBatch recomputes a set of earnings inside one transaction.
func (s *YieldService) recomputeBatch(earningIDs []int64) error {
	if len(earningIDs) == 0 {
		return nil
	}
	return s.inTx(func(tx *sql.Tx) error {
		for _, id := range earningIDs {
			if err := s.recompute(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// recompute derives the analytic row for one earning from current upstream
// state and upserts it. Data inconsistencies resolve to documented
// defaults: a missing position yields shares=0/avg_price=0 (and yoc=0), a
// missing economic row yields 0.0 for that index. A missing earning deletes
// the analytic row.
func (s *YieldService) recompute(tx *sql.Tx, earningID int64) error {
	e, assetKind, err := s.walletRepo.GetEarning(earningID)
	if errors.Is(err, apperrors.ErrEarningNotFound) {
		return s.yieldRepo.Delete(tx, earningID)
	}
	if err != nil {
		return err
	}

	pos, err := s.ledger.PositionAt(e.AssetB3Code, e.HoldDate)
	if err != nil {
		return err
	}

	changes, err := s.walletRepo.EconomicChangesForMonth(model.MonthEnd(e.HoldDate))
	if err != nil {
		return err
	}

	row := model.ComputeEarningYield(e, assetKind, pos, changes[model.IndexCDI], changes[model.IndexIPCA])
	return s.yieldRepo.Upsert(tx, row)
}

// inTx runs fn inside an analytic-store transaction, committing on success
// and rolling back on any error.
func (s *YieldService) inTx(fn func(*sql.Tx) error) error {
	tx, err := s.analyticDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin analytic transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analytic transaction: %w", err)
	}
	return nil
}
