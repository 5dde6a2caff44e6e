package repository_test

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/invest-earning/event-engine/internal/errors"
	"github.com/invest-earning/event-engine/internal/model"
	"github.com/invest-earning/event-engine/internal/repository"
	"github.com/invest-earning/event-engine/internal/testutil"
)

func TestGetEarning(t *testing.T) {
	t.Run("Returns the earning with its asset kind", func(t *testing.T) {
		db := testutil.SetupWalletDB(t)
		repo := repository.NewWalletRepository(db)

		testutil.NewAsset("HGLG11").WithKind(model.AssetFII).Build(t, db)
		created := testutil.NewEarning("HGLG11").
			WithHoldDate(2024, time.May, 10).
			WithValuePerShare(1.1).
			WithKind(model.EarningDividend).
			Build(t, db)

		e, kind, err := repo.GetEarning(created.ID)
		if err != nil {
			t.Fatalf("GetEarning failed: %v", err)
		}

		if e.AssetB3Code != "HGLG11" || e.ValuePerShare != 1.1 {
			t.Errorf("Unexpected earning: %+v", e)
		}
		if !e.HoldDate.Equal(created.HoldDate) {
			t.Errorf("Expected hold date %v, got %v", created.HoldDate, e.HoldDate)
		}
		if kind != model.AssetFII {
			t.Errorf("Expected asset kind fii, got %v", kind)
		}
	})

	t.Run("Vanished asset resolves to an empty kind", func(t *testing.T) {
		db := testutil.SetupWalletDB(t)
		repo := repository.NewWalletRepository(db)

		created := testutil.NewEarning("GONE3").Build(t, db)

		_, kind, err := repo.GetEarning(created.ID)
		if err != nil {
			t.Fatalf("GetEarning failed: %v", err)
		}
		if kind != "" {
			t.Errorf("Expected empty asset kind, got %q", kind)
		}
	})

	t.Run("Missing earning returns a typed error", func(t *testing.T) {
		db := testutil.SetupWalletDB(t)
		repo := repository.NewWalletRepository(db)

		_, _, err := repo.GetEarning(999)
		if !errors.Is(err, apperrors.ErrEarningNotFound) {
			t.Errorf("Expected ErrEarningNotFound, got %v", err)
		}
	})
}

func TestEarningIDsEntitledTo(t *testing.T) {
	db := testutil.SetupWalletDB(t)
	repo := repository.NewWalletRepository(db)

	testutil.NewAsset("PETR4").Build(t, db)
	testutil.NewAsset("HGLG11").WithKind(model.AssetFII).Build(t, db)

	before := testutil.NewEarning("PETR4").WithHoldDate(2024, time.January, 5).Build(t, db)
	onDate := testutil.NewEarning("PETR4").WithHoldDate(2024, time.February, 1).Build(t, db)
	after := testutil.NewEarning("PETR4").WithHoldDate(2024, time.June, 20).Build(t, db)
	testutil.NewEarning("HGLG11").WithHoldDate(2024, time.June, 20).Build(t, db)

	ids, err := repo.EarningIDsEntitledTo("PETR4", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EarningIDsEntitledTo failed: %v", err)
	}

	if len(ids) != 2 {
		t.Fatalf("Expected 2 entitled earnings, got %d: %v", len(ids), ids)
	}
	if ids[0] != onDate.ID || ids[1] != after.ID {
		t.Errorf("Expected ids [%d %d], got %v", onDate.ID, after.ID, ids)
	}
	for _, id := range ids {
		if id == before.ID {
			t.Errorf("Earning held before the transaction date must not be entitled")
		}
	}
}

func TestEarningIDsForMonth(t *testing.T) {
	db := testutil.SetupWalletDB(t)
	repo := repository.NewWalletRepository(db)

	testutil.NewAsset("PETR4").Build(t, db)
	inMonth := testutil.NewEarning("PETR4").WithHoldDate(2024, time.May, 10).Build(t, db)
	lastDay := testutil.NewEarning("PETR4").WithHoldDate(2024, time.May, 31).Build(t, db)
	testutil.NewEarning("PETR4").WithHoldDate(2024, time.June, 1).Build(t, db)

	ids, err := repo.EarningIDsForMonth(2024, time.May)
	if err != nil {
		t.Fatalf("EarningIDsForMonth failed: %v", err)
	}

	if len(ids) != 2 || ids[0] != inMonth.ID || ids[1] != lastDay.ID {
		t.Errorf("Expected ids [%d %d], got %v", inMonth.ID, lastDay.ID, ids)
	}
}

func TestEconomicChangesForMonth(t *testing.T) {
	db := testutil.SetupWalletDB(t)
	repo := repository.NewWalletRepository(db)

	testutil.NewEconomicData(model.IndexCDI).WithReferenceDate(2024, time.May, 31).WithChange(0.83).Build(t, db)
	testutil.NewEconomicData(model.IndexIPCA).WithReferenceDate(2024, time.May, 31).WithChange(0.46).Build(t, db)
	testutil.NewEconomicData(model.IndexIMAB).WithReferenceDate(2024, time.May, 31).WithChange(1.2).Build(t, db)
	testutil.NewEconomicData(model.IndexCDI).WithReferenceDate(2024, time.April, 30).WithChange(0.9).Build(t, db)

	changes, err := repo.EconomicChangesForMonth(time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EconomicChangesForMonth failed: %v", err)
	}

	if changes[model.IndexCDI] != 0.83 {
		t.Errorf("Expected CDI 0.83, got %v", changes[model.IndexCDI])
	}
	if changes[model.IndexIPCA] != 0.46 {
		t.Errorf("Expected IPCA 0.46, got %v", changes[model.IndexIPCA])
	}
	if _, ok := changes[model.IndexIMAB]; ok {
		t.Error("Expected IMA-B to be filtered out of the result")
	}
}

func TestEconomicChangesForMonthPrefersLatestRow(t *testing.T) {
	db := testutil.SetupWalletDB(t)
	repo := repository.NewWalletRepository(db)

	// A mid-month row alongside the month-end one; the latest date must win
	// on every lookup.
	testutil.NewEconomicData(model.IndexCDI).WithReferenceDate(2024, time.May, 15).WithChange(0.7).Build(t, db)
	testutil.NewEconomicData(model.IndexCDI).WithReferenceDate(2024, time.May, 31).WithChange(0.83).Build(t, db)

	monthEnd := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		changes, err := repo.EconomicChangesForMonth(monthEnd)
		if err != nil {
			t.Fatalf("EconomicChangesForMonth failed: %v", err)
		}
		if changes[model.IndexCDI] != 0.83 {
			t.Fatalf("Expected the month-end CDI row (0.83) to win, got %v", changes[model.IndexCDI])
		}
	}
}
