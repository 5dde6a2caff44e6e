package repository_test

import (
	"testing"
	"time"

	"github.com/invest-earning/event-engine/internal/model"
	"github.com/invest-earning/event-engine/internal/repository"
	"github.com/invest-earning/event-engine/internal/testutil"
)

func TestPositionRepository(t *testing.T) {
	asOf := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	t.Run("Averages buy prices by shares", func(t *testing.T) {
		db := testutil.SetupWalletDB(t)
		repo := repository.NewPositionRepository(db)

		testutil.NewAsset("PETR4").Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.January, 10).WithShares(10).WithValuePerShare(100).Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.February, 10).WithShares(10).WithValuePerShare(200).Build(t, db)

		pos, err := repo.PositionAt("PETR4", asOf)
		if err != nil {
			t.Fatalf("PositionAt failed: %v", err)
		}

		if pos.Shares != 20 {
			t.Errorf("Expected 20 shares, got %d", pos.Shares)
		}
		if pos.AvgPrice != 150 {
			t.Errorf("Expected average price 150, got %v", pos.AvgPrice)
		}
	})

	t.Run("Sells reduce shares without touching average price", func(t *testing.T) {
		db := testutil.SetupWalletDB(t)
		repo := repository.NewPositionRepository(db)

		testutil.NewAsset("PETR4").Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.January, 10).WithShares(10).WithValuePerShare(100).Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.February, 10).WithShares(10).WithValuePerShare(200).Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.March, 10).Sell().WithShares(5).WithValuePerShare(250).Build(t, db)

		pos, err := repo.PositionAt("PETR4", asOf)
		if err != nil {
			t.Fatalf("PositionAt failed: %v", err)
		}

		if pos.Shares != 15 {
			t.Errorf("Expected 15 shares after sale, got %d", pos.Shares)
		}
		if pos.AvgPrice != 150 {
			t.Errorf("Expected average price to stay at 150, got %v", pos.AvgPrice)
		}
	})

	t.Run("Only transactions on or before the reference date count", func(t *testing.T) {
		db := testutil.SetupWalletDB(t)
		repo := repository.NewPositionRepository(db)

		testutil.NewAsset("PETR4").Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.January, 10).WithShares(10).WithValuePerShare(100).Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.June, 10).WithShares(10).WithValuePerShare(200).Build(t, db)

		pos, err := repo.PositionAt("PETR4", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("PositionAt failed: %v", err)
		}

		if pos.Shares != 10 || pos.AvgPrice != 100 {
			t.Errorf("Expected position (10, 100) at March, got (%d, %v)", pos.Shares, pos.AvgPrice)
		}
	})

	t.Run("Untraded asset defaults to an empty position", func(t *testing.T) {
		db := testutil.SetupWalletDB(t)
		repo := repository.NewPositionRepository(db)

		pos, err := repo.PositionAt("XXXX3", asOf)
		if err != nil {
			t.Fatalf("PositionAt failed: %v", err)
		}

		if pos.Shares != 0 || pos.AvgPrice != 0 {
			t.Errorf("Expected empty position, got %+v", pos)
		}
		if pos.B3Code != "XXXX3" {
			t.Errorf("Expected position to carry the asked code, got %q", pos.B3Code)
		}
	})

	t.Run("Net-zero assets are excluded from listings", func(t *testing.T) {
		db := testutil.SetupWalletDB(t)
		repo := repository.NewPositionRepository(db)

		testutil.NewAsset("PETR4").Build(t, db)
		testutil.NewAsset("HGLG11").WithKind(model.AssetFII).Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.January, 10).WithShares(10).WithValuePerShare(100).Build(t, db)
		testutil.NewTransaction("PETR4").WithDate(2024, time.February, 10).Sell().WithShares(10).WithValuePerShare(120).Build(t, db)
		testutil.NewTransaction("HGLG11").WithDate(2024, time.January, 10).WithShares(5).WithValuePerShare(160).Build(t, db)

		positions, err := repo.GetPositions(asOf, "")
		if err != nil {
			t.Fatalf("GetPositions failed: %v", err)
		}

		if len(positions) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(positions))
		}
		if positions[0].B3Code != "HGLG11" || positions[0].AssetKind != model.AssetFII {
			t.Errorf("Unexpected surviving position: %+v", positions[0])
		}
	})
}
