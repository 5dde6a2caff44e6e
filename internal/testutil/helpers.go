package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/invest-earning/event-engine/internal/repository"
	"github.com/invest-earning/event-engine/internal/service"
)

// NewTestYieldService wires a YieldService over the two test stores, with
// the position ledger backed by the wallet transaction history.
func NewTestYieldService(t *testing.T, walletDB, analyticDB *sql.DB, temperature float64) *service.YieldService {
	t.Helper()

	walletRepo := repository.NewWalletRepository(walletDB)
	yieldRepo := repository.NewYieldRepository(analyticDB)
	ledger := repository.NewPositionRepository(walletDB)

	return service.NewYieldService(
		analyticDB,
		walletRepo,
		yieldRepo,
		ledger,
		temperature,
		zerolog.Nop(),
	)
}

// MakeB3Code generates a unique ticker-style code for testing.
//
// Example usage:
//
//	code := testutil.MakeB3Code("PETR")
//	// Returns: "PETRA1B2"
func MakeB3Code(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
