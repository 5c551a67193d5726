// Package store defines the read-only data source contract for customer and
// transaction data. Implementations load from CSV files, Postgres, or the
// deterministic sample generator; the scoring and campaign layers never care
// which.
package store

import (
	"context"
	"errors"

	"github.com/freshmart/retention/internal/domain"
)

// ErrNotAvailable indicates the backing data cannot be read and no fallback
// is allowed. Callers treat it as a hard failure, not a degraded mode.
var ErrNotAvailable = errors.New("store: data not available")

// Store is the pull-based, read-only data source for the retention pipeline.
// Implementations must be safe for concurrent use.
type Store interface {
	// LoadCustomers returns the full customer roster in source order.
	LoadCustomers(ctx context.Context) ([]domain.Customer, error)

	// LoadTransactions returns the purchase ledger.
	LoadTransactions(ctx context.Context) ([]domain.Transaction, error)

	// LoadProducts returns the product catalog.
	LoadProducts(ctx context.Context) ([]domain.Product, error)
}
