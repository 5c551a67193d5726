// Package sample generates a deterministic synthetic dataset for demo runs.
//
// Sample data is an explicit opt-in (data.allow_sample in config): it keeps
// the pipeline runnable without backing files, but silently substituting it
// in a real deployment would mask data-availability failures.
package sample

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/logger"
)

const (
	customerCount    = 50
	productCount     = 20
	transactionCount = 1000
	historyDays      = 730

	// demoPhone is the single number all sample customers share, so a demo
	// campaign only ever texts the operator.
	demoPhone = "+15550100000"
)

var (
	cities       = []string{"New York", "Chicago", "Houston", "Phoenix"}
	loyaltyTiers = []string{"Bronze", "Silver", "Gold", "Platinum"}
	categories   = []string{"Grocery", "Dairy", "Produce", "Bakery", "Meat"}
)

// Store serves the synthetic dataset. The dataset is generated once at
// construction from the seed, so repeated loads and repeated runs with the
// same seed see identical data.
type Store struct {
	customers    []domain.Customer
	products     []domain.Product
	transactions []domain.Transaction
}

// New builds a sample store from the given seed.
func New(seed int64) *Store {
	rng := rand.New(rand.NewSource(seed))
	s := &Store{}

	for i := 0; i < customerCount; i++ {
		s.customers = append(s.customers, domain.Customer{
			CustomerID:  fmt.Sprintf("CUST%d", 100000+i),
			FirstName:   fmt.Sprintf("Customer%d", i),
			LastName:    "Demo",
			Phone:       demoPhone,
			City:        cities[rng.Intn(len(cities))],
			LoyaltyTier: loyaltyTiers[rng.Intn(len(loyaltyTiers))],
		})
	}

	for i := 0; i < productCount; i++ {
		s.products = append(s.products, domain.Product{
			ProductID:   fmt.Sprintf("PROD%d", 1000+i),
			ProductName: fmt.Sprintf("Product %d", i+1),
			Category:    categories[rng.Intn(len(categories))],
			Price:       1.5 + rng.Float64()*18.5,
		})
	}

	start := time.Now().AddDate(0, 0, -historyDays).Truncate(24 * time.Hour)
	for i := 0; i < transactionCount; i++ {
		s.transactions = append(s.transactions, domain.Transaction{
			TransactionID: fmt.Sprintf("TRANS%d", 1000000+i),
			CustomerID:    s.customers[rng.Intn(customerCount)].CustomerID,
			ProductID:     s.products[rng.Intn(productCount)].ProductID,
			Amount:        10 + rng.Float64()*190,
			Date:          start.AddDate(0, 0, rng.Intn(historyDays)),
		})
	}

	logger.Info("sample dataset generated",
		"customers", customerCount, "transactions", transactionCount, "seed", seed)
	return s
}

// LoadCustomers returns the synthetic roster.
func (s *Store) LoadCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customers, nil
}

// LoadTransactions returns the synthetic ledger.
func (s *Store) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.transactions, nil
}

// LoadProducts returns the synthetic catalog.
func (s *Store) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products, nil
}
