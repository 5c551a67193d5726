// Package csvstore loads customer, transaction, and product data from CSV
// files in a configured directory.
//
// When a fallback store is attached (sample data opt-in), a missing or empty
// file degrades to the fallback instead of failing. Malformed dates never
// degrade: scoring on silently-coerced dates would be wrong, so they fail
// loudly.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/logger"
	"github.com/freshmart/retention/internal/store"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Store reads the FreshMart CSV exports. Safe for concurrent use: every load
// re-reads the file.
type Store struct {
	dir      string
	fallback store.Store
}

// New creates a CSV-backed store. A non-nil fallback is consulted when a
// file is missing or empty; pass nil to make missing data a hard error.
func New(dir string, fallback store.Store) *Store {
	return &Store{dir: dir, fallback: fallback}
}

// LoadCustomers reads customers.csv.
func (s *Store) LoadCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.readFile("customers.csv")
	if err != nil {
		if s.fallback != nil {
			logger.Warn("customers.csv unavailable, using sample data", "error", err.Error())
			return s.fallback.LoadCustomers(ctx)
		}
		return nil, fmt.Errorf("%w: customers.csv: %v", store.ErrNotAvailable, err)
	}

	required := []string{"customer_id", "first_name", "last_name"}
	if err := rows.requireColumns(required); err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(rows.records))
	for _, rec := range rows.records {
		customers = append(customers, domain.Customer{
			CustomerID:       rows.field(rec, "customer_id"),
			FirstName:        rows.field(rec, "first_name"),
			LastName:         rows.field(rec, "last_name"),
			Phone:            rows.field(rec, "phone"),
			Email:            rows.field(rec, "email"),
			City:             rows.field(rec, "city"),
			LoyaltyTier:      rows.field(rec, "loyalty_tier"),
			ChurnRisk:        rows.field(rec, "churn_risk"),
			FavoriteCategory: rows.field(rec, "favorite_category"),
		})
	}

	logger.Info("customers loaded", "path", filepath.Join(s.dir, "customers.csv"), "count", len(customers))
	return customers, nil
}

// LoadTransactions reads transactions.csv. An unparseable date or amount is
// a hard error even when a fallback is configured.
func (s *Store) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.readFile("transactions.csv")
	if err != nil {
		if s.fallback != nil {
			logger.Warn("transactions.csv unavailable, using sample data", "error", err.Error())
			return s.fallback.LoadTransactions(ctx)
		}
		return nil, fmt.Errorf("%w: transactions.csv: %v", store.ErrNotAvailable, err)
	}

	required := []string{"transaction_id", "customer_id", "amount", "date"}
	if err := rows.requireColumns(required); err != nil {
		return nil, err
	}

	txns := make([]domain.Transaction, 0, len(rows.records))
	for i, rec := range rows.records {
		amount, err := strconv.ParseFloat(rows.field(rec, "amount"), 64)
		if err != nil {
			return nil, fmt.Errorf("transactions.csv row %d: bad amount %q", i+2, rows.field(rec, "amount"))
		}
		date, err := parseDate(rows.field(rec, "date"))
		if err != nil {
			return nil, fmt.Errorf("transactions.csv row %d: %w", i+2, err)
		}
		txns = append(txns, domain.Transaction{
			TransactionID: rows.field(rec, "transaction_id"),
			CustomerID:    rows.field(rec, "customer_id"),
			ProductID:     rows.field(rec, "product_id"),
			Amount:        amount,
			Date:          date,
		})
	}

	logger.Info("transactions loaded", "path", filepath.Join(s.dir, "transactions.csv"), "count", len(txns))
	return txns, nil
}

// LoadProducts reads products.csv.
func (s *Store) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.readFile("products.csv")
	if err != nil {
		if s.fallback != nil {
			return s.fallback.LoadProducts(ctx)
		}
		return nil, fmt.Errorf("%w: products.csv: %v", store.ErrNotAvailable, err)
	}

	if err := rows.requireColumns([]string{"product_id"}); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(rows.records))
	for _, rec := range rows.records {
		price, _ := strconv.ParseFloat(rows.field(rec, "price"), 64)
		products = append(products, domain.Product{
			ProductID:   rows.field(rec, "product_id"),
			ProductName: rows.field(rec, "product_name"),
			Category:    rows.field(rec, "category"),
			Price:       price,
		})
	}
	return products, nil
}

type table struct {
	name    string
	columns map[string]int
	records [][]string
}

func (s *Store) readFile(name string) (*table, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s is empty", name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", name, err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[col] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no data rows", name)
	}

	return &table{name: name, columns: columns, records: records}, nil
}

func (t *table) requireColumns(names []string) error {
	for _, name := range names {
		if _, ok := t.columns[name]; !ok {
			return fmt.Errorf("%s missing required column %q", t.name, name)
		}
	}
	return nil
}

// field returns the named column for a record, or "" when the column is
// absent. Optional columns read as empty strings.
func (t *table) field(rec []string, name string) string {
	idx, ok := t.columns[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", raw)
}
