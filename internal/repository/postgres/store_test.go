package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { db.Close() }
}

func TestCustomerStore_LoadCustomers(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT customer_id").
		WillReturnRows(sqlmock.NewRows([]string{
			"customer_id", "first_name", "last_name", "phone", "email",
			"city", "loyalty_tier", "churn_risk", "favorite_category",
		}).
			AddRow("CUST100001", "Ana", "Diaz", "+15551230001", "ana@example.com", "Austin", "Gold", "High", "produce").
			AddRow("CUST100002", "Ben", "Okafor", "", "", "Dallas", "", "", ""))

	store := NewCustomerStore(db)
	customers, err := store.LoadCustomers(context.Background())
	if err != nil {
		t.Fatalf("LoadCustomers() error: %v", err)
	}

	if len(customers) != 2 {
		t.Fatalf("customers = %d, want 2", len(customers))
	}
	if customers[0].CustomerID != "CUST100001" || customers[0].ChurnRisk != "High" {
		t.Errorf("first customer = %+v", customers[0])
	}
	if customers[1].HasPhone() {
		t.Error("second customer should have no phone")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCustomerStore_LoadTransactions(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	when := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT transaction_id").
		WillReturnRows(sqlmock.NewRows([]string{
			"transaction_id", "customer_id", "product_id", "amount", "date",
		}).AddRow("TRANS1000001", "CUST100001", "PROD1001", 24.99, when))

	store := NewCustomerStore(db)
	transactions, err := store.LoadTransactions(context.Background())
	if err != nil {
		t.Fatalf("LoadTransactions() error: %v", err)
	}

	if len(transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(transactions))
	}
	if transactions[0].Amount != 24.99 || !transactions[0].Date.Equal(when) {
		t.Errorf("transaction = %+v", transactions[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCustomerStore_LoadProducts(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT product_id").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "product_name", "category", "price"}).
			AddRow("PROD1001", "Oat Milk", "dairy", 4.49))

	store := NewCustomerStore(db)
	products, err := store.LoadProducts(context.Background())
	if err != nil {
		t.Fatalf("LoadProducts() error: %v", err)
	}
	if len(products) != 1 || products[0].Category != "dairy" {
		t.Errorf("products = %+v", products)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCustomerStore_QueryError(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT customer_id").WillReturnError(errors.New("connection refused"))

	store := NewCustomerStore(db)
	if _, err := store.LoadCustomers(context.Background()); err == nil {
		t.Fatal("LoadCustomers() should surface query errors")
	}
}
