package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freshmart/retention/internal/domain"
)

// CustomerStore implements store.Store against PostgreSQL.
type CustomerStore struct{ db *sql.DB }

// NewCustomerStore creates a Postgres-backed customer data source.
func NewCustomerStore(db *sql.DB) *CustomerStore { return &CustomerStore{db: db} }

func (r *CustomerStore) LoadCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT customer_id, COALESCE(first_name,''), COALESCE(last_name,''),
		       COALESCE(phone,''), COALESCE(email,''), COALESCE(city,''),
		       COALESCE(loyalty_tier,''), COALESCE(churn_risk,''),
		       COALESCE(favorite_category,'')
		FROM customers
		ORDER BY customer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(
			&c.CustomerID, &c.FirstName, &c.LastName,
			&c.Phone, &c.Email, &c.City,
			&c.LoyaltyTier, &c.ChurnRisk, &c.FavoriteCategory,
		); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerStore) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, customer_id, product_id, amount, date
		FROM transactions
		ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.TransactionID, &t.CustomerID, &t.ProductID, &t.Amount, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *CustomerStore) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, COALESCE(product_name,''), COALESCE(category,''), price
		FROM products
		ORDER BY product_id
	`)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Category, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
