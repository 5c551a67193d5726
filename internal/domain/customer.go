package domain

import "time"

// Customer represents a single roster entry. Customer data is read-only to
// the scoring and campaign layers; only the data source writes it.
type Customer struct {
	CustomerID       string `json:"customer_id" db:"customer_id"`
	FirstName        string `json:"first_name" db:"first_name"`
	LastName         string `json:"last_name" db:"last_name"`
	Phone            string `json:"phone,omitempty" db:"phone"`
	Email            string `json:"email,omitempty" db:"email"`
	City             string `json:"city" db:"city"`
	LoyaltyTier      string `json:"loyalty_tier" db:"loyalty_tier"`
	ChurnRisk        string `json:"churn_risk,omitempty" db:"churn_risk"`
	FavoriteCategory string `json:"favorite_category,omitempty" db:"favorite_category"`
}

// FullName joins first and last name, trimming when either is empty.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// HasPhone reports whether the customer can be reached over SMS.
func (c Customer) HasPhone() bool { return c.Phone != "" }

// Transaction is one purchase event from the ledger. Immutable.
type Transaction struct {
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	CustomerID    string    `json:"customer_id" db:"customer_id"`
	ProductID     string    `json:"product_id" db:"product_id"`
	Amount        float64   `json:"amount" db:"amount"`
	Date          time.Time `json:"date" db:"date"`
}

// Product is a catalog entry, used for category lookups in campaign context.
type Product struct {
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	Category    string  `json:"category" db:"category"`
	Price       float64 `json:"price" db:"price"`
}
