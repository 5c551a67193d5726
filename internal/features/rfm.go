// Package features derives per-customer recency/frequency/monetary (RFM)
// aggregates from the transaction ledger. These aggregates drive the risk
// classifier and are recomputed on every scoring pass.
package features

import (
	"fmt"
	"time"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/logger"
)

// DataError indicates the transaction set is unusable for feature
// derivation. It fails loudly: scoring on bad features would be silently
// wrong downstream.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "features: " + e.Reason
}

// DeriveRFM computes RFM aggregates per customer.
//
// Recency is measured in whole days between snapshot and the customer's most
// recent transaction. A zero snapshot defaults to the max transaction date
// plus one day, so the most recent purchaser in the batch has recency 1.
//
// Customers with no transactions in the input are absent from the output:
// callers joining against a roster must treat a missing entry as "no
// purchase history", not as zero risk.
func DeriveRFM(transactions []domain.Transaction, snapshot time.Time) (map[string]domain.RFMFeatures, error) {
	if len(transactions) == 0 {
		return nil, &DataError{Reason: "empty transaction set"}
	}

	var maxDate time.Time
	for _, txn := range transactions {
		if txn.Date.IsZero() {
			return nil, &DataError{Reason: fmt.Sprintf("transaction %s has no parseable date", txn.TransactionID)}
		}
		if txn.Date.After(maxDate) {
			maxDate = txn.Date
		}
	}

	if snapshot.IsZero() {
		snapshot = maxDate.AddDate(0, 0, 1)
	}

	type agg struct {
		last      time.Time
		frequency int
		monetary  float64
	}
	byCustomer := make(map[string]*agg)

	for _, txn := range transactions {
		a, ok := byCustomer[txn.CustomerID]
		if !ok {
			a = &agg{}
			byCustomer[txn.CustomerID] = a
		}
		a.frequency++
		a.monetary += txn.Amount
		if txn.Date.After(a.last) {
			a.last = txn.Date
		}
	}

	rfm := make(map[string]domain.RFMFeatures, len(byCustomer))
	for id, a := range byCustomer {
		recency := int(snapshot.Sub(a.last).Hours() / 24)
		if recency < 0 {
			recency = 0
		}
		rfm[id] = domain.RFMFeatures{
			CustomerID: id,
			Recency:    recency,
			Frequency:  a.frequency,
			Monetary:   a.monetary,
		}
	}

	logger.Info("calculated RFM features", "customers", len(rfm), "transactions", len(transactions))
	return rfm, nil
}

// LastPurchase returns the most recent transaction for a customer, or false
// when the customer has no purchase history. Used by the campaign layer to
// build per-customer context.
func LastPurchase(transactions []domain.Transaction, customerID string) (domain.Transaction, bool) {
	var last domain.Transaction
	found := false
	for _, txn := range transactions {
		if txn.CustomerID != customerID {
			continue
		}
		if !found || txn.Date.After(last.Date) {
			last = txn
			found = true
		}
	}
	return last, found
}
