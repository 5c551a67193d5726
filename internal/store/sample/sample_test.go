package sample

import (
	"context"
	"testing"
)

func TestNewIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a := New(42)
	b := New(42)

	customersA, _ := a.LoadCustomers(ctx)
	customersB, _ := b.LoadCustomers(ctx)
	if len(customersA) != len(customersB) {
		t.Fatalf("customer counts differ: %d vs %d", len(customersA), len(customersB))
	}
	for i := range customersA {
		if customersA[i] != customersB[i] {
			t.Fatalf("customer %d differs between same-seed stores", i)
		}
	}

	txnsA, _ := a.LoadTransactions(ctx)
	txnsB, _ := b.LoadTransactions(ctx)
	for i := range txnsA {
		if txnsA[i] != txnsB[i] {
			t.Fatalf("transaction %d differs between same-seed stores", i)
		}
	}
}

func TestSampleShape(t *testing.T) {
	ctx := context.Background()
	s := New(7)

	customers, err := s.LoadCustomers(ctx)
	if err != nil {
		t.Fatalf("LoadCustomers: %v", err)
	}
	if len(customers) != customerCount {
		t.Errorf("customers = %d, want %d", len(customers), customerCount)
	}
	for _, c := range customers {
		if !c.HasPhone() {
			t.Errorf("sample customer %s has no phone", c.CustomerID)
		}
	}

	txns, err := s.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("LoadTransactions: %v", err)
	}
	if len(txns) != transactionCount {
		t.Errorf("transactions = %d, want %d", len(txns), transactionCount)
	}
	for _, txn := range txns {
		if txn.Date.IsZero() {
			t.Errorf("transaction %s has zero date", txn.TransactionID)
		}
		if txn.Amount <= 0 {
			t.Errorf("transaction %s has non-positive amount", txn.TransactionID)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	ctx := context.Background()
	a, _ := New(1).LoadTransactions(ctx)
	b, _ := New(2).LoadTransactions(ctx)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical ledgers")
	}
}
