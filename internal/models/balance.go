package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BalanceStatus is the settlement state of a ledger row.
type BalanceStatus string

const (
	// StatusPending means no payment has reduced the balance since it last grew.
	StatusPending BalanceStatus = "PENDING"
	// StatusPartial means payments reduced the balance but some amount remains.
	StatusPartial BalanceStatus = "PARTIAL"
	// StatusSettled means nothing is owed. A new expense reopens the row.
	StatusSettled BalanceStatus = "SETTLED"
)

// Open reports whether the balance still carries debt.
func (s BalanceStatus) Open() bool {
	return s == StatusPending || s == StatusPartial
}

// BalanceKey uniquely identifies a directional ledger row.
type BalanceKey struct {
	GroupID    string
	DebtorID   string
	CreditorID string
}

// Reverse returns the key for the opposite direction in the same group.
func (k BalanceKey) Reverse() BalanceKey {
	return BalanceKey{GroupID: k.GroupID, DebtorID: k.CreditorID, CreditorID: k.DebtorID}
}

// Less orders keys lexicographically by group, debtor then creditor.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.GroupID != o.GroupID {
		return k.GroupID < o.GroupID
	}
	if k.DebtorID != o.DebtorID {
		return k.DebtorID < o.DebtorID
	}
	return k.CreditorID < o.CreditorID
}

func (k BalanceKey) String() string {
	return fmt.Sprintf("%s:%s->%s", k.GroupID, k.DebtorID, k.CreditorID)
}

// Balance is the amount DebtorID owes CreditorID within GroupID.
// Amount is never negative and is zero exactly when Status is StatusSettled.
type Balance struct {
	BalanceKey

	Amount decimal.Decimal
	Status BalanceStatus

	// UpdatedAt is the Unix timestamp of the last delta applied.
	UpdatedAt int64
}

// SimplifiedTransfer is one transfer of a netting plan. It is recomputed on demand.
type SimplifiedTransfer struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
}
