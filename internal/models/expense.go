package models

import "github.com/shopspring/decimal"

// SplitKind selects how an expense is divided among participants.
type SplitKind string

const (
	// SplitEqual divides the amount evenly across participants.
	SplitEqual SplitKind = "EQUAL"
	// SplitCustom uses caller-supplied shares.
	SplitCustom SplitKind = "CUSTOM"
)

// Valid reports whether k is a known split kind.
func (k SplitKind) Valid() bool {
	return k == SplitEqual || k == SplitCustom
}

// Expense is an amount paid by one group member on behalf of several participants.
// It is created once and never mutated by the ledger.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// PayerID is the user who paid the full amount.
	PayerID string

	// Amount is the total paid, with two fractional digits.
	Amount decimal.Decimal

	// Description is a human-readable label (e.g., "Dinner", "Cab to airport").
	Description string

	// SplitKind records how shares were computed.
	SplitKind SplitKind

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// Shares are the per-participant shares, populated on reads that include them.
	Shares []ExpenseShare
}

// ExpenseShare is one participant's share of an expense.
type ExpenseShare struct {
	ExpenseID     string
	ParticipantID string
	Amount        decimal.Decimal

	// Settled is advisory bookkeeping. The authoritative state lives in the ledger.
	Settled bool
}

// LedgerDelta is a change to apply to one directional balance.
type LedgerDelta struct {
	Key   BalanceKey
	Delta decimal.Decimal
}
