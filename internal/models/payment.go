package models

import "github.com/shopspring/decimal"

// Payment is an append-only record of money that changed hands between two users.
// Payments are never mutated once logged.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group the payment was resolved to. Empty when no group
	// could be resolved. A payment linked to an expense keeps the expense's
	// group even when nothing was owed there; Applied tells the two apart.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal

	// ExpenseID optionally links the payment to an expense.
	ExpenseID string

	// Note is an optional description for the payment.
	Note string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this payment.
	CreatedBy string

	// Applied reports whether the payment reduced a ledger balance.
	Applied bool

	// Excess is the part of the amount that exceeded the outstanding balance
	// and was discarded when the balance was floored at zero.
	Excess decimal.Decimal
}
