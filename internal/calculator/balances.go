package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// MemberBalance represents the position of one member across a group's open balances.
type MemberBalance struct {
	UserID     string
	NetBalance decimal.Decimal // Positive = gets money back, Negative = owes money
	Receivable decimal.Decimal // Total others owe this member
	Payable    decimal.Decimal // Total this member owes others
}

// NetBalances aggregates open ledger rows into one MemberBalance per user.
//
// Settled rows are skipped. Users appear in the order they are first seen
// while walking rows (debtor before creditor), which is the order the debt
// simplification relies on.
func NetBalances(rows []models.Balance) []MemberBalance {
	var order []string
	balances := make(map[string]*MemberBalance)

	get := func(userID string) *MemberBalance {
		if b, ok := balances[userID]; ok {
			return b
		}
		b := &MemberBalance{UserID: userID}
		balances[userID] = b
		order = append(order, userID)
		return b
	}

	for _, row := range rows {
		if !row.Status.Open() {
			continue
		}
		get(row.DebtorID).Payable = get(row.DebtorID).Payable.Add(row.Amount)
		get(row.CreditorID).Receivable = get(row.CreditorID).Receivable.Add(row.Amount)
	}

	result := make([]MemberBalance, 0, len(order))
	for _, id := range order {
		b := balances[id]
		b.NetBalance = b.Receivable.Sub(b.Payable)
		result = append(result, *b)
	}
	return result
}

// NetBalanceOf returns the net position of a single user, zero if absent.
func NetBalanceOf(rows []models.Balance, userID string) decimal.Decimal {
	for _, b := range NetBalances(rows) {
		if b.UserID == userID {
			return b.NetBalance
		}
	}
	return decimal.Zero
}

// SortByNetDesc orders balances from largest creditor to largest debtor.
func SortByNetDesc(balances []MemberBalance) {
	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].NetBalance.GreaterThan(balances[j].NetBalance)
	})
}
