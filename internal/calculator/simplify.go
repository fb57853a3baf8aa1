package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// SimplifyOptions tunes SimplifyDebts.
type SimplifyOptions struct {
	// SortByMagnitude orders creditors and debtors by amount, largest first,
	// before matching. Off means first-seen order.
	SortByMagnitude bool
}

type position struct {
	userID string
	amount decimal.Decimal // always positive
}

// SimplifyDebts reduces a group's open balances to a set of transfers with
// the same net effect.
//
// Algorithm:
// - Net every user: debtor -= amount, creditor += amount over open rows
// - Split users into creditors (net > 0) and debtors (net < 0)
// - Walk both lists with two cursors, transferring min(credit, debt) each step
//
// The total transferred equals the sum of positive nets, and at most
// len(creditors)+len(debtors)-1 transfers are produced.
func SimplifyDebts(rows []models.Balance, opts SimplifyOptions) []models.SimplifiedTransfer {
	var creditors, debtors []position
	for _, b := range NetBalances(rows) {
		switch {
		case b.NetBalance.IsPositive():
			creditors = append(creditors, position{userID: b.UserID, amount: b.NetBalance})
		case b.NetBalance.IsNegative():
			debtors = append(debtors, position{userID: b.UserID, amount: b.NetBalance.Neg()})
		}
	}

	if opts.SortByMagnitude {
		byAmount := func(list []position) func(i, j int) bool {
			return func(i, j int) bool { return list[i].amount.GreaterThan(list[j].amount) }
		}
		sort.SliceStable(creditors, byAmount(creditors))
		sort.SliceStable(debtors, byAmount(debtors))
	}

	var transfers []models.SimplifiedTransfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := decimal.Min(debtor.amount, creditor.amount)
		if amount.IsPositive() {
			transfers = append(transfers, models.SimplifiedTransfer{
				FromUserID: debtor.userID,
				ToUserID:   creditor.userID,
				Amount:     amount,
			})
		}

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if !debtor.amount.IsPositive() {
			i++
		}
		if !creditor.amount.IsPositive() {
			j++
		}
	}

	return transfers
}
