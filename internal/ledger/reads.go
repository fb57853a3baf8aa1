package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
)

// ListGroup returns the group's balances in creation order, optionally
// filtered by status.
func (l *Ledger) ListGroup(ctx context.Context, groupID string, statuses ...models.BalanceStatus) ([]models.Balance, error) {
	return l.store.ListBalancesByGroup(ctx, groupID, statuses...)
}

// ListUser returns every balance the user owes and every balance owed to them.
func (l *Ledger) ListUser(ctx context.Context, userID string) (owes, owed []models.Balance, err error) {
	owes, err = l.store.ListBalancesByDebtor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	owed, err = l.store.ListBalancesByCreditor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return owes, owed, nil
}

// NetBalances returns every member's net position in the group, largest
// creditor first.
func (l *Ledger) NetBalances(ctx context.Context, groupID string) ([]calculator.MemberBalance, error) {
	rows, err := l.store.ListBalancesByGroup(ctx, groupID, openStatuses...)
	if err != nil {
		return nil, err
	}
	balances := calculator.NetBalances(rows)
	calculator.SortByNetDesc(balances)
	return balances, nil
}

// NetBalance returns one user's net position in the group. Positive means
// the user gets money back.
func (l *Ledger) NetBalance(ctx context.Context, groupID, userID string) (decimal.Decimal, error) {
	rows, err := l.store.ListBalancesByGroup(ctx, groupID, openStatuses...)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.NetBalanceOf(rows, userID), nil
}

// Simplify returns the reduced set of transfers that clears the group's
// open balances. Results are cached until the next write to the group, by
// this ledger or any other sharing the cache.
func (l *Ledger) Simplify(ctx context.Context, groupID string) ([]models.SimplifiedTransfer, error) {
	gen, cached := l.cachedPlan(ctx, groupID)
	if cached != nil {
		return cached, nil
	}

	start := time.Now()
	rows, err := l.store.ListBalancesByGroup(ctx, groupID, openStatuses...)
	if err != nil {
		return nil, err
	}
	transfers := calculator.SimplifyDebts(rows, calculator.SimplifyOptions{SortByMagnitude: l.opts.SortByMagnitude})
	metrics.ObserveSimplify(time.Since(start).Seconds())

	// Stored under the generation read before the rows; a write since then
	// has moved readers on to the next one.
	if gen != nil {
		if err := l.cache.SetTransfers(ctx, groupID, *gen, transfers); err != nil {
			slog.Warn("Failed to cache simplified transfers", "group_id", groupID, "error", err)
		}
	}

	return transfers, nil
}

// cachedPlan looks up the plan for the group's current generation. gen is
// nil when caching is off or the cache is unavailable.
func (l *Ledger) cachedPlan(ctx context.Context, groupID string) (gen *uint64, transfers []models.SimplifiedTransfer) {
	if l.cache == nil {
		return nil, nil
	}

	g, err := l.cache.Generation(ctx, groupID)
	if err != nil {
		metrics.CacheLookup("error")
		slog.Warn("Simplified transfer generation read failed", "group_id", groupID, "error", err)
		return nil, nil
	}

	transfers, ok, err := l.cache.GetTransfers(ctx, groupID, g)
	switch {
	case err != nil:
		metrics.CacheLookup("error")
		slog.Warn("Simplified transfer cache read failed", "group_id", groupID, "error", err)
	case ok:
		metrics.CacheLookup("hit")
		if transfers == nil {
			transfers = []models.SimplifiedTransfer{}
		}
		return &g, transfers
	default:
		metrics.CacheLookup("miss")
	}
	return &g, nil
}
