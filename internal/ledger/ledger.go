// Package ledger maintains the directional balances between group members.
//
// Every balance is keyed by (group, debtor, creditor). Writers go through
// Update, which locks the keys it will touch, opens a store transaction and
// hands the caller a Tx. Everything written through the Tx commits or rolls
// back together, so an expense or payment and its ledger deltas are atomic.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/cache"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// ErrKeyNotLocked is returned when a Tx is asked to modify a key that was
// not declared to Update.
var ErrKeyNotLocked = errors.New("balance key not locked by this update")

// openStatuses are the statuses that still carry debt.
var openStatuses = []models.BalanceStatus{models.StatusPending, models.StatusPartial}

// Options tunes ledger behaviour.
type Options struct {
	// SortByMagnitude is passed through to the debt simplifier.
	SortByMagnitude bool
}

// Ledger is the Balance Ledger.
type Ledger struct {
	store storage.Store
	cache cache.Cache
	locks *keyedMutex
	opts  Options
	now   func() time.Time
}

// New creates a Ledger. c may be nil to disable caching of simplified plans.
func New(store storage.Store, c cache.Cache, opts Options) *Ledger {
	return &Ledger{
		store: store,
		cache: c,
		locks: newKeyedMutex(),
		opts:  opts,
		now:   time.Now,
	}
}

// Store returns the underlying store for read-only collaborators.
func (l *Ledger) Store() storage.Store {
	return l.store
}

// Change describes the effect of one delta.
type Change struct {
	Balance models.Balance

	// From is the status before the delta. Empty when the row was created.
	From models.BalanceStatus

	// Excess is the part of a reducing delta that went past zero and was discarded.
	Excess decimal.Decimal
}

// Tx applies deltas inside one Update.
type Tx struct {
	q       storage.Queries
	l       *Ledger
	locked  map[models.BalanceKey]struct{}
	changes []Change
}

// Queries exposes the transaction's store handle so callers can write their
// own records (expenses, payments) in the same transaction.
func (tx *Tx) Queries() storage.Queries {
	return tx.q
}

// Update locks keys, runs fn inside a single store transaction and, once the
// transaction commits, invalidates cached plans of every touched group.
func (l *Ledger) Update(ctx context.Context, keys []models.BalanceKey, fn func(tx *Tx) error) error {
	unlock := l.locks.lock(keys)
	defer unlock()

	locked := make(map[models.BalanceKey]struct{}, len(keys))
	for _, k := range keys {
		locked[k] = struct{}{}
	}

	var changes []Change
	err := l.store.InTx(ctx, func(q storage.Queries) error {
		tx := &Tx{q: q, l: l, locked: locked}
		if err := fn(tx); err != nil {
			return err
		}
		changes = tx.changes
		return nil
	})
	if err != nil {
		return err
	}

	touched := make(map[string]struct{})
	for _, c := range changes {
		metrics.StatusTransition(c.From, c.Balance.Status)
		touched[c.Balance.GroupID] = struct{}{}
	}
	for groupID := range touched {
		l.invalidate(ctx, groupID)
	}
	return nil
}

// ApplyDelta adds delta to the balance for key.
//
// Transition rules:
//   - missing row, delta > 0: created as Pending
//   - missing row, delta < 0: ErrNotFound, nothing owed
//   - amount+delta <= 0: floored to 0 and Settled, the remainder reported as Excess
//   - otherwise Pending for an increase, Partial for a reduction
func (tx *Tx) ApplyDelta(ctx context.Context, key models.BalanceKey, delta decimal.Decimal) (*Change, error) {
	if _, ok := tx.locked[key]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotLocked, key)
	}
	if key.DebtorID == key.CreditorID {
		return nil, fmt.Errorf("%w: debtor and creditor are the same user", models.ErrValidation)
	}
	delta = calculator.Money(delta)
	if delta.IsZero() {
		return nil, fmt.Errorf("%w: delta must be non-zero", models.ErrValidation)
	}

	current, err := tx.q.GetBalance(ctx, key)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	change := Change{Excess: decimal.Zero}
	if current == nil {
		if delta.IsNegative() {
			return nil, fmt.Errorf("no outstanding balance for %s: %w", key, models.ErrNotFound)
		}
		change.Balance = models.Balance{BalanceKey: key, Amount: delta, Status: models.StatusPending}
	} else {
		change.From = current.Status
		change.Balance = *current
		amount := current.Amount.Add(delta)

		switch {
		case !amount.IsPositive():
			change.Excess = amount.Neg()
			change.Balance.Amount = decimal.Zero
			change.Balance.Status = models.StatusSettled
		case delta.IsPositive():
			change.Balance.Amount = amount
			change.Balance.Status = models.StatusPending
		default:
			change.Balance.Amount = amount
			change.Balance.Status = models.StatusPartial
		}
	}
	change.Balance.UpdatedAt = tx.l.now().Unix()

	if err := tx.q.PutBalance(ctx, &change.Balance); err != nil {
		return nil, err
	}
	metrics.LedgerDelta(delta.IsPositive())

	if change.Excess.IsPositive() {
		slog.Warn("Delta exceeded outstanding balance, floored at zero",
			"key", key.String(),
			"excess", change.Excess.StringFixed(2),
		)
	}

	if change.Balance.Status == models.StatusSettled && change.From != models.StatusSettled {
		n, err := tx.q.MarkSharesSettled(ctx, key.GroupID, key.DebtorID, key.CreditorID)
		if err != nil {
			slog.Warn("Failed to flag settled expense shares", "key", key.String(), "error", err)
		} else {
			slog.Debug("Flagged settled expense shares", "key", key.String(), "count", n)
		}
	}

	slog.Debug("Applied ledger delta",
		"key", key.String(),
		"delta", delta.StringFixed(2),
		"amount", change.Balance.Amount.StringFixed(2),
		"status", change.Balance.Status,
	)

	tx.changes = append(tx.changes, change)
	return &change, nil
}

// ApplyDelta applies a single delta in its own transaction.
func (l *Ledger) ApplyDelta(ctx context.Context, groupID, debtorID, creditorID string, delta decimal.Decimal) (*models.Balance, error) {
	key := models.BalanceKey{GroupID: groupID, DebtorID: debtorID, CreditorID: creditorID}

	var result *Change
	err := l.Update(ctx, []models.BalanceKey{key}, func(tx *Tx) error {
		var err error
		result, err = tx.ApplyDelta(ctx, key, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result.Balance, nil
}

// Find returns the balance for the key, or an error wrapping models.ErrNotFound.
func (l *Ledger) Find(ctx context.Context, groupID, debtorID, creditorID string) (*models.Balance, error) {
	return l.store.GetBalance(ctx, models.BalanceKey{GroupID: groupID, DebtorID: debtorID, CreditorID: creditorID})
}

func (l *Ledger) invalidate(ctx context.Context, groupID string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.InvalidateGroup(ctx, groupID); err != nil {
		slog.Warn("Failed to invalidate simplified transfers", "group_id", groupID, "error", err)
	}
}
