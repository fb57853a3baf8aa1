// Package splitter turns a recorded expense into per-participant shares and
// the ledger deltas that follow from them.
package splitter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
)

// Config controls share computation.
type Config struct {
	Rounding          calculator.Rounding
	StrictCustomSplit bool
}

// Splitter is the Expense Splitter.
type Splitter struct {
	ledger *ledger.Ledger
	cfg    Config
}

// New creates a Splitter that writes through l.
func New(l *ledger.Ledger, cfg Config) *Splitter {
	return &Splitter{ledger: l, cfg: cfg}
}

// Request describes an expense to record.
type Request struct {
	GroupID     string
	PayerID     string
	Amount      decimal.Decimal
	Description string
	Kind        models.SplitKind

	// ParticipantIDs is used by equal splits. Empty means every group member.
	ParticipantIDs []string

	// CustomShares is used by custom splits.
	CustomShares []calculator.Share
}

// Result is what Split produced.
type Result struct {
	Expense  *models.Expense
	Deltas   []models.LedgerDelta
	Balances []models.Balance
}

// Split records an expense and applies one ledger delta per participant
// other than the payer. The expense, its shares and the deltas commit
// together or not at all.
func (s *Splitter) Split(ctx context.Context, req Request) (*Result, error) {
	amount := calculator.Money(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", models.ErrValidation, req.Amount)
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown split kind %q", models.ErrValidation, req.Kind)
	}
	if req.PayerID == "" {
		return nil, fmt.Errorf("%w: payer is required", models.ErrValidation)
	}

	group, err := s.ledger.Store().GetGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(req.PayerID) {
		return nil, fmt.Errorf("%w: payer %s is not a member of group %s", models.ErrValidation, req.PayerID, group.ID)
	}

	shares, err := s.shares(group, amount, req)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     req.PayerID,
		Amount:      amount,
		Description: req.Description,
		SplitKind:   req.Kind,
		Shares:      make([]models.ExpenseShare, len(shares)),
	}
	var deltas []models.LedgerDelta
	var keys []models.BalanceKey
	for i, sh := range shares {
		expense.Shares[i] = models.ExpenseShare{ParticipantID: sh.ParticipantID, Amount: sh.Amount}

		// The payer never owes themselves, and a zero share owes nothing.
		if sh.ParticipantID == req.PayerID || !sh.Amount.IsPositive() {
			continue
		}
		key := models.BalanceKey{GroupID: group.ID, DebtorID: sh.ParticipantID, CreditorID: req.PayerID}
		deltas = append(deltas, models.LedgerDelta{Key: key, Delta: sh.Amount})
		keys = append(keys, key)
	}

	result := &Result{Expense: expense, Deltas: deltas}
	err = s.ledger.Update(ctx, keys, func(tx *ledger.Tx) error {
		if err := tx.Queries().CreateExpense(ctx, expense); err != nil {
			return err
		}
		result.Balances = result.Balances[:0]
		for _, d := range deltas {
			change, err := tx.ApplyDelta(ctx, d.Key, d.Delta)
			if err != nil {
				return fmt.Errorf("failed to apply share of %s: %w", d.Key.DebtorID, err)
			}
			result.Balances = append(result.Balances, change.Balance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ExpenseCreated(expense.SplitKind)
	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"payer_id", expense.PayerID,
		"amount", expense.Amount.StringFixed(2),
		"shares", len(expense.Shares),
		"deltas", len(deltas),
	)

	return result, nil
}

func (s *Splitter) shares(group *models.Group, amount decimal.Decimal, req Request) ([]calculator.Share, error) {
	switch req.Kind {
	case models.SplitEqual:
		participants := req.ParticipantIDs
		if len(participants) == 0 {
			participants = group.Members
		}
		if err := requireMembers(group, participants); err != nil {
			return nil, err
		}
		return calculator.EqualSplit(amount, participants, s.cfg.Rounding)
	default:
		ids := make([]string, len(req.CustomShares))
		for i, sh := range req.CustomShares {
			ids[i] = sh.ParticipantID
		}
		if err := requireMembers(group, ids); err != nil {
			return nil, err
		}
		return calculator.CustomSplit(amount, req.CustomShares, s.cfg.StrictCustomSplit)
	}
}

func requireMembers(group *models.Group, userIDs []string) error {
	for _, id := range userIDs {
		if !group.HasMember(id) {
			return fmt.Errorf("%w: %s is not a member of group %s", models.ErrValidation, id, group.ID)
		}
	}
	return nil
}

// Expense returns an expense with its shares.
func (s *Splitter) Expense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.ledger.Store().GetExpense(ctx, expenseID)
}

// ListExpenses returns a group's expenses, newest first.
func (s *Splitter) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := s.ledger.Store().GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.ledger.Store().ListExpensesByGroup(ctx, groupID)
}
