// Package payments records money changing hands and reduces the matching
// ledger balance.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
)

// PartialNotePrefix is prepended to the note of partial payments.
const PartialNotePrefix = "Partial payment: "

// Recorder is the Payment Recorder.
type Recorder struct {
	ledger *ledger.Ledger
}

// NewRecorder creates a Recorder that writes through l.
func NewRecorder(l *ledger.Ledger) *Recorder {
	return &Recorder{ledger: l}
}

// Request describes a payment from one user to another.
type Request struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	ExpenseID  string
	Note       string
	CreatedBy  string
}

// RecordPayment logs a payment and, when a group can be resolved, reduces
// the (group, from, to) balance by the amount in the same transaction.
//
// A payment that cannot be tied to a group, or that has no outstanding
// balance to reduce, is still logged with Applied=false.
func (r *Recorder) RecordPayment(ctx context.Context, req Request) (*models.Payment, error) {
	if req.FromUserID == "" || req.ToUserID == "" {
		return nil, fmt.Errorf("%w: payer and payee are required", models.ErrValidation)
	}
	if req.FromUserID == req.ToUserID {
		return nil, fmt.Errorf("%w: cannot pay yourself", models.ErrValidation)
	}
	amount := calculator.Money(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", models.ErrValidation, req.Amount)
	}

	groupID, err := r.resolveGroup(ctx, req)
	if err != nil && !errors.Is(err, models.ErrGroupUnresolved) {
		return nil, err
	}

	payment := &models.Payment{
		GroupID:    groupID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     amount,
		ExpenseID:  req.ExpenseID,
		Note:       req.Note,
		CreatedBy:  req.CreatedBy,
		Excess:     decimal.Zero,
	}
	if payment.CreatedBy == "" {
		payment.CreatedBy = req.FromUserID
	}

	if groupID == "" {
		slog.Warn("Payment not tied to any group, recording without ledger update",
			"from_user_id", req.FromUserID,
			"to_user_id", req.ToUserID,
			"amount", amount.StringFixed(2),
		)
		if err := r.ledger.Store().CreatePayment(ctx, payment); err != nil {
			return nil, err
		}
		metrics.PaymentRecorded(false)
		return payment, nil
	}

	key := models.BalanceKey{GroupID: groupID, DebtorID: req.FromUserID, CreditorID: req.ToUserID}
	err = r.ledger.Update(ctx, []models.BalanceKey{key}, func(tx *ledger.Tx) error {
		change, err := tx.ApplyDelta(ctx, key, amount.Neg())
		switch {
		case errors.Is(err, models.ErrNotFound):
			payment.Applied = false
		case err != nil:
			return err
		default:
			payment.Applied = true
			payment.Excess = change.Excess
		}
		return tx.Queries().CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	if !payment.Applied {
		slog.Warn("No outstanding balance for payment, recorded without ledger update",
			"payment_id", payment.ID,
			"group_id", groupID,
		)
	}
	metrics.PaymentRecorded(payment.Applied)
	slog.Info("Payment recorded",
		"payment_id", payment.ID,
		"group_id", payment.GroupID,
		"from_user_id", payment.FromUserID,
		"to_user_id", payment.ToUserID,
		"amount", payment.Amount.StringFixed(2),
		"applied", payment.Applied,
	)

	return payment, nil
}

// RecordPartialPayment records a payment whose note is marked as partial.
func (r *Recorder) RecordPartialPayment(ctx context.Context, req Request) (*models.Payment, error) {
	req.Note = PartialNotePrefix + req.Note
	return r.RecordPayment(ctx, req)
}

// resolveGroup picks the group whose ledger the payment reduces: the linked
// expense's group when given, otherwise the first balance where from owes to.
// Open balances win over settled ones. A linked expense must belong to a
// group that the payer or the payee is a member of.
func (r *Recorder) resolveGroup(ctx context.Context, req Request) (string, error) {
	store := r.ledger.Store()

	if req.ExpenseID != "" {
		expense, err := store.GetExpense(ctx, req.ExpenseID)
		if err != nil {
			return "", err
		}
		group, err := store.GetGroup(ctx, expense.GroupID)
		if err != nil {
			return "", err
		}
		if !group.HasMember(req.FromUserID) && !group.HasMember(req.ToUserID) {
			return "", fmt.Errorf("%w: expense %s is not in a group of either party", models.ErrValidation, req.ExpenseID)
		}
		return expense.GroupID, nil
	}

	owes, err := store.ListBalancesByDebtor(ctx, req.FromUserID)
	if err != nil {
		return "", err
	}
	fallback := ""
	for _, b := range owes {
		if b.CreditorID != req.ToUserID {
			continue
		}
		if b.Status.Open() {
			return b.GroupID, nil
		}
		if fallback == "" {
			fallback = b.GroupID
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", models.ErrGroupUnresolved
}

// Payment returns a logged payment.
func (r *Recorder) Payment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return r.ledger.Store().GetPayment(ctx, paymentID)
}

// ListByUser returns payments the user sent or received, newest first.
func (r *Recorder) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	return r.ledger.Store().ListPaymentsByUser(ctx, userID)
}

// ListByGroup returns payments applied to a group, newest first.
func (r *Recorder) ListByGroup(ctx context.Context, groupID string) ([]*models.Payment, error) {
	return r.ledger.Store().ListPaymentsByGroup(ctx, groupID)
}

// ListBetween returns payments from one user to another, newest first.
func (r *Recorder) ListBetween(ctx context.Context, fromUserID, toUserID string) ([]*models.Payment, error) {
	return r.ledger.Store().ListPaymentsBetween(ctx, fromUserID, toUserID)
}
