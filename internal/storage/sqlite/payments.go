package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

const paymentColumns = `id, group_id, from_user_id, to_user_id, amount, expense_id, note, created_at, created_by, applied, excess`

// nullable stores empty strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreatePayment appends a payment to the log, including whether it was
// applied to a balance and any excess.
func (q *queries) CreatePayment(ctx context.Context, payment *models.Payment) error {
	// Generate ID if not set
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	_, err := q.db.ExecContext(ctx,
		`INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, nullable(payment.GroupID), payment.FromUserID, payment.ToUserID,
		payment.Amount.StringFixed(2), nullable(payment.ExpenseID), nullable(payment.Note),
		payment.CreatedAt, payment.CreatedBy, payment.Applied, payment.Excess.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	payment := &models.Payment{}
	var groupID, expenseID, note sql.NullString

	if err := row.Scan(&payment.ID, &groupID, &payment.FromUserID, &payment.ToUserID,
		&payment.Amount, &expenseID, &note, &payment.CreatedAt, &payment.CreatedBy,
		&payment.Applied, &payment.Excess); err != nil {
		return nil, err
	}

	payment.GroupID = groupID.String
	payment.ExpenseID = expenseID.String
	payment.Note = note.String
	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (q *queries) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := scanPayment(q.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, paymentID,
	))
	if err != nil {
		return nil, notFound(err, "payment", paymentID)
	}
	return payment, nil
}

// ListPaymentsByUser retrieves payments the user sent or received.
func (q *queries) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	return q.listPayments(ctx, "from_user_id = ? OR to_user_id = ?", userID, userID)
}

// ListPaymentsByGroup retrieves all payments applied to a group.
func (q *queries) ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error) {
	return q.listPayments(ctx, "group_id = ?", groupID)
}

// ListPaymentsBetween retrieves payments from one user to another.
func (q *queries) ListPaymentsBetween(ctx context.Context, fromUserID, toUserID string) ([]*models.Payment, error) {
	return q.listPayments(ctx, "from_user_id = ? AND to_user_id = ?", fromUserID, toUserID)
}

func (q *queries) listPayments(ctx context.Context, where string, args ...any) ([]*models.Payment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE `+where+` ORDER BY created_at DESC, seq DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
