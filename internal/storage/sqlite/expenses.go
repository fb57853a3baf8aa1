package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

// CreateExpense persists a new expense and its shares.
// Callers outside a transaction go through SQLiteStore.CreateExpense.
func (q *queries) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	_, err := q.db.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, amount, description, split_kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Amount.StringFixed(2),
		expense.Description, string(expense.SplitKind), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Shares {
		share := &expense.Shares[i]
		share.ExpenseID = expense.ID
		_, err = q.db.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, participant_id, amount, settled) VALUES (?, ?, ?, ?)",
			share.ExpenseID, share.ParticipantID, share.Amount.StringFixed(2), share.Settled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (q *queries) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var kind string
	err := q.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, amount, description, split_kind, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
		&expense.Description, &kind, &expense.CreatedAt)
	if err != nil {
		return nil, notFound(err, "expense", expenseID)
	}
	expense.SplitKind = models.SplitKind(kind)

	rows, err := q.db.QueryContext(ctx,
		"SELECT expense_id, participant_id, amount, settled FROM expense_shares WHERE expense_id = ? ORDER BY seq",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var share models.ExpenseShare
		if err := rows.Scan(&share.ExpenseID, &share.ParticipantID, &share.Amount, &share.Settled); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		expense.Shares = append(expense.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	return expense, nil
}

// ListExpensesByGroup retrieves all expenses for a group, newest first.
func (q *queries) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount, description, split_kind, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, seq DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var kind string
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
			&expense.Description, &kind, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.SplitKind = models.SplitKind(kind)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// MarkSharesSettled flags the debtor's open shares on expenses the payer paid in the group.
func (q *queries) MarkSharesSettled(ctx context.Context, groupID, debtorID, payerID string) (int, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE expense_shares SET settled = 1
		 WHERE participant_id = ? AND settled = 0
		   AND expense_id IN (SELECT id FROM expenses WHERE group_id = ? AND payer_id = ?)`,
		debtorID, groupID, payerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark shares settled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}
