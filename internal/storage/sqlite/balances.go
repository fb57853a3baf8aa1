package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
)

const balanceColumns = `group_id, debtor_id, creditor_id, amount, status, updated_at`

func scanBalance(row rowScanner) (models.Balance, error) {
	var b models.Balance
	var status string
	err := row.Scan(&b.GroupID, &b.DebtorID, &b.CreditorID, &b.Amount, &status, &b.UpdatedAt)
	b.Status = models.BalanceStatus(status)
	return b, err
}

// GetBalance retrieves the ledger row for key.
func (q *queries) GetBalance(ctx context.Context, key models.BalanceKey) (*models.Balance, error) {
	b, err := scanBalance(q.db.QueryRowContext(ctx,
		`SELECT `+balanceColumns+` FROM balances WHERE group_id = ? AND debtor_id = ? AND creditor_id = ?`,
		key.GroupID, key.DebtorID, key.CreditorID,
	))
	if err != nil {
		return nil, notFound(err, "balance", key.String())
	}
	return &b, nil
}

// PutBalance upserts the ledger row. Updates keep the row's original seq.
func (q *queries) PutBalance(ctx context.Context, balance *models.Balance) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO balances (`+balanceColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (group_id, debtor_id, creditor_id) DO UPDATE SET
		   amount = excluded.amount,
		   status = excluded.status,
		   updated_at = excluded.updated_at`,
		balance.GroupID, balance.DebtorID, balance.CreditorID,
		balance.Amount.StringFixed(2), string(balance.Status), balance.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %w", err)
	}
	return nil
}

// ListBalancesByGroup retrieves a group's ledger rows in creation order.
func (q *queries) ListBalancesByGroup(ctx context.Context, groupID string, statuses ...models.BalanceStatus) ([]models.Balance, error) {
	where := "group_id = ?"
	args := []any{groupID}
	if len(statuses) > 0 {
		where += " AND status IN (?" + repeatPlaceholder(len(statuses)-1) + ")"
		for _, s := range statuses {
			args = append(args, string(s))
		}
	}
	return q.listBalances(ctx, where, args...)
}

// ListBalancesByDebtor retrieves every row where userID owes money.
func (q *queries) ListBalancesByDebtor(ctx context.Context, userID string) ([]models.Balance, error) {
	return q.listBalances(ctx, "debtor_id = ?", userID)
}

// ListBalancesByCreditor retrieves every row where userID is owed money.
func (q *queries) ListBalancesByCreditor(ctx context.Context, userID string) ([]models.Balance, error) {
	return q.listBalances(ctx, "creditor_id = ?", userID)
}

func (q *queries) listBalances(ctx context.Context, where string, args ...any) ([]models.Balance, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+balanceColumns+` FROM balances WHERE `+where+` ORDER BY seq`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []models.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return balances, nil
}
