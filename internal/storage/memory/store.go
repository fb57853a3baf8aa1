package memory

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// Reads go through read; writes run as one-statement transactions.

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.InTx(ctx, func(q storage.Queries) error { return q.CreateUser(ctx, user) })
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return read(s, func(q *txQueries) (*models.User, error) { return q.GetUserByID(ctx, id) })
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return read(s, func(q *txQueries) (*models.User, error) { return q.GetUserByEmail(ctx, email) })
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	return read(s, func(q *txQueries) (map[string]*models.User, error) { return q.GetUsersByIDs(ctx, ids) })
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	return s.InTx(ctx, func(q storage.Queries) error { return q.CreateGroup(ctx, group) })
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return read(s, func(q *txQueries) (*models.Group, error) { return q.GetGroup(ctx, groupID) })
}

func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return read(s, func(q *txQueries) ([]*models.Group, error) { return q.ListGroupsForUser(ctx, userID) })
}

func (s *Store) AddGroupMember(ctx context.Context, groupID, userID string) (added bool, err error) {
	err = s.InTx(ctx, func(q storage.Queries) error {
		added, err = q.AddGroupMember(ctx, groupID, userID)
		return err
	})
	return added, err
}

func (s *Store) RemoveGroupMember(ctx context.Context, groupID, userID string) (removed bool, err error) {
	err = s.InTx(ctx, func(q storage.Queries) error {
		removed, err = q.RemoveGroupMember(ctx, groupID, userID)
		return err
	})
	return removed, err
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) (deleted bool, err error) {
	err = s.InTx(ctx, func(q storage.Queries) error {
		deleted, err = q.DeleteGroup(ctx, groupID)
		return err
	})
	return deleted, err
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return s.InTx(ctx, func(q storage.Queries) error { return q.CreateExpense(ctx, expense) })
}

func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return read(s, func(q *txQueries) (*models.Expense, error) { return q.GetExpense(ctx, expenseID) })
}

func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return read(s, func(q *txQueries) ([]*models.Expense, error) { return q.ListExpensesByGroup(ctx, groupID) })
}

func (s *Store) MarkSharesSettled(ctx context.Context, groupID, debtorID, payerID string) (n int, err error) {
	err = s.InTx(ctx, func(q storage.Queries) error {
		n, err = q.MarkSharesSettled(ctx, groupID, debtorID, payerID)
		return err
	})
	return n, err
}

func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return s.InTx(ctx, func(q storage.Queries) error { return q.CreatePayment(ctx, payment) })
}

func (s *Store) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return read(s, func(q *txQueries) (*models.Payment, error) { return q.GetPayment(ctx, paymentID) })
}

func (s *Store) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	return read(s, func(q *txQueries) ([]*models.Payment, error) { return q.ListPaymentsByUser(ctx, userID) })
}

func (s *Store) ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error) {
	return read(s, func(q *txQueries) ([]*models.Payment, error) { return q.ListPaymentsByGroup(ctx, groupID) })
}

func (s *Store) ListPaymentsBetween(ctx context.Context, fromUserID, toUserID string) ([]*models.Payment, error) {
	return read(s, func(q *txQueries) ([]*models.Payment, error) {
		return q.ListPaymentsBetween(ctx, fromUserID, toUserID)
	})
}

func (s *Store) GetBalance(ctx context.Context, key models.BalanceKey) (*models.Balance, error) {
	return read(s, func(q *txQueries) (*models.Balance, error) { return q.GetBalance(ctx, key) })
}

func (s *Store) PutBalance(ctx context.Context, balance *models.Balance) error {
	return s.InTx(ctx, func(q storage.Queries) error { return q.PutBalance(ctx, balance) })
}

func (s *Store) ListBalancesByGroup(ctx context.Context, groupID string, statuses ...models.BalanceStatus) ([]models.Balance, error) {
	return read(s, func(q *txQueries) ([]models.Balance, error) {
		return q.ListBalancesByGroup(ctx, groupID, statuses...)
	})
}

func (s *Store) ListBalancesByDebtor(ctx context.Context, userID string) ([]models.Balance, error) {
	return read(s, func(q *txQueries) ([]models.Balance, error) { return q.ListBalancesByDebtor(ctx, userID) })
}

func (s *Store) ListBalancesByCreditor(ctx context.Context, userID string) ([]models.Balance, error) {
	return read(s, func(q *txQueries) ([]models.Balance, error) { return q.ListBalancesByCreditor(ctx, userID) })
}
