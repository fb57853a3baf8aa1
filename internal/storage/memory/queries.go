package memory

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// txQueries implements storage.Queries on a state snapshot.
type txQueries struct {
	st *state
}

var _ storage.Queries = (*txQueries)(nil)

func (q *txQueries) CreateUser(_ context.Context, user *models.User) error {
	return q.st.createUser(user)
}

func (q *txQueries) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return q.st.userByID(id)
}

func (q *txQueries) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return q.st.userByEmail(email)
}

func (q *txQueries) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	return q.st.usersByIDs(ids), nil
}

func (q *txQueries) CreateGroup(_ context.Context, group *models.Group) error {
	return q.st.createGroup(group)
}

func (q *txQueries) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	g, err := q.st.group(groupID)
	if err != nil {
		return nil, err
	}
	return copyGroup(g), nil
}

func (q *txQueries) ListGroupsForUser(_ context.Context, userID string) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range q.st.groups {
		if g.HasMember(userID) {
			out = append(out, copyGroup(g))
		}
	}
	return out, nil
}

func (q *txQueries) AddGroupMember(_ context.Context, groupID, userID string) (bool, error) {
	return q.st.addMember(groupID, userID)
}

func (q *txQueries) RemoveGroupMember(_ context.Context, groupID, userID string) (bool, error) {
	return q.st.removeMember(groupID, userID)
}

func (q *txQueries) DeleteGroup(_ context.Context, groupID string) (bool, error) {
	return q.st.deleteGroup(groupID), nil
}

func (q *txQueries) CreateExpense(_ context.Context, expense *models.Expense) error {
	return q.st.createExpense(expense)
}

func (q *txQueries) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	return q.st.expense(expenseID)
}

func (q *txQueries) ListExpensesByGroup(_ context.Context, groupID string) ([]*models.Expense, error) {
	var out []*models.Expense
	for i := len(q.st.expenses) - 1; i >= 0; i-- {
		if e := q.st.expenses[i]; e.GroupID == groupID {
			c := copyExpense(e)
			c.Shares = nil
			out = append(out, c)
		}
	}
	return out, nil
}

func (q *txQueries) MarkSharesSettled(_ context.Context, groupID, debtorID, payerID string) (int, error) {
	return q.st.markSharesSettled(groupID, debtorID, payerID), nil
}

func (q *txQueries) CreatePayment(_ context.Context, payment *models.Payment) error {
	q.st.createPayment(payment)
	return nil
}

func (q *txQueries) GetPayment(_ context.Context, paymentID string) (*models.Payment, error) {
	return q.st.payment(paymentID)
}

func (q *txQueries) ListPaymentsByUser(_ context.Context, userID string) ([]*models.Payment, error) {
	return q.st.paymentsWhere(func(p *models.Payment) bool {
		return p.FromUserID == userID || p.ToUserID == userID
	}), nil
}

func (q *txQueries) ListPaymentsByGroup(_ context.Context, groupID string) ([]*models.Payment, error) {
	return q.st.paymentsWhere(func(p *models.Payment) bool {
		return groupID != "" && p.GroupID == groupID
	}), nil
}

func (q *txQueries) ListPaymentsBetween(_ context.Context, fromUserID, toUserID string) ([]*models.Payment, error) {
	return q.st.paymentsWhere(func(p *models.Payment) bool {
		return p.FromUserID == fromUserID && p.ToUserID == toUserID
	}), nil
}

func (q *txQueries) GetBalance(_ context.Context, key models.BalanceKey) (*models.Balance, error) {
	return q.st.balance(key)
}

func (q *txQueries) PutBalance(_ context.Context, balance *models.Balance) error {
	q.st.putBalance(balance)
	return nil
}

func (q *txQueries) ListBalancesByGroup(_ context.Context, groupID string, statuses ...models.BalanceStatus) ([]models.Balance, error) {
	return q.st.balancesWhere(func(b *models.Balance) bool {
		return b.GroupID == groupID && hasStatus(statuses, b.Status)
	}), nil
}

func (q *txQueries) ListBalancesByDebtor(_ context.Context, userID string) ([]models.Balance, error) {
	return q.st.balancesWhere(func(b *models.Balance) bool { return b.DebtorID == userID }), nil
}

func (q *txQueries) ListBalancesByCreditor(_ context.Context, userID string) ([]models.Balance, error) {
	return q.st.balancesWhere(func(b *models.Balance) bool { return b.CreditorID == userID }), nil
}
