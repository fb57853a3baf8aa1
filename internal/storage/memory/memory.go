// Package memory provides an in-process implementation of storage.Store.
// It is used by tests and by servers started without a database path.
//
// InTx runs against a deep copy of the whole state and swaps it in on
// success, so every write transaction costs time proportional to the size
// of the store. That is fine for tests and small single-process setups; use
// the sqlite store for anything larger.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps all records in memory. Slices preserve insertion order.
type Store struct {
	mu    sync.Mutex // guards state
	txMu  sync.Mutex // serializes transactions
	state *state
}

type state struct {
	users    []*models.User
	groups   []*models.Group
	expenses []*models.Expense
	payments []*models.Payment
	balances []*models.Balance
}

// New returns an empty Store.
func New() *Store {
	return &Store{state: &state{}}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// InTx runs fn against a private copy of the data and publishes the copy
// only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(q storage.Queries) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	draft := s.state.clone()
	s.mu.Unlock()

	if err := fn(&txQueries{st: draft}); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = draft
	s.mu.Unlock()
	return nil
}

// read runs fn against the committed state.
func read[T any](s *Store, fn func(q *txQueries) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&txQueries{st: s.state})
}

func (st *state) clone() *state {
	c := &state{
		users:    make([]*models.User, len(st.users)),
		groups:   make([]*models.Group, len(st.groups)),
		expenses: make([]*models.Expense, len(st.expenses)),
		payments: make([]*models.Payment, len(st.payments)),
		balances: make([]*models.Balance, len(st.balances)),
	}
	for i, u := range st.users {
		c.users[i] = copyUser(u)
	}
	for i, g := range st.groups {
		c.groups[i] = copyGroup(g)
	}
	for i, e := range st.expenses {
		c.expenses[i] = copyExpense(e)
	}
	for i, p := range st.payments {
		c.payments[i] = copyPayment(p)
	}
	for i, b := range st.balances {
		bc := *b
		c.balances[i] = &bc
	}
	return c
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyGroup(g *models.Group) *models.Group {
	c := *g
	c.Members = append([]string(nil), g.Members...)
	return &c
}

func copyExpense(e *models.Expense) *models.Expense {
	c := *e
	c.Shares = append([]models.ExpenseShare(nil), e.Shares...)
	return &c
}

func copyPayment(p *models.Payment) *models.Payment {
	c := *p
	return &c
}

// Users

func (st *state) createUser(user *models.User) error {
	for _, u := range st.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, storage.ErrDuplicate)
		}
	}
	st.users = append(st.users, copyUser(user))
	return nil
}

func (st *state) userByID(id string) (*models.User, error) {
	for _, u := range st.users {
		if u.ID == id {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %w: %s", models.ErrNotFound, id)
}

func (st *state) userByEmail(email string) (*models.User, error) {
	for _, u := range st.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %w: %s", models.ErrNotFound, email)
}

func (st *state) usersByIDs(ids []string) map[string]*models.User {
	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, err := st.userByID(id); err == nil {
			out[id] = u
		}
	}
	return out
}

// Groups

func (st *state) group(id string) (*models.Group, error) {
	for _, g := range st.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("group %w: %s", models.ErrNotFound, id)
}

func (st *state) createGroup(group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if _, err := st.group(group.ID); err == nil {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrDuplicate)
	}
	c := copyGroup(group)
	c.Members = nil
	st.groups = append(st.groups, c)
	for _, m := range group.Members {
		if _, err := st.addMember(group.ID, m); err != nil {
			return err
		}
	}
	return nil
}

func (st *state) addMember(groupID, userID string) (bool, error) {
	g, err := st.group(groupID)
	if err != nil {
		return false, err
	}
	if _, err := st.userByID(userID); err != nil {
		return false, err
	}
	if g.HasMember(userID) {
		return false, nil
	}
	g.Members = append(g.Members, userID)
	return true, nil
}

func (st *state) removeMember(groupID, userID string) (bool, error) {
	g, err := st.group(groupID)
	if err != nil {
		return false, err
	}
	for i, m := range g.Members {
		if m == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (st *state) deleteGroup(groupID string) bool {
	idx := -1
	for i, g := range st.groups {
		if g.ID == groupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	st.groups = append(st.groups[:idx], st.groups[idx+1:]...)

	expenses := st.expenses[:0]
	for _, e := range st.expenses {
		if e.GroupID != groupID {
			expenses = append(expenses, e)
		}
	}
	st.expenses = expenses

	balances := st.balances[:0]
	for _, b := range st.balances {
		if b.GroupID != groupID {
			balances = append(balances, b)
		}
	}
	st.balances = balances
	return true
}

// Expenses

func (st *state) createExpense(expense *models.Expense) error {
	if _, err := st.group(expense.GroupID); err != nil {
		return err
	}
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	for i := range expense.Shares {
		expense.Shares[i].ExpenseID = expense.ID
	}
	st.expenses = append(st.expenses, copyExpense(expense))
	return nil
}

func (st *state) expense(id string) (*models.Expense, error) {
	for _, e := range st.expenses {
		if e.ID == id {
			return copyExpense(e), nil
		}
	}
	return nil, fmt.Errorf("expense %w: %s", models.ErrNotFound, id)
}

func (st *state) markSharesSettled(groupID, debtorID, payerID string) int {
	n := 0
	for _, e := range st.expenses {
		if e.GroupID != groupID || e.PayerID != payerID {
			continue
		}
		for i := range e.Shares {
			if e.Shares[i].ParticipantID == debtorID && !e.Shares[i].Settled {
				e.Shares[i].Settled = true
				n++
			}
		}
	}
	return n
}

// Payments

func (st *state) createPayment(payment *models.Payment) {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	st.payments = append(st.payments, copyPayment(payment))
}

func (st *state) payment(id string) (*models.Payment, error) {
	for _, p := range st.payments {
		if p.ID == id {
			return copyPayment(p), nil
		}
	}
	return nil, fmt.Errorf("payment %w: %s", models.ErrNotFound, id)
}

// paymentsWhere returns matching payments newest first.
func (st *state) paymentsWhere(match func(p *models.Payment) bool) []*models.Payment {
	var out []*models.Payment
	for i := len(st.payments) - 1; i >= 0; i-- {
		if p := st.payments[i]; match(p) {
			out = append(out, copyPayment(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// Balances

func (st *state) balance(key models.BalanceKey) (*models.Balance, error) {
	for _, b := range st.balances {
		if b.BalanceKey == key {
			c := *b
			return &c, nil
		}
	}
	return nil, fmt.Errorf("balance %w: %s", models.ErrNotFound, key)
}

func (st *state) putBalance(balance *models.Balance) {
	for _, b := range st.balances {
		if b.BalanceKey == balance.BalanceKey {
			*b = *balance
			return
		}
	}
	c := *balance
	st.balances = append(st.balances, &c)
}

func (st *state) balancesWhere(match func(b *models.Balance) bool) []models.Balance {
	var out []models.Balance
	for _, b := range st.balances {
		if match(b) {
			out = append(out, *b)
		}
	}
	return out
}

func hasStatus(statuses []models.BalanceStatus, s models.BalanceStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, want := range statuses {
		if want == s {
			return true
		}
	}
	return false
}
