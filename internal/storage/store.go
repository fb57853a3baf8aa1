// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrDuplicate is returned when a create request collides with an existing unique value.
var ErrDuplicate = errors.New("duplicate")

// Queries is the full set of read/write operations, usable directly on a
// Store or inside a transaction started with Store.InTx.
//
// Lookups of a single record return an error wrapping models.ErrNotFound
// when the record does not exist. List operations return rows in insertion
// order unless noted otherwise.
type Queries interface {
	// CreateUser inserts a new user. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to User. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateGroup persists a new group with its members.
	// The group.ID and CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group the user belongs to.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMember adds a member, reporting false if already present.
	AddGroupMember(ctx context.Context, groupID, userID string) (bool, error)

	// RemoveGroupMember removes a member, reporting false if absent.
	RemoveGroupMember(ctx context.Context, groupID, userID string) (bool, error)

	// DeleteGroup removes a group with its members, expenses and balances,
	// reporting false if it did not exist. Payments are kept as history.
	DeleteGroup(ctx context.Context, groupID string) (bool, error)

	// CreateExpense persists an expense together with its shares.
	// The expense.ID and CreatedAt fields are populated by the store when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns an expense including its shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, newest first, without shares.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// MarkSharesSettled flags the unsettled shares owed by debtorID on expenses
	// paid by payerID in groupID. Returns the number of shares updated.
	MarkSharesSettled(ctx context.Context, groupID, debtorID, payerID string) (int, error)

	// CreatePayment appends a payment to the log.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// ListPaymentsByUser returns payments the user sent or received, newest first.
	ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error)

	// ListPaymentsByGroup returns payments applied to a group, newest first.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)

	// ListPaymentsBetween returns payments from one user to another, newest first.
	ListPaymentsBetween(ctx context.Context, fromUserID, toUserID string) ([]*models.Payment, error)

	// GetBalance returns the ledger row for key.
	GetBalance(ctx context.Context, key models.BalanceKey) (*models.Balance, error)

	// PutBalance inserts or replaces the ledger row for balance.BalanceKey.
	// A new row keeps its insertion position; updates do not move it.
	PutBalance(ctx context.Context, balance *models.Balance) error

	// ListBalancesByGroup returns the group's ledger rows, optionally filtered by status.
	ListBalancesByGroup(ctx context.Context, groupID string, statuses ...models.BalanceStatus) ([]models.Balance, error)

	// ListBalancesByDebtor returns every row, across groups, where userID owes.
	ListBalancesByDebtor(ctx context.Context, userID string) ([]models.Balance, error)

	// ListBalancesByCreditor returns every row, across groups, where userID is owed.
	ListBalancesByCreditor(ctx context.Context, userID string) ([]models.Balance, error)
}

// Store is a Queries implementation that can also run transactions.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the ledger or service layers.
type Store interface {
	Queries

	// InTx runs fn inside a single transaction. If fn returns an error every
	// write made through the supplied Queries is rolled back.
	InTx(ctx context.Context, fn func(q Queries) error) error

	// Close releases any resources held by the store.
	Close() error
}
