package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := models.NewUser("alice@example.com", "Alice", "hash")
	bob := models.NewUser("bob@example.com", "Bob", "hash")
	carol := models.NewUser("carol@example.com", "Carol", "hash")
	for _, u := range []*models.User{alice, bob, carol} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	group := &models.Group{Name: "Trip", CreatedBy: alice.ID, Members: []string{alice.ID, bob.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("CreateUser rejects duplicate email", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", "hash"))
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("GetUserByEmail returns not found for unknown email", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetUsersByIDs omits unknown IDs", func(t *testing.T) {
		users, err := store.GetUsersByIDs(ctx, []string{alice.ID, "ghost", carol.ID})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 2 || users[carol.ID].DisplayName != "Carol" {
			t.Errorf("unexpected users: %+v", users)
		}
	})

	t.Run("Group members keep join order", func(t *testing.T) {
		added, err := store.AddGroupMember(ctx, group.ID, carol.ID)
		if err != nil || !added {
			t.Fatalf("AddGroupMember = %v, %v", added, err)
		}
		added, err = store.AddGroupMember(ctx, group.ID, carol.ID)
		if err != nil || added {
			t.Fatalf("second AddGroupMember = %v, %v", added, err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		want := []string{alice.ID, bob.ID, carol.ID}
		if len(got.Members) != len(want) {
			t.Fatalf("members = %v, want %v", got.Members, want)
		}
		for i := range want {
			if got.Members[i] != want[i] {
				t.Errorf("member %d = %s, want %s", i, got.Members[i], want[i])
			}
		}

		groups, err := store.ListGroupsForUser(ctx, carol.ID)
		if err != nil || len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("ListGroupsForUser = %v, %v", groups, err)
		}

		removed, err := store.RemoveGroupMember(ctx, group.ID, carol.ID)
		if err != nil || !removed {
			t.Errorf("RemoveGroupMember = %v, %v", removed, err)
		}
	})

	t.Run("GetGroup returns not found", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Expense round trip keeps decimal amounts and share order", func(t *testing.T) {
		expense := &models.Expense{
			GroupID:     group.ID,
			PayerID:     alice.ID,
			Amount:      dec("100.00"),
			Description: "Dinner",
			SplitKind:   models.SplitEqual,
			Shares: []models.ExpenseShare{
				{ParticipantID: alice.ID, Amount: dec("33.34")},
				{ParticipantID: bob.ID, Amount: dec("33.33")},
				{ParticipantID: carol.ID, Amount: dec("33.33")},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" || expense.CreatedAt == 0 {
			t.Fatal("expected ID and CreatedAt to be populated")
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(dec("100")) || got.SplitKind != models.SplitEqual {
			t.Errorf("unexpected expense %+v", got)
		}
		if len(got.Shares) != 3 || got.Shares[0].ParticipantID != alice.ID || !got.Shares[0].Amount.Equal(dec("33.34")) {
			t.Errorf("unexpected shares %+v", got.Shares)
		}

		n, err := store.MarkSharesSettled(ctx, group.ID, bob.ID, alice.ID)
		if err != nil || n != 1 {
			t.Fatalf("MarkSharesSettled = %d, %v", n, err)
		}
		got, _ = store.GetExpense(ctx, expense.ID)
		if !got.Shares[1].Settled || got.Shares[2].Settled {
			t.Errorf("only Bob's share should be settled: %+v", got.Shares)
		}

		list, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil || len(list) != 1 {
			t.Errorf("ListExpensesByGroup = %v, %v", list, err)
		}
	})

	t.Run("Balances upsert in place", func(t *testing.T) {
		first := &models.Balance{
			BalanceKey: models.BalanceKey{GroupID: group.ID, DebtorID: bob.ID, CreditorID: alice.ID},
			Amount:     dec("40"),
			Status:     models.StatusPending,
		}
		second := &models.Balance{
			BalanceKey: models.BalanceKey{GroupID: group.ID, DebtorID: carol.ID, CreditorID: alice.ID},
			Amount:     dec("10"),
			Status:     models.StatusPending,
		}
		for _, b := range []*models.Balance{first, second} {
			if err := store.PutBalance(ctx, b); err != nil {
				t.Fatalf("PutBalance failed: %v", err)
			}
		}

		first.Amount = dec("0")
		first.Status = models.StatusSettled
		if err := store.PutBalance(ctx, first); err != nil {
			t.Fatalf("PutBalance update failed: %v", err)
		}

		rows, err := store.ListBalancesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListBalancesByGroup failed: %v", err)
		}
		if len(rows) != 2 || rows[0].DebtorID != bob.ID || rows[0].Status != models.StatusSettled {
			t.Errorf("update should keep row position: %+v", rows)
		}

		open, err := store.ListBalancesByGroup(ctx, group.ID, models.StatusPending, models.StatusPartial)
		if err != nil || len(open) != 1 || open[0].DebtorID != carol.ID {
			t.Errorf("open rows = %+v, %v", open, err)
		}

		got, err := store.GetBalance(ctx, second.BalanceKey)
		if err != nil || !got.Amount.Equal(dec("10")) {
			t.Errorf("GetBalance = %+v, %v", got, err)
		}

		_, err = store.GetBalance(ctx, second.Reverse())
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound for reverse key, got %v", err)
		}

		owed, err := store.ListBalancesByCreditor(ctx, alice.ID)
		if err != nil || len(owed) != 2 {
			t.Errorf("ListBalancesByCreditor = %+v, %v", owed, err)
		}
	})

	t.Run("Payments keep optional fields empty", func(t *testing.T) {
		logged := &models.Payment{FromUserID: bob.ID, ToUserID: carol.ID, Amount: dec("5"), CreatedBy: bob.ID}
		applied := &models.Payment{GroupID: group.ID, FromUserID: bob.ID, ToUserID: alice.ID, Amount: dec("12.50"), Note: "cash", CreatedBy: bob.ID, Applied: true, Excess: dec("2.50")}
		for _, p := range []*models.Payment{logged, applied} {
			if err := store.CreatePayment(ctx, p); err != nil {
				t.Fatalf("CreatePayment failed: %v", err)
			}
		}

		got, err := store.GetPayment(ctx, logged.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if got.GroupID != "" || got.ExpenseID != "" || got.Note != "" || got.Applied || !got.Excess.IsZero() {
			t.Errorf("expected empty optional fields, got %+v", got)
		}

		got, err = store.GetPayment(ctx, applied.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if !got.Applied || !got.Excess.Equal(dec("2.5")) {
			t.Errorf("expected applied payment with excess 2.50, got %+v", got)
		}

		byUser, err := store.ListPaymentsByUser(ctx, bob.ID)
		if err != nil || len(byUser) != 2 || byUser[0].ID != applied.ID {
			t.Errorf("ListPaymentsByUser should be newest first: %+v, %v", byUser, err)
		}

		byGroup, err := store.ListPaymentsByGroup(ctx, group.ID)
		if err != nil || len(byGroup) != 1 || !byGroup[0].Amount.Equal(dec("12.5")) {
			t.Errorf("ListPaymentsByGroup = %+v, %v", byGroup, err)
		}

		between, err := store.ListPaymentsBetween(ctx, bob.ID, carol.ID)
		if err != nil || len(between) != 1 || between[0].ID != logged.ID {
			t.Errorf("ListPaymentsBetween = %+v, %v", between, err)
		}
	})
}

func TestSQLiteStore_InTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("dave@example.com", "Dave", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	group := &models.Group{Name: "Flat", CreatedBy: user.ID, Members: []string{user.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	boom := errors.New("boom")
	err := store.InTx(ctx, func(q storage.Queries) error {
		if err := q.CreatePayment(ctx, &models.Payment{
			GroupID: group.ID, FromUserID: user.ID, ToUserID: "x", Amount: dec("1"), CreatedBy: user.ID,
		}); err != nil {
			return err
		}
		if err := q.PutBalance(ctx, &models.Balance{
			BalanceKey: models.BalanceKey{GroupID: group.ID, DebtorID: user.ID, CreditorID: "x"},
			Amount:     dec("1"),
			Status:     models.StatusPending,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}

	payments, _ := store.ListPaymentsByGroup(ctx, group.ID)
	balances, _ := store.ListBalancesByGroup(ctx, group.ID)
	if len(payments) != 0 || len(balances) != 0 {
		t.Errorf("expected rollback, found %d payments and %d balances", len(payments), len(balances))
	}
}

func TestSQLiteStore_AddsPaymentOutcomeColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE payments (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    group_id TEXT,
    from_user_id TEXT NOT NULL,
    to_user_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    expense_id TEXT,
    note TEXT,
    created_at INTEGER NOT NULL,
    created_by TEXT NOT NULL
);
INSERT INTO payments (id, from_user_id, to_user_id, amount, created_at, created_by)
VALUES ('p1', 'u1', 'u2', '5.00', 1, 'u1');`)
	if err != nil {
		t.Fatalf("Failed to create old schema: %v", err)
	}
	db.Close()

	store, err := New(path)
	if err != nil {
		t.Fatalf("Failed to migrate store: %v", err)
	}
	defer store.Close()

	got, err := store.GetPayment(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPayment failed: %v", err)
	}
	if got.Applied || !got.Excess.IsZero() || !got.Amount.Equal(dec("5")) {
		t.Errorf("unexpected migrated payment %+v", got)
	}
}

func TestSQLiteStore_DeleteGroupCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := models.NewUser("alice@example.com", "Alice", "hash")
	bob := models.NewUser("bob@example.com", "Bob", "hash")
	for _, u := range []*models.User{alice, bob} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}
	group := &models.Group{Name: "Trip", CreatedBy: alice.ID, Members: []string{alice.ID, bob.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	expense := &models.Expense{
		GroupID: group.ID, PayerID: alice.ID, Amount: dec("10"), Description: "Taxi", SplitKind: models.SplitCustom,
		Shares: []models.ExpenseShare{{ParticipantID: bob.ID, Amount: dec("10")}},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if err := store.PutBalance(ctx, &models.Balance{
		BalanceKey: models.BalanceKey{GroupID: group.ID, DebtorID: bob.ID, CreditorID: alice.ID},
		Amount:     dec("10"),
		Status:     models.StatusPending,
	}); err != nil {
		t.Fatalf("PutBalance failed: %v", err)
	}
	payment := &models.Payment{GroupID: group.ID, FromUserID: bob.ID, ToUserID: alice.ID, Amount: dec("1"), CreatedBy: bob.ID}
	if err := store.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	deleted, err := store.DeleteGroup(ctx, group.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteGroup = %v, %v", deleted, err)
	}

	if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected group gone, got %v", err)
	}
	if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected expense gone, got %v", err)
	}
	if rows, _ := store.ListBalancesByDebtor(ctx, bob.ID); len(rows) != 0 {
		t.Errorf("expected balances gone, got %+v", rows)
	}
	if groups, _ := store.ListGroupsForUser(ctx, bob.ID); len(groups) != 0 {
		t.Errorf("expected memberships gone, got %+v", groups)
	}
	if _, err := store.GetPayment(ctx, payment.ID); err != nil {
		t.Errorf("payments should outlive their group: %v", err)
	}

	if deleted, err := store.DeleteGroup(ctx, group.ID); err != nil || deleted {
		t.Errorf("second DeleteGroup = %v, %v", deleted, err)
	}
}
