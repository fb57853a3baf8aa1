package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

func TestStore_InTx(t *testing.T) {
	store := New()
	ctx := context.Background()

	user := models.NewUser("a@example.com", "A", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	group := &models.Group{Name: "G", CreatedBy: user.ID, Members: []string{user.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	key := models.BalanceKey{GroupID: group.ID, DebtorID: "b", CreditorID: user.ID}

	t.Run("commit publishes writes", func(t *testing.T) {
		err := store.InTx(ctx, func(q storage.Queries) error {
			return q.PutBalance(ctx, &models.Balance{BalanceKey: key, Amount: decimal.NewFromInt(5), Status: models.StatusPending})
		})
		if err != nil {
			t.Fatalf("InTx failed: %v", err)
		}
		b, err := store.GetBalance(ctx, key)
		if err != nil || !b.Amount.Equal(decimal.NewFromInt(5)) {
			t.Errorf("GetBalance = %+v, %v", b, err)
		}
	})

	t.Run("error discards writes", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.InTx(ctx, func(q storage.Queries) error {
			if err := q.PutBalance(ctx, &models.Balance{BalanceKey: key, Amount: decimal.Zero, Status: models.StatusSettled}); err != nil {
				return err
			}
			if err := q.CreatePayment(ctx, &models.Payment{FromUserID: "b", ToUserID: user.ID, Amount: decimal.NewFromInt(5)}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		b, _ := store.GetBalance(ctx, key)
		if b.Status != models.StatusPending {
			t.Errorf("balance changed despite rollback: %+v", b)
		}
		if payments, _ := store.ListPaymentsByUser(ctx, "b"); len(payments) != 0 {
			t.Errorf("payment survived rollback: %+v", payments)
		}
	})

	t.Run("reads return copies", func(t *testing.T) {
		g, _ := store.GetGroup(ctx, group.ID)
		g.Members[0] = "mutated"
		again, _ := store.GetGroup(ctx, group.ID)
		if again.Members[0] != user.ID {
			t.Error("caller mutation leaked into store")
		}
	})
}

func TestStore_Lookups(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetUserByEmail(ctx, "x@example.com"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	u := models.NewUser("x@example.com", "X", "hash")
	_ = store.CreateUser(ctx, u)
	if err := store.CreateUser(ctx, models.NewUser("x@example.com", "Y", "hash")); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	g := &models.Group{Name: "G", CreatedBy: u.ID, Members: []string{u.ID}}
	_ = store.CreateGroup(ctx, g)

	e := &models.Expense{
		GroupID: g.ID, PayerID: u.ID, Amount: decimal.NewFromInt(10), SplitKind: models.SplitCustom,
		Shares: []models.ExpenseShare{{ParticipantID: "b", Amount: decimal.NewFromInt(10)}},
	}
	if err := store.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if n, _ := store.MarkSharesSettled(ctx, g.ID, "b", u.ID); n != 1 {
		t.Errorf("MarkSharesSettled = %d, want 1", n)
	}
	got, err := store.GetExpense(ctx, e.ID)
	if err != nil || !got.Shares[0].Settled || got.Shares[0].ExpenseID != e.ID {
		t.Errorf("GetExpense = %+v, %v", got, err)
	}

	if err := store.CreateExpense(ctx, &models.Expense{GroupID: "missing"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown group, got %v", err)
	}
}

func TestStore_DeleteGroup(t *testing.T) {
	store := New()
	ctx := context.Background()

	user := models.NewUser("a@example.com", "A", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	keep := &models.Group{Name: "Keep", CreatedBy: user.ID, Members: []string{user.ID}}
	drop := &models.Group{Name: "Drop", CreatedBy: user.ID, Members: []string{user.ID}}
	for _, g := range []*models.Group{keep, drop} {
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if err := store.PutBalance(ctx, &models.Balance{
			BalanceKey: models.BalanceKey{GroupID: g.ID, DebtorID: "b", CreditorID: user.ID},
			Amount:     decimal.NewFromInt(1),
			Status:     models.StatusPending,
		}); err != nil {
			t.Fatalf("PutBalance failed: %v", err)
		}
	}
	payment := &models.Payment{GroupID: drop.ID, FromUserID: "b", ToUserID: user.ID, Amount: decimal.NewFromInt(1), Applied: true, Excess: decimal.RequireFromString("0.5")}
	if err := store.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	deleted, err := store.DeleteGroup(ctx, drop.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteGroup = %v, %v", deleted, err)
	}
	if _, err := store.GetGroup(ctx, drop.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected deleted group to be gone, got %v", err)
	}
	if rows, _ := store.ListBalancesByGroup(ctx, drop.ID); len(rows) != 0 {
		t.Errorf("expected balances removed with the group, got %+v", rows)
	}
	if rows, _ := store.ListBalancesByGroup(ctx, keep.ID); len(rows) != 1 {
		t.Errorf("other group's balances must survive, got %+v", rows)
	}

	got, err := store.GetPayment(ctx, payment.ID)
	if err != nil {
		t.Fatalf("payments should outlive their group: %v", err)
	}
	if !got.Applied || !got.Excess.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("payment outcome not kept: %+v", got)
	}

	if deleted, err := store.DeleteGroup(ctx, drop.ID); err != nil || deleted {
		t.Errorf("second DeleteGroup = %v, %v", deleted, err)
	}
}
