package payments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup(t *testing.T) (*Recorder, *ledger.Ledger, *memory.Store) {
	t.Helper()
	store := memory.New()
	l := ledger.New(store, nil, ledger.Options{})
	return NewRecorder(l), l, store
}

func TestRecordPayment_SettlesExactAmount(t *testing.T) {
	r, l, _ := setup(t)
	ctx := context.Background()

	if _, err := l.ApplyDelta(ctx, "G", "B", "A", dec("75.50")); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}

	p, err := r.RecordPayment(ctx, Request{FromUserID: "B", ToUserID: "A", Amount: dec("25.50")})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if !p.Applied || p.GroupID != "G" {
		t.Errorf("expected payment applied to G, got %+v", p)
	}
	b, _ := l.Find(ctx, "G", "B", "A")
	if b.Status != models.StatusPartial || !b.Amount.Equal(dec("50")) {
		t.Errorf("expected Partial 50, got %+v", b)
	}

	if _, err := r.RecordPayment(ctx, Request{FromUserID: "B", ToUserID: "A", Amount: dec("50")}); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	b, _ = l.Find(ctx, "G", "B", "A")
	if b.Status != models.StatusSettled || !b.Amount.IsZero() {
		t.Errorf("expected Settled 0, got %+v", b)
	}

	logged, _ := r.ListBetween(ctx, "B", "A")
	if len(logged) != 2 {
		t.Errorf("expected 2 logged payments, got %d", len(logged))
	}
}

func TestRecordPayment_Overpayment(t *testing.T) {
	r, l, _ := setup(t)
	ctx := context.Background()

	_, _ = l.ApplyDelta(ctx, "G", "B", "A", dec("10"))
	p, err := r.RecordPayment(ctx, Request{FromUserID: "B", ToUserID: "A", Amount: dec("12")})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if !p.Excess.Equal(dec("2")) {
		t.Errorf("excess = %s, want 2", p.Excess)
	}
}

func TestRecordPayment_SelfPaymentRejected(t *testing.T) {
	r, l, _ := setup(t)
	ctx := context.Background()

	_, _ = l.ApplyDelta(ctx, "G", "B", "A", dec("10"))

	_, err := r.RecordPayment(ctx, Request{FromUserID: "A", ToUserID: "A", Amount: dec("5")})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	logged, _ := r.ListByUser(ctx, "A")
	if len(logged) != 0 {
		t.Errorf("self-payment must not be logged, got %+v", logged)
	}
	b, _ := l.Find(ctx, "G", "B", "A")
	if !b.Amount.Equal(dec("10")) {
		t.Errorf("ledger mutated by rejected payment: %+v", b)
	}
}

func TestRecordPayment_NonPositiveAmountRejected(t *testing.T) {
	r, _, _ := setup(t)

	for _, amount := range []string{"0", "-5", "0.004"} {
		_, err := r.RecordPayment(context.Background(), Request{FromUserID: "B", ToUserID: "A", Amount: dec(amount)})
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("amount %s: expected ErrValidation, got %v", amount, err)
		}
	}
}

func TestRecordPayment_UnresolvedGroupIsLogOnly(t *testing.T) {
	r, _, _ := setup(t)
	ctx := context.Background()

	p, err := r.RecordPayment(ctx, Request{FromUserID: "B", ToUserID: "C", Amount: dec("5"), Note: "coffee"})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if p.Applied || p.GroupID != "" {
		t.Errorf("expected log-only payment, got %+v", p)
	}

	stored, err := r.Payment(ctx, p.ID)
	if err != nil || stored.Note != "coffee" {
		t.Errorf("Payment = %+v, %v", stored, err)
	}
}

func TestRecordPayment_ResolvesGroupFromExpense(t *testing.T) {
	r, l, store := setup(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B"} {
		u := models.NewUser(id+"@example.com", id, "hash")
		u.ID = id
		_ = store.CreateUser(ctx, u)
	}
	for _, g := range []string{"G1", "G2"} {
		if err := store.CreateGroup(ctx, &models.Group{ID: g, Name: g, CreatedBy: "A", Members: []string{"A", "B"}}); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
	}
	_, _ = l.ApplyDelta(ctx, "G1", "B", "A", dec("10"))
	_, _ = l.ApplyDelta(ctx, "G2", "B", "A", dec("30"))

	expense := &models.Expense{GroupID: "G2", PayerID: "A", Amount: dec("30"), SplitKind: models.SplitCustom}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	p, err := r.RecordPartialPayment(ctx, Request{FromUserID: "B", ToUserID: "A", Amount: dec("5"), ExpenseID: expense.ID, Note: "first"})
	if err != nil {
		t.Fatalf("RecordPartialPayment failed: %v", err)
	}
	if p.GroupID != "G2" || !strings.HasPrefix(p.Note, PartialNotePrefix) {
		t.Errorf("unexpected payment %+v", p)
	}

	g1, _ := l.Find(ctx, "G1", "B", "A")
	g2, _ := l.Find(ctx, "G2", "B", "A")
	if !g1.Amount.Equal(dec("10")) || !g2.Amount.Equal(dec("25")) {
		t.Errorf("expected only G2 reduced, got G1=%s G2=%s", g1.Amount, g2.Amount)
	}

	byGroup, _ := r.ListByGroup(ctx, "G2")
	if len(byGroup) != 1 || !byGroup[0].Applied {
		t.Errorf("expected 1 applied payment in G2, got %+v", byGroup)
	}

	_, err = r.RecordPayment(ctx, Request{FromUserID: "B", ToUserID: "A", Amount: dec("5"), ExpenseID: "missing"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown expense, got %v", err)
	}
}

func TestRecordPayment_PrefersOpenBalance(t *testing.T) {
	r, l, _ := setup(t)
	ctx := context.Background()

	_, _ = l.ApplyDelta(ctx, "G1", "B", "A", dec("10"))
	_, _ = l.ApplyDelta(ctx, "G1", "B", "A", dec("-10"))
	_, _ = l.ApplyDelta(ctx, "G2", "B", "A", dec("40"))

	p, err := r.RecordPayment(ctx, Request{FromUserID: "B", ToUserID: "A", Amount: dec("15")})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if p.GroupID != "G2" || !p.Applied {
		t.Errorf("expected payment applied to G2, got %+v", p)
	}
}

func TestRecordPayment_ExpenseOutsidePartiesGroupsRejected(t *testing.T) {
	r, l, store := setup(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B", "M"} {
		u := models.NewUser(id+"@example.com", id, "hash")
		u.ID = id
		_ = store.CreateUser(ctx, u)
	}
	if err := store.CreateGroup(ctx, &models.Group{ID: "G", Name: "G", CreatedBy: "A", Members: []string{"A", "B"}}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	_, _ = l.ApplyDelta(ctx, "G", "B", "A", dec("10"))
	expense := &models.Expense{GroupID: "G", PayerID: "A", Amount: dec("10"), SplitKind: models.SplitCustom}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	_, err := r.RecordPayment(ctx, Request{FromUserID: "M", ToUserID: "C", Amount: dec("5"), ExpenseID: expense.ID})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation for a foreign expense, got %v", err)
	}
	if logged, _ := r.ListByGroup(ctx, "G"); len(logged) != 0 {
		t.Errorf("rejected payment must not be logged, got %+v", logged)
	}
	if b, _ := l.Find(ctx, "G", "B", "A"); !b.Amount.Equal(dec("10")) {
		t.Errorf("balance changed by a rejected payment: %+v", b)
	}
}

func TestRecordPayment_ExpenseWithoutBalanceKeepsGroup(t *testing.T) {
	r, _, store := setup(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B"} {
		u := models.NewUser(id+"@example.com", id, "hash")
		u.ID = id
		_ = store.CreateUser(ctx, u)
	}
	if err := store.CreateGroup(ctx, &models.Group{ID: "G", Name: "G", CreatedBy: "A", Members: []string{"A", "B"}}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	expense := &models.Expense{GroupID: "G", PayerID: "A", Amount: dec("10"), SplitKind: models.SplitCustom}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	p, err := r.RecordPayment(ctx, Request{FromUserID: "B", ToUserID: "A", Amount: dec("5"), ExpenseID: expense.ID})
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if p.GroupID != "G" || p.Applied {
		t.Errorf("expected group G without ledger update, got %+v", p)
	}

	stored, err := r.Payment(ctx, p.ID)
	if err != nil || stored.GroupID != "G" || stored.Applied || !stored.Excess.IsZero() {
		t.Errorf("Payment = %+v, %v", stored, err)
	}
}
