package splitter

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// setup creates group G with members A, B, C, D and user E outside it.
func setup(t *testing.T, cfg Config) (*Splitter, *ledger.Ledger) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	for _, id := range []string{"A", "B", "C", "D", "E"} {
		u := models.NewUser(id+"@example.com", id, "hash")
		u.ID = id
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}
	group := &models.Group{ID: "G", Name: "Trip", CreatedBy: "A", Members: []string{"A", "B", "C", "D"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	l := ledger.New(store, nil, ledger.Options{})
	return New(l, cfg), l
}

func TestSplit_EqualAmongAllMembers(t *testing.T) {
	s, l := setup(t, Config{Rounding: calculator.RoundLargestRemainder})
	ctx := context.Background()

	result, err := s.Split(ctx, Request{
		GroupID: "G", PayerID: "A", Amount: dec("800"), Description: "Villa", Kind: models.SplitEqual,
	})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(result.Expense.Shares) != 4 {
		t.Fatalf("expected 4 shares, got %d", len(result.Expense.Shares))
	}
	if len(result.Deltas) != 3 {
		t.Fatalf("payer must not owe themselves, got deltas %+v", result.Deltas)
	}
	for _, d := range result.Deltas {
		if d.Key.CreditorID != "A" || !d.Delta.Equal(dec("200")) {
			t.Errorf("unexpected delta %+v", d)
		}
	}

	transfers, err := l.Simplify(ctx, "G")
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if len(transfers) != 3 {
		t.Fatalf("expected 3 transfers, got %v", transfers)
	}
	for i, from := range []string{"B", "C", "D"} {
		if transfers[i].FromUserID != from || transfers[i].ToUserID != "A" || !transfers[i].Amount.Equal(dec("200")) {
			t.Errorf("transfer %d = %+v, want %s->A 200", i, transfers[i], from)
		}
	}

	stored, err := s.Expense(ctx, result.Expense.ID)
	if err != nil || len(stored.Shares) != 4 {
		t.Errorf("Expense = %+v, %v", stored, err)
	}
}

func TestSplit_HalfUpRounding(t *testing.T) {
	s, l := setup(t, Config{Rounding: calculator.RoundHalfUp})
	ctx := context.Background()

	_, err := s.Split(ctx, Request{
		GroupID: "G", PayerID: "A", Amount: dec("100.00"), Kind: models.SplitEqual,
		ParticipantIDs: []string{"A", "B", "C"},
	})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	b, err := l.Find(ctx, "G", "B", "A")
	if err != nil || !b.Amount.Equal(dec("33.33")) {
		t.Errorf("B->A = %+v, %v; want 33.33", b, err)
	}
}

func TestSplit_Custom(t *testing.T) {
	s, l := setup(t, Config{StrictCustomSplit: true})
	ctx := context.Background()

	_, err := s.Split(ctx, Request{
		GroupID: "G", PayerID: "B", Amount: dec("90"), Kind: models.SplitCustom,
		CustomShares: []calculator.Share{{ParticipantID: "A", Amount: dec("60")}, {ParticipantID: "B", Amount: dec("30")}},
	})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	b, err := l.Find(ctx, "G", "A", "B")
	if err != nil || !b.Amount.Equal(dec("60")) || b.Status != models.StatusPending {
		t.Errorf("A->B = %+v, %v", b, err)
	}

	_, err = s.Split(ctx, Request{
		GroupID: "G", PayerID: "B", Amount: dec("90"), Kind: models.SplitCustom,
		CustomShares: []calculator.Share{{ParticipantID: "A", Amount: dec("10")}},
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected mismatched sum to be rejected, got %v", err)
	}
}

func TestSplit_ReopensSettledBalance(t *testing.T) {
	s, l := setup(t, Config{})
	ctx := context.Background()

	req := Request{GroupID: "G", PayerID: "A", Amount: dec("20"), Kind: models.SplitEqual, ParticipantIDs: []string{"A", "B"}}
	if _, err := s.Split(ctx, req); err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if _, err := l.ApplyDelta(ctx, "G", "B", "A", dec("-10")); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if _, err := s.Split(ctx, req); err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	b, _ := l.Find(ctx, "G", "B", "A")
	if b.Status != models.StatusPending || !b.Amount.Equal(dec("10")) {
		t.Errorf("expected reopened Pending 10, got %+v", b)
	}
}

func TestSplit_Validation(t *testing.T) {
	s, _ := setup(t, Config{})
	ctx := context.Background()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "unknown group",
			req:     Request{GroupID: "nope", PayerID: "A", Amount: dec("10"), Kind: models.SplitEqual},
			wantErr: models.ErrNotFound,
		},
		{
			name:    "zero amount",
			req:     Request{GroupID: "G", PayerID: "A", Amount: dec("0.001"), Kind: models.SplitEqual},
			wantErr: models.ErrValidation,
		},
		{
			name:    "payer outside group",
			req:     Request{GroupID: "G", PayerID: "E", Amount: dec("10"), Kind: models.SplitEqual},
			wantErr: models.ErrValidation,
		},
		{
			name:    "participant outside group",
			req:     Request{GroupID: "G", PayerID: "A", Amount: dec("10"), Kind: models.SplitEqual, ParticipantIDs: []string{"A", "E"}},
			wantErr: models.ErrValidation,
		},
		{
			name:    "unknown kind",
			req:     Request{GroupID: "G", PayerID: "A", Amount: dec("10"), Kind: "PERCENT"},
			wantErr: models.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Split(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	expenses, err := s.ListExpenses(ctx, "G")
	if err != nil || len(expenses) != 0 {
		t.Errorf("rejected requests must not record expenses: %v, %v", expenses, err)
	}
}
