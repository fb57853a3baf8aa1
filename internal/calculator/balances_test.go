package calculator

import (
	"testing"

	"github.com/mmynk/settleup/internal/models"
)

func TestNetBalances(t *testing.T) {
	rows := []models.Balance{
		row("B", "A", "200", models.StatusPending),
		row("C", "A", "150", models.StatusPartial),
		row("A", "C", "50", models.StatusPending),
		row("D", "A", "0", models.StatusSettled),
	}

	got := NetBalances(rows)

	wantOrder := []string{"B", "A", "C"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d members, got %d: %+v", len(wantOrder), len(got), got)
	}
	for i, id := range wantOrder {
		if got[i].UserID != id {
			t.Errorf("member %d = %s, want %s", i, got[i].UserID, id)
		}
	}

	want := map[string]string{"A": "300", "B": "-200", "C": "-100"}
	for _, b := range got {
		if !b.NetBalance.Equal(dec(want[b.UserID])) {
			t.Errorf("%s net = %s, want %s", b.UserID, b.NetBalance, want[b.UserID])
		}
	}

	if a := got[1]; !a.Receivable.Equal(dec("350")) || !a.Payable.Equal(dec("50")) {
		t.Errorf("A receivable/payable = %s/%s, want 350/50", a.Receivable, a.Payable)
	}

	if net := NetBalanceOf(rows, "D"); !net.IsZero() {
		t.Errorf("settled-only user should have zero net, got %s", net)
	}
}

func TestSortByNetDesc(t *testing.T) {
	balances := NetBalances([]models.Balance{
		row("B", "A", "10", models.StatusPending),
		row("C", "D", "30", models.StatusPending),
	})
	SortByNetDesc(balances)

	want := []string{"D", "A", "B", "C"}
	for i, id := range want {
		if balances[i].UserID != id {
			t.Errorf("position %d = %s, want %s", i, balances[i].UserID, id)
		}
	}
}
