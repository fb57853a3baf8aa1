package service

import (
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func userToAPI(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func groupToAPI(g *models.Group, names map[string]string) *api.Group {
	members := make([]api.Member, len(g.Members))
	for i, id := range g.Members {
		members[i] = api.Member{UserID: id, DisplayName: names[id]}
	}
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     members,
		CreatedAt:   g.CreatedAt,
	}
}

func expenseToAPI(e *models.Expense, names map[string]string) *api.Expense {
	out := &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount,
		Description: e.Description,
		SplitKind:   string(e.SplitKind),
		CreatedAt:   e.CreatedAt,
	}
	for _, s := range e.Shares {
		out.Shares = append(out.Shares, api.ExpenseShare{
			ParticipantID: s.ParticipantID,
			DisplayName:   names[s.ParticipantID],
			Amount:        s.Amount,
			Settled:       s.Settled,
		})
	}
	return out
}

func balanceToAPI(b models.Balance, names map[string]string) api.Balance {
	return api.Balance{
		GroupID:      b.GroupID,
		DebtorID:     b.DebtorID,
		DebtorName:   names[b.DebtorID],
		CreditorID:   b.CreditorID,
		CreditorName: names[b.CreditorID],
		Amount:       b.Amount,
		Status:       string(b.Status),
		UpdatedAt:    b.UpdatedAt,
	}
}

func balancesToAPI(rows []models.Balance, names map[string]string) []api.Balance {
	out := make([]api.Balance, len(rows))
	for i, b := range rows {
		out[i] = balanceToAPI(b, names)
	}
	return out
}

// balanceUsers lists every user referenced by rows.
func balanceUsers(rows ...[]models.Balance) []string {
	var ids []string
	for _, list := range rows {
		for _, b := range list {
			ids = append(ids, b.DebtorID, b.CreditorID)
		}
	}
	return ids
}

func paymentToAPI(p *models.Payment) *api.Payment {
	out := &api.Payment{
		ID:         p.ID,
		GroupID:    p.GroupID,
		FromUserID: p.FromUserID,
		ToUserID:   p.ToUserID,
		Amount:     p.Amount,
		ExpenseID:  p.ExpenseID,
		Note:       p.Note,
		CreatedAt:  p.CreatedAt,
		CreatedBy:  p.CreatedBy,
		Applied:    p.Applied,
	}
	if p.Excess.IsPositive() {
		excess := p.Excess
		out.Excess = &excess
	}
	return out
}

func paymentsToAPI(payments []*models.Payment) []*api.Payment {
	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = paymentToAPI(p)
	}
	return out
}
