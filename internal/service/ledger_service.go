package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/payments"
	"github.com/mmynk/settleup/internal/splitter"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService: expenses, payments,
// balances and debt simplification.
type LedgerService struct {
	store    storage.Store
	ledger   *ledger.Ledger
	splitter *splitter.Splitter
	recorder *payments.Recorder
}

// NewLedgerService wires the service to the ledger and its writers.
func NewLedgerService(l *ledger.Ledger, s *splitter.Splitter, r *payments.Recorder) *LedgerService {
	return &LedgerService{
		store:    l.Store(),
		ledger:   l,
		splitter: s,
		recorder: r,
	}
}

// CreateExpense records an expense and updates the balances it creates.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	msg := req.Msg
	slog.Info("CreateExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount.String(),
		"split_kind", msg.SplitKind,
	)

	_, userID, err := memberGroup(ctx, s.store, msg.GroupID)
	if err != nil {
		return nil, err
	}

	payerID := msg.PayerID
	if payerID == "" {
		payerID = userID
	}
	shares := make([]calculator.Share, len(msg.Shares))
	for i, sh := range msg.Shares {
		shares[i] = calculator.Share{ParticipantID: sh.ParticipantID, Amount: sh.Amount}
	}

	result, err := s.splitter.Split(ctx, splitter.Request{
		GroupID:        msg.GroupID,
		PayerID:        payerID,
		Amount:         msg.Amount,
		Description:    msg.Description,
		Kind:           models.SplitKind(strings.ToUpper(msg.SplitKind)),
		ParticipantIDs: msg.ParticipantIDs,
		CustomShares:   shares,
	})
	if err != nil {
		slog.Error("CreateExpense failed", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	ids := []string{payerID}
	for _, sh := range result.Expense.Shares {
		ids = append(ids, sh.ParticipantID)
	}
	names := displayNames(ctx, s.store, ids...)

	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense:  expenseToAPI(result.Expense, names),
		Balances: balancesToAPI(result.Balances, names),
	}), nil
}

// GetExpense returns an expense with its shares.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := required("expense_id", req.Msg.ExpenseID); err != nil {
		return nil, err
	}
	expense, err := s.splitter.Expense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	if _, _, err := memberGroup(ctx, s.store, expense.GroupID); err != nil {
		return nil, err
	}

	ids := make([]string, len(expense.Shares))
	for i, sh := range expense.Shares {
		ids[i] = sh.ParticipantID
	}

	return connect.NewResponse(&api.GetExpenseResponse{
		Expense: expenseToAPI(expense, displayNames(ctx, s.store, ids...)),
	}), nil
}

// ListExpenses returns a group's expenses, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	if _, _, err := memberGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}
	expenses, err := s.splitter.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = expenseToAPI(e, nil)
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// RecordPayment logs a payment and reduces the matching balance.
func (s *LedgerService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	msg := req.Msg
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	fromID := msg.FromUserID
	if fromID == "" {
		fromID = userID
	}

	slog.Info("RecordPayment request received",
		"from_user_id", fromID,
		"to_user_id", msg.ToUserID,
		"amount", msg.Amount.String(),
		"expense_id", msg.ExpenseID,
	)

	if userID != fromID && userID != msg.ToUserID {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("only the payer or the payee can record a payment"))
	}

	record := s.recorder.RecordPayment
	if msg.Partial {
		record = s.recorder.RecordPartialPayment
	}
	payment, err := record(ctx, payments.Request{
		FromUserID: fromID,
		ToUserID:   msg.ToUserID,
		Amount:     msg.Amount,
		ExpenseID:  msg.ExpenseID,
		Note:       msg.Note,
		CreatedBy:  userID,
	})
	if err != nil {
		slog.Error("RecordPayment failed", "from_user_id", fromID, "to_user_id", msg.ToUserID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecordPaymentResponse{Payment: paymentToAPI(payment)}), nil
}

// ListPayments returns payments by group, by user pair or by user. Callers
// who are not a party only see payments from groups they share with the user.
func (s *LedgerService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	msg := req.Msg
	slog.Info("ListPayments request received", "group_id", msg.GroupID, "user_id", msg.UserID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	var list []*models.Payment
	switch {
	case msg.GroupID != "":
		if _, _, err := memberGroup(ctx, s.store, msg.GroupID); err != nil {
			return nil, err
		}
		list, err = s.recorder.ListByGroup(ctx, msg.GroupID)
	case msg.UserID != "" && msg.CounterpartyID != "":
		var shared map[string]bool
		if userID != msg.UserID && userID != msg.CounterpartyID {
			if shared, err = sharedGroups(ctx, s.store, userID, msg.UserID); err != nil {
				return nil, err
			}
		}
		list, err = s.recorder.ListBetween(ctx, msg.UserID, msg.CounterpartyID)
		if err == nil && shared != nil {
			list = paymentsIn(list, shared)
		}
	default:
		subject := msg.UserID
		if subject == "" {
			subject = userID
		}
		var shared map[string]bool
		if subject != userID {
			if shared, err = sharedGroups(ctx, s.store, userID, subject); err != nil {
				return nil, err
			}
		}
		list, err = s.recorder.ListByUser(ctx, subject)
		if err == nil && shared != nil {
			list = paymentsIn(list, shared)
		}
	}
	if err != nil {
		slog.Error("ListPayments failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListPaymentsResponse{Payments: paymentsToAPI(list)}), nil
}

// GetBalance returns one directional balance.
func (s *LedgerService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	msg := req.Msg
	if _, _, err := memberGroup(ctx, s.store, msg.GroupID); err != nil {
		return nil, err
	}
	if err := required("debtor_id", msg.DebtorID); err != nil {
		return nil, err
	}
	if err := required("creditor_id", msg.CreditorID); err != nil {
		return nil, err
	}

	b, err := s.ledger.Find(ctx, msg.GroupID, msg.DebtorID, msg.CreditorID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := balanceToAPI(*b, displayNames(ctx, s.store, b.DebtorID, b.CreditorID))
	return connect.NewResponse(&api.GetBalanceResponse{Balance: &out}), nil
}

// ListGroupBalances returns the group's balances, optionally filtered by status.
func (s *LedgerService) ListGroupBalances(ctx context.Context, req *connect.Request[api.ListGroupBalancesRequest]) (*connect.Response[api.ListGroupBalancesResponse], error) {
	slog.Info("ListGroupBalances request received", "group_id", req.Msg.GroupID, "statuses", req.Msg.Statuses)

	if _, _, err := memberGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}

	statuses := make([]models.BalanceStatus, len(req.Msg.Statuses))
	for i, st := range req.Msg.Statuses {
		statuses[i] = models.BalanceStatus(strings.ToUpper(st))
		switch statuses[i] {
		case models.StatusPending, models.StatusPartial, models.StatusSettled:
		default:
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown status %q", st))
		}
	}

	rows, err := s.ledger.ListGroup(ctx, req.Msg.GroupID, statuses...)
	if err != nil {
		return nil, toConnectError(err)
	}

	names := displayNames(ctx, s.store, balanceUsers(rows)...)
	return connect.NewResponse(&api.ListGroupBalancesResponse{Balances: balancesToAPI(rows, names)}), nil
}

// ListUserBalances returns what a user owes and is owed across groups. For
// another user only balances in groups shared with the caller are returned.
func (s *LedgerService) ListUserBalances(ctx context.Context, req *connect.Request[api.ListUserBalancesRequest]) (*connect.Response[api.ListUserBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	subject := req.Msg.UserID
	if subject == "" {
		subject = userID
	}

	slog.Info("ListUserBalances request received", "user_id", subject)

	var shared map[string]bool
	if subject != userID {
		if shared, err = sharedGroups(ctx, s.store, userID, subject); err != nil {
			return nil, err
		}
	}

	owes, owed, err := s.ledger.ListUser(ctx, subject)
	if err != nil {
		return nil, toConnectError(err)
	}
	if shared != nil {
		owes, owed = balancesIn(owes, shared), balancesIn(owed, shared)
	}

	names := displayNames(ctx, s.store, balanceUsers(owes, owed)...)
	return connect.NewResponse(&api.ListUserBalancesResponse{
		Owes: balancesToAPI(owes, names),
		Owed: balancesToAPI(owed, names),
	}), nil
}

// GetNetBalances returns each member's net position, largest creditor first.
func (s *LedgerService) GetNetBalances(ctx context.Context, req *connect.Request[api.GetNetBalancesRequest]) (*connect.Response[api.GetNetBalancesResponse], error) {
	slog.Info("GetNetBalances request received", "group_id", req.Msg.GroupID)

	if _, _, err := memberGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}

	balances, err := s.ledger.NetBalances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.UserID
	}
	names := displayNames(ctx, s.store, ids...)

	out := make([]api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = api.MemberBalance{
			UserID:      b.UserID,
			DisplayName: names[b.UserID],
			NetBalance:  b.NetBalance,
			Receivable:  b.Receivable,
			Payable:     b.Payable,
		}
	}

	return connect.NewResponse(&api.GetNetBalancesResponse{Members: out}), nil
}

// GetSettlementSummary lists who owes whom, largest debt first.
func (s *LedgerService) GetSettlementSummary(ctx context.Context, req *connect.Request[api.GetSettlementSummaryRequest]) (*connect.Response[api.GetSettlementSummaryResponse], error) {
	slog.Info("GetSettlementSummary request received", "group_id", req.Msg.GroupID)

	if _, _, err := memberGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}

	rows, err := s.ledger.ListGroup(ctx, req.Msg.GroupID, models.StatusPending, models.StatusPartial)
	if err != nil {
		return nil, toConnectError(err)
	}

	open := rows[:0]
	total := decimal.Zero
	for _, b := range rows {
		if b.Amount.IsPositive() {
			open = append(open, b)
			total = total.Add(b.Amount)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].Amount.GreaterThan(open[j].Amount) })

	names := displayNames(ctx, s.store, balanceUsers(open)...)
	return connect.NewResponse(&api.GetSettlementSummaryResponse{
		Debts:            balancesToAPI(open, names),
		TotalOutstanding: total,
	}), nil
}

// SimplifyDebts returns the reduced set of transfers that settles the group.
func (s *LedgerService) SimplifyDebts(ctx context.Context, req *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	slog.Info("SimplifyDebts request received", "group_id", req.Msg.GroupID)

	if _, _, err := memberGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}

	transfers, err := s.ledger.Simplify(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("SimplifyDebts failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	ids := make([]string, 0, 2*len(transfers))
	for _, t := range transfers {
		ids = append(ids, t.FromUserID, t.ToUserID)
	}
	names := displayNames(ctx, s.store, ids...)

	out := make([]api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = api.Transfer{
			FromUserID: t.FromUserID,
			FromName:   names[t.FromUserID],
			ToUserID:   t.ToUserID,
			ToName:     names[t.ToUserID],
			Amount:     t.Amount,
		}
	}

	slog.Info("SimplifyDebts successful", "group_id", req.Msg.GroupID, "transfers", len(out))
	return connect.NewResponse(&api.SimplifyDebtsResponse{Transfers: out}), nil
}
