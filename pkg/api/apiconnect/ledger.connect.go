package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "settleup.v1.LedgerService"

// Procedure paths, usable for routing and interceptor filtering.
const (
	LedgerServiceCreateExpenseProcedure        = "/settleup.v1.LedgerService/CreateExpense"
	LedgerServiceGetExpenseProcedure           = "/settleup.v1.LedgerService/GetExpense"
	LedgerServiceListExpensesProcedure         = "/settleup.v1.LedgerService/ListExpenses"
	LedgerServiceRecordPaymentProcedure        = "/settleup.v1.LedgerService/RecordPayment"
	LedgerServiceListPaymentsProcedure         = "/settleup.v1.LedgerService/ListPayments"
	LedgerServiceGetBalanceProcedure           = "/settleup.v1.LedgerService/GetBalance"
	LedgerServiceListGroupBalancesProcedure    = "/settleup.v1.LedgerService/ListGroupBalances"
	LedgerServiceListUserBalancesProcedure     = "/settleup.v1.LedgerService/ListUserBalances"
	LedgerServiceGetNetBalancesProcedure       = "/settleup.v1.LedgerService/GetNetBalances"
	LedgerServiceGetSettlementSummaryProcedure = "/settleup.v1.LedgerService/GetSettlementSummary"
	LedgerServiceSimplifyDebtsProcedure        = "/settleup.v1.LedgerService/SimplifyDebts"
)

// LedgerServiceHandler is implemented by the server side of settleup.v1.LedgerService.
type LedgerServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	ListGroupBalances(context.Context, *connect.Request[api.ListGroupBalancesRequest]) (*connect.Response[api.ListGroupBalancesResponse], error)
	ListUserBalances(context.Context, *connect.Request[api.ListUserBalancesRequest]) (*connect.Response[api.ListUserBalancesResponse], error)
	GetNetBalances(context.Context, *connect.Request[api.GetNetBalancesRequest]) (*connect.Response[api.GetNetBalancesResponse], error)
	GetSettlementSummary(context.Context, *connect.Request[api.GetSettlementSummaryRequest]) (*connect.Response[api.GetSettlementSummaryResponse], error)
	SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceCreateExpenseProcedure, connect.NewUnaryHandler(LedgerServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(LedgerServiceGetExpenseProcedure, connect.NewUnaryHandler(LedgerServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(LedgerServiceListExpensesProcedure, connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(LedgerServiceRecordPaymentProcedure, connect.NewUnaryHandler(LedgerServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	mux.Handle(LedgerServiceListPaymentsProcedure, connect.NewUnaryHandler(LedgerServiceListPaymentsProcedure, svc.ListPayments, opts...))
	mux.Handle(LedgerServiceGetBalanceProcedure, connect.NewUnaryHandler(LedgerServiceGetBalanceProcedure, svc.GetBalance, opts...))
	mux.Handle(LedgerServiceListGroupBalancesProcedure, connect.NewUnaryHandler(LedgerServiceListGroupBalancesProcedure, svc.ListGroupBalances, opts...))
	mux.Handle(LedgerServiceListUserBalancesProcedure, connect.NewUnaryHandler(LedgerServiceListUserBalancesProcedure, svc.ListUserBalances, opts...))
	mux.Handle(LedgerServiceGetNetBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetNetBalancesProcedure, svc.GetNetBalances, opts...))
	mux.Handle(LedgerServiceGetSettlementSummaryProcedure, connect.NewUnaryHandler(LedgerServiceGetSettlementSummaryProcedure, svc.GetSettlementSummary, opts...))
	mux.Handle(LedgerServiceSimplifyDebtsProcedure, connect.NewUnaryHandler(LedgerServiceSimplifyDebtsProcedure, svc.SimplifyDebts, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient is a client for the settleup.v1.LedgerService service.
type LedgerServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	ListGroupBalances(context.Context, *connect.Request[api.ListGroupBalancesRequest]) (*connect.Response[api.ListGroupBalancesResponse], error)
	ListUserBalances(context.Context, *connect.Request[api.ListUserBalancesRequest]) (*connect.Response[api.ListUserBalancesResponse], error)
	GetNetBalances(context.Context, *connect.Request[api.GetNetBalancesRequest]) (*connect.Response[api.GetNetBalancesResponse], error)
	GetSettlementSummary(context.Context, *connect.Request[api.GetSettlementSummaryRequest]) (*connect.Response[api.GetSettlementSummaryResponse], error)
	SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error)
}

// NewLedgerServiceClient constructs a client for settleup.v1.LedgerService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		createExpense:        connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+LedgerServiceCreateExpenseProcedure, opts...),
		getExpense:           connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+LedgerServiceGetExpenseProcedure, opts...),
		listExpenses:         connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...),
		recordPayment:        connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+LedgerServiceRecordPaymentProcedure, opts...),
		listPayments:         connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+LedgerServiceListPaymentsProcedure, opts...),
		getBalance:           connect.NewClient[api.GetBalanceRequest, api.GetBalanceResponse](httpClient, baseURL+LedgerServiceGetBalanceProcedure, opts...),
		listGroupBalances:    connect.NewClient[api.ListGroupBalancesRequest, api.ListGroupBalancesResponse](httpClient, baseURL+LedgerServiceListGroupBalancesProcedure, opts...),
		listUserBalances:     connect.NewClient[api.ListUserBalancesRequest, api.ListUserBalancesResponse](httpClient, baseURL+LedgerServiceListUserBalancesProcedure, opts...),
		getNetBalances:       connect.NewClient[api.GetNetBalancesRequest, api.GetNetBalancesResponse](httpClient, baseURL+LedgerServiceGetNetBalancesProcedure, opts...),
		getSettlementSummary: connect.NewClient[api.GetSettlementSummaryRequest, api.GetSettlementSummaryResponse](httpClient, baseURL+LedgerServiceGetSettlementSummaryProcedure, opts...),
		simplifyDebts:        connect.NewClient[api.SimplifyDebtsRequest, api.SimplifyDebtsResponse](httpClient, baseURL+LedgerServiceSimplifyDebtsProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createExpense        *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense           *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	listExpenses         *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	recordPayment        *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	listPayments         *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
	getBalance           *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	listGroupBalances    *connect.Client[api.ListGroupBalancesRequest, api.ListGroupBalancesResponse]
	listUserBalances     *connect.Client[api.ListUserBalancesRequest, api.ListUserBalancesResponse]
	getNetBalances       *connect.Client[api.GetNetBalancesRequest, api.GetNetBalancesResponse]
	getSettlementSummary *connect.Client[api.GetSettlementSummaryRequest, api.GetSettlementSummaryResponse]
	simplifyDebts        *connect.Client[api.SimplifyDebtsRequest, api.SimplifyDebtsResponse]
}

func (c *ledgerServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListGroupBalances(ctx context.Context, req *connect.Request[api.ListGroupBalancesRequest]) (*connect.Response[api.ListGroupBalancesResponse], error) {
	return c.listGroupBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListUserBalances(ctx context.Context, req *connect.Request[api.ListUserBalancesRequest]) (*connect.Response[api.ListUserBalancesResponse], error) {
	return c.listUserBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetNetBalances(ctx context.Context, req *connect.Request[api.GetNetBalancesRequest]) (*connect.Response[api.GetNetBalancesResponse], error) {
	return c.getNetBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetSettlementSummary(ctx context.Context, req *connect.Request[api.GetSettlementSummaryRequest]) (*connect.Response[api.GetSettlementSummaryResponse], error) {
	return c.getSettlementSummary.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SimplifyDebts(ctx context.Context, req *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	return c.simplifyDebts.CallUnary(ctx, req)
}
