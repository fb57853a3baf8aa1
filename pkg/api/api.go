// Package api defines the request and response messages of the settleup.v1
// services. Messages are plain structs carried as JSON over Connect; amounts
// are decimal strings with two fractional digits.
package api

import "github.com/shopspring/decimal"

// User is a public user profile.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Member is a group member with their display name.
type Member struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"created_by"`
	Members     []Member `json:"members"`
	CreatedAt   int64    `json:"created_at"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// MemberIDs are added after the caller, who always joins first.
	MemberIDs []string `json:"member_ids,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	// Either UserID or Email identifies the new member.
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

type AddMemberResponse struct {
	Added bool   `json:"added"`
	Group *Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type RemoveMemberResponse struct {
	Removed bool `json:"removed"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct {
	Deleted bool `json:"deleted"`
}

// Share is one participant's part of a custom split.
type Share struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type ExpenseShare struct {
	ParticipantID string          `json:"participant_id"`
	DisplayName   string          `json:"display_name"`
	Amount        decimal.Decimal `json:"amount"`
	Settled       bool            `json:"settled"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PayerID     string          `json:"payer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	SplitKind   string          `json:"split_kind"`
	CreatedAt   int64           `json:"created_at"`
	Shares      []ExpenseShare  `json:"shares,omitempty"`
}

type Balance struct {
	GroupID      string          `json:"group_id"`
	DebtorID     string          `json:"debtor_id"`
	DebtorName   string          `json:"debtor_name"`
	CreditorID   string          `json:"creditor_id"`
	CreditorName string          `json:"creditor_name"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	UpdatedAt    int64           `json:"updated_at"`
}

type CreateExpenseRequest struct {
	GroupID string `json:"group_id"`
	// PayerID defaults to the caller.
	PayerID     string          `json:"payer_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	// SplitKind is EQUAL or CUSTOM.
	SplitKind string `json:"split_kind"`
	// ParticipantIDs is used by EQUAL splits; empty means every member.
	ParticipantIDs []string `json:"participant_ids,omitempty"`
	// Shares is used by CUSTOM splits.
	Shares []Share `json:"shares,omitempty"`
}

type CreateExpenseResponse struct {
	Expense  *Expense  `json:"expense"`
	Balances []Balance `json:"balances"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type Payment struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"group_id,omitempty"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	ExpenseID  string          `json:"expense_id,omitempty"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  int64           `json:"created_at"`
	CreatedBy  string          `json:"created_by"`
	// Applied reports whether the payment reduced a balance. Excess is the
	// overpaid part that was discarded, omitted when zero.
	Applied bool             `json:"applied"`
	Excess  *decimal.Decimal `json:"excess,omitempty"`
}

type RecordPaymentRequest struct {
	// FromUserID defaults to the caller.
	FromUserID string          `json:"from_user_id,omitempty"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	ExpenseID  string          `json:"expense_id,omitempty"`
	Note       string          `json:"note,omitempty"`
	// Partial prefixes the note with "Partial payment: ".
	Partial bool `json:"partial,omitempty"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

// ListPaymentsRequest selects payments by group, by a pair of users, or by
// one user (the caller when empty), in that order of precedence.
type ListPaymentsRequest struct {
	GroupID        string `json:"group_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	CounterpartyID string `json:"counterparty_id,omitempty"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type GetBalanceRequest struct {
	GroupID    string `json:"group_id"`
	DebtorID   string `json:"debtor_id"`
	CreditorID string `json:"creditor_id"`
}

type GetBalanceResponse struct {
	Balance *Balance `json:"balance"`
}

type ListGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
	// Statuses filters rows; empty returns every row.
	Statuses []string `json:"statuses,omitempty"`
}

type ListGroupBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type ListUserBalancesRequest struct {
	// UserID defaults to the caller.
	UserID string `json:"user_id,omitempty"`
}

type ListUserBalancesResponse struct {
	Owes []Balance `json:"owes"`
	Owed []Balance `json:"owed"`
}

type MemberBalance struct {
	UserID      string          `json:"user_id"`
	DisplayName string          `json:"display_name"`
	NetBalance  decimal.Decimal `json:"net_balance"`
	Receivable  decimal.Decimal `json:"receivable"`
	Payable     decimal.Decimal `json:"payable"`
}

type GetNetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetNetBalancesResponse struct {
	Members []MemberBalance `json:"members"`
}

type GetSettlementSummaryRequest struct {
	GroupID string `json:"group_id"`
}

type GetSettlementSummaryResponse struct {
	// Debts are the open balances, largest first.
	Debts            []Balance       `json:"debts"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

type Transfer struct {
	FromUserID string          `json:"from_user_id"`
	FromName   string          `json:"from_name"`
	ToUserID   string          `json:"to_user_id"`
	ToName     string          `json:"to_name"`
	Amount     decimal.Decimal `json:"amount"`
}

type SimplifyDebtsRequest struct {
	GroupID string `json:"group_id"`
}

type SimplifyDebtsResponse struct {
	Transfers []Transfer `json:"transfers"`
}
