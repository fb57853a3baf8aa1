// Package models defines the core domain models for settleup.
//
// # Ledger Models
//
//   - Expense: an amount paid by one member on behalf of a group
//   - ExpenseShare: one participant's share of an expense
//   - Balance: the running amount one member owes another inside a group
//   - Payment: money that changed hands, appended to the payment log
//   - SimplifiedTransfer: a netting transfer computed on demand, never stored
//
// # Directory Models
//
//   - User: a registered account, referenced by ID everywhere else
//   - Group: a named set of members who share expenses
//
// # Conventions
//
// 1. **Money is decimal**: amounts are decimal.Decimal with two fractional digits
// 2. **IDs, not pointers**: relationships are expressed with ID strings
// 3. **Unix timestamps**: CreatedAt/UpdatedAt fields hold Unix seconds
// 4. **Balances are directional**: (group, debtor, creditor) and its reverse are different rows
package models
