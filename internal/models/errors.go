package models

import "errors"

var (
	// ErrValidation marks requests rejected before any state changed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks references to unknown expenses, groups, users or balances.
	ErrNotFound = errors.New("not found")

	// ErrGroupUnresolved marks payments that could not be tied to a group.
	// It is non-fatal: such payments are logged without touching the ledger.
	ErrGroupUnresolved = errors.New("payment could not be tied to a group")
)
