package domain

import "errors"

var (
	// Account errors
	ErrNegativeAmount    = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient available funds")
	ErrInsufficientHeld  = errors.New("insufficient held funds")
	ErrBalanceOverflow   = errors.New("balance exceeds maximum allowed")

	// Entry errors
	ErrUnknownEntryKind = errors.New("unknown entry kind")
	ErrMissingAmount    = errors.New("entry requires an amount")
)
