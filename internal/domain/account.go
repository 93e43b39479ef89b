package domain

import (
	"github.com/shopspring/decimal"
)

// MaxBalance caps every balance field. Amounts arrive with four fractional
// digits, so one quadrillion leaves headroom for any realistic input while
// keeping the overflow failure class from the state machine observable.
const MaxBalance = "1000000000000000"

var maxBalance = decimal.RequireFromString(MaxBalance)

// ClientID identifies one client account.
type ClientID uint16

// Account holds one client's funds. Available funds are spendable, held
// funds are frozen pending dispute resolution. Locked is monotonic: once
// set it is never cleared.
//
// An Account is owned by exactly one worker and is never shared, so its
// methods need no synchronization.
type Account struct {
	ID        ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// NewAccount creates an unlocked account with zero balances.
func NewAccount(id ClientID) *Account {
	return &Account{
		ID:        id,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

// Total returns available + held. Derived, never stored.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// CreditAvailable increases the available balance by amount.
func (a *Account) CreditAvailable(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	newAvailable := a.Available.Add(amount)
	if newAvailable.GreaterThan(maxBalance) {
		return ErrBalanceOverflow
	}

	a.Available = newAvailable
	return nil
}

// DebitAvailable decreases the available balance by amount.
func (a *Account) DebitAvailable(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	newAvailable := a.Available.Sub(amount)
	if newAvailable.IsNegative() {
		return ErrInsufficientFunds
	}

	a.Available = newAvailable
	return nil
}

// Hold moves amount from available to held. Both fields are validated
// before either is written, so a failed hold leaves the account untouched.
func (a *Account) Hold(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	newAvailable := a.Available.Sub(amount)
	if newAvailable.IsNegative() {
		return ErrInsufficientFunds
	}

	newHeld := a.Held.Add(amount)
	if newHeld.GreaterThan(maxBalance) {
		return ErrBalanceOverflow
	}

	a.Available = newAvailable
	a.Held = newHeld
	return nil
}

// Release moves amount from held back to available.
func (a *Account) Release(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	newHeld := a.Held.Sub(amount)
	if newHeld.IsNegative() {
		return ErrInsufficientHeld
	}

	newAvailable := a.Available.Add(amount)
	if newAvailable.GreaterThan(maxBalance) {
		return ErrBalanceOverflow
	}

	a.Available = newAvailable
	a.Held = newHeld
	return nil
}

// ForfeitHeld removes amount from held without crediting available.
// This is the fund movement behind a chargeback.
func (a *Account) ForfeitHeld(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	newHeld := a.Held.Sub(amount)
	if newHeld.IsNegative() {
		return ErrInsufficientHeld
	}

	a.Held = newHeld
	return nil
}

// Lock freezes the account. Idempotent.
func (a *Account) Lock() {
	a.Locked = true
}
