package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TxID identifies one submitted ledger transaction. TxIDs are unique per
// successfully applied deposit or withdrawal.
type TxID uint32

// EntryKind discriminates the five ledger event types.
type EntryKind string

const (
	EntryDeposit    EntryKind = "deposit"
	EntryWithdrawal EntryKind = "withdrawal"
	EntryDispute    EntryKind = "dispute"
	EntryResolve    EntryKind = "resolve"
	EntryChargeback EntryKind = "chargeback"
)

// ParseEntryKind parses a kind string case-insensitively.
func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(strings.ToLower(strings.TrimSpace(s))) {
	case EntryDeposit:
		return EntryDeposit, nil
	case EntryWithdrawal:
		return EntryWithdrawal, nil
	case EntryDispute:
		return EntryDispute, nil
	case EntryResolve:
		return EntryResolve, nil
	case EntryChargeback:
		return EntryChargeback, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEntryKind, s)
	}
}

// Entry is one immutable ledger event. Only deposits and withdrawals carry
// an amount; the dispute family references a prior entry by TxID instead.
// The per-kind constructors are the only way to build one, which keeps an
// amount-carrying dispute unrepresentable.
type Entry struct {
	Kind     EntryKind
	ClientID ClientID
	TxID     TxID

	amount    decimal.Decimal
	hasAmount bool
}

// NewDeposit builds a deposit entry crediting client by amount.
func NewDeposit(client ClientID, tx TxID, amount decimal.Decimal) Entry {
	return Entry{Kind: EntryDeposit, ClientID: client, TxID: tx, amount: amount, hasAmount: true}
}

// NewWithdrawal builds a withdrawal entry debiting client by amount.
func NewWithdrawal(client ClientID, tx TxID, amount decimal.Decimal) Entry {
	return Entry{Kind: EntryWithdrawal, ClientID: client, TxID: tx, amount: amount, hasAmount: true}
}

// NewDispute builds a dispute referencing a prior transaction.
func NewDispute(client ClientID, tx TxID) Entry {
	return Entry{Kind: EntryDispute, ClientID: client, TxID: tx}
}

// NewResolve builds a resolve referencing a prior transaction.
func NewResolve(client ClientID, tx TxID) Entry {
	return Entry{Kind: EntryResolve, ClientID: client, TxID: tx}
}

// NewChargeback builds a chargeback referencing a prior transaction.
func NewChargeback(client ClientID, tx TxID) Entry {
	return Entry{Kind: EntryChargeback, ClientID: client, TxID: tx}
}

// Amount returns the entry's amount and whether one is present.
func (e Entry) Amount() (decimal.Decimal, bool) {
	return e.amount, e.hasAmount
}
