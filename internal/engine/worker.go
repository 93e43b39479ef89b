package engine

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/payengine/internal/domain"
	"github.com/iho/payengine/internal/infrastructure/metrics"
)

// workerResult is one worker's finalization value: its account partition,
// or the fault that killed it.
type workerResult struct {
	accounts map[domain.ClientID]*domain.Account
	err      error
}

// worker owns a disjoint partition of accounts and the history of entries
// referencing them. It consumes its inbound channel sequentially, so no
// synchronization is needed on any of its state.
type worker struct {
	id  int
	in  chan domain.Entry
	out chan workerResult

	accounts map[domain.ClientID]*domain.Account
	history  map[domain.TxID]domain.Entry

	log     zerolog.Logger
	metrics *metrics.Metrics
}

func newWorker(id, queueSize int, log zerolog.Logger, m *metrics.Metrics) *worker {
	return &worker{
		id:       id,
		in:       make(chan domain.Entry, queueSize),
		out:      make(chan workerResult, 1),
		accounts: make(map[domain.ClientID]*domain.Account),
		history:  make(map[domain.TxID]domain.Entry),
		log:      log.With().Int("worker", id).Logger(),
		metrics:  m,
	}
}

// run consumes the inbound channel until it closes, then reports the final
// account map. A panic is reported as a process-level fault; the remaining
// input is drained so the router never blocks on a dead worker.
func (w *worker) run() {
	err := w.consume()
	if err != nil {
		for range w.in {
		}
		w.out <- workerResult{err: err}
		return
	}

	w.out <- workerResult{accounts: w.accounts}
}

func (w *worker) consume() (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().
				Interface("error", r).
				Str("stack", string(debug.Stack())).
				Msg("worker panic recovered")
			err = fmt.Errorf("worker %d failed: %v", w.id, r)
		}
	}()

	for entry := range w.in {
		w.apply(entry)
	}

	return nil
}

// apply runs the per-entry state machine. Business-rule rejections discard
// the entry and keep the stream going; they are never surfaced as errors.
func (w *worker) apply(entry domain.Entry) {
	account, ok := w.accounts[entry.ClientID]
	if !ok {
		account = domain.NewAccount(entry.ClientID)
		w.accounts[entry.ClientID] = account
		w.metrics.AccountsCreated.Inc()
	}

	// A locked account ignores everything, permanently.
	if account.Locked {
		w.reject(entry, "account_locked")
		return
	}

	switch entry.Kind {
	case domain.EntryDeposit:
		amount, ok := entry.Amount()
		if !ok {
			w.reject(entry, "missing_amount")
			return
		}
		if err := account.CreditAvailable(amount); err != nil {
			w.reject(entry, rejectionReason(err))
			return
		}
		w.record(entry)

	case domain.EntryWithdrawal:
		amount, ok := entry.Amount()
		if !ok {
			w.reject(entry, "missing_amount")
			return
		}
		if err := account.DebitAvailable(amount); err != nil {
			w.reject(entry, rejectionReason(err))
			return
		}
		w.record(entry)

	case domain.EntryDispute:
		amount, ok := w.referencedAmount(entry)
		if !ok {
			return
		}
		if err := account.Hold(amount); err != nil {
			w.reject(entry, rejectionReason(err))
			return
		}

	case domain.EntryResolve:
		amount, ok := w.referencedAmount(entry)
		if !ok {
			return
		}
		if err := account.Release(amount); err != nil {
			w.reject(entry, rejectionReason(err))
			return
		}

	case domain.EntryChargeback:
		amount, ok := w.referencedAmount(entry)
		if !ok {
			return
		}
		if err := account.ForfeitHeld(amount); err != nil {
			w.reject(entry, rejectionReason(err))
			return
		}
		// Lock only after the funds actually left the account.
		account.Lock()
		w.metrics.AccountsLocked.Inc()

	default:
		w.reject(entry, "unknown_kind")
		return
	}

	w.metrics.EntriesProcessed.WithLabelValues(string(entry.Kind)).Inc()
}

// record remembers a successfully applied deposit or withdrawal so the
// dispute family can reference it. A TxID is recorded at most once; a
// later entry reusing it never replaces the original.
func (w *worker) record(entry domain.Entry) {
	if _, exists := w.history[entry.TxID]; !exists {
		w.history[entry.TxID] = entry
	}
}

// referencedAmount resolves a dispute-family entry to the amount of the
// transaction it references. Rejects when the TxID is unknown or belongs
// to another client.
func (w *worker) referencedAmount(entry domain.Entry) (decimal.Decimal, bool) {
	ref, ok := w.history[entry.TxID]
	if !ok {
		w.reject(entry, "unknown_reference")
		return decimal.Decimal{}, false
	}

	if ref.ClientID != entry.ClientID {
		w.reject(entry, "client_mismatch")
		return decimal.Decimal{}, false
	}

	amount, ok := ref.Amount()
	if !ok {
		w.reject(entry, "missing_amount")
		return decimal.Decimal{}, false
	}

	return amount, true
}

func (w *worker) reject(entry domain.Entry, reason string) {
	w.log.Debug().
		Str("kind", string(entry.Kind)).
		Uint16("client", uint16(entry.ClientID)).
		Uint32("tx", uint32(entry.TxID)).
		Str("reason", reason).
		Msg("entry rejected")

	w.metrics.EntriesRejected.WithLabelValues(string(entry.Kind), reason).Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInsufficientHeld):
		return "insufficient_held"
	case errors.Is(err, domain.ErrNegativeAmount):
		return "negative_amount"
	case errors.Is(err, domain.ErrBalanceOverflow):
		return "balance_overflow"
	default:
		return "invalid"
	}
}
