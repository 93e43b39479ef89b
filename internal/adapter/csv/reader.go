// Package csv converts delimited transaction records to and from the
// engine's typed entries and accounts.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/payengine/internal/domain"
	"github.com/iho/payengine/internal/infrastructure/metrics"
)

// Reader streams transaction records into ledger entries. Records that do
// not form a valid entry are dropped before they reach the engine; only an
// unreadable source fails the stream.
type Reader struct {
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewReader creates a Reader. Metrics may be nil.
func NewReader(log zerolog.Logger, m *metrics.Metrics) *Reader {
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}

	return &Reader{log: log, metrics: m}
}

// columns maps the header to field positions. The amount column is
// optional, the rest are required.
type columns struct {
	kind   int
	client int
	tx     int
	amount int
}

// Stream reads src until EOF, sending every parseable entry to out. It
// closes out on return, which is the engine's end-of-input signal.
func (r *Reader) Stream(ctx context.Context, src io.Reader, out chan<- domain.Entry) error {
	defer close(out)

	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // dispute-family rows may omit the amount field

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	cols, err := parseHeader(header)
	if err != nil {
		return err
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				r.discard(record, err)
				continue
			}
			return fmt.Errorf("read record: %w", err)
		}

		entry, err := r.parseRecord(cols, record)
		if err != nil {
			r.discard(record, err)
			continue
		}

		select {
		case out <- entry:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func parseHeader(header []string) (columns, error) {
	cols := columns{kind: -1, client: -1, tx: -1, amount: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cols.kind = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}

	if cols.kind < 0 || cols.client < 0 || cols.tx < 0 {
		return cols, fmt.Errorf("header must name type, client and tx columns, got %v", header)
	}

	return cols, nil
}

func (r *Reader) parseRecord(cols columns, record []string) (domain.Entry, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	kind, err := domain.ParseEntryKind(field(cols.kind))
	if err != nil {
		return domain.Entry{}, err
	}

	client64, err := strconv.ParseUint(field(cols.client), 10, 16)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("client id: %w", err)
	}
	client := domain.ClientID(client64)

	tx64, err := strconv.ParseUint(field(cols.tx), 10, 32)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("tx id: %w", err)
	}
	tx := domain.TxID(tx64)

	switch kind {
	case domain.EntryDeposit, domain.EntryWithdrawal:
		raw := field(cols.amount)
		if raw == "" {
			return domain.Entry{}, domain.ErrMissingAmount
		}

		// Negative amounts parse fine here; the engine rejects them so
		// the account still materializes with zero balances.
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Entry{}, fmt.Errorf("amount: %w", err)
		}

		if kind == domain.EntryDeposit {
			return domain.NewDeposit(client, tx, amount), nil
		}
		return domain.NewWithdrawal(client, tx, amount), nil

	case domain.EntryDispute:
		return domain.NewDispute(client, tx), nil
	case domain.EntryResolve:
		return domain.NewResolve(client, tx), nil
	default:
		return domain.NewChargeback(client, tx), nil
	}
}

func (r *Reader) discard(record []string, err error) {
	r.log.Debug().
		Strs("record", record).
		Err(err).
		Msg("record discarded")

	r.metrics.EntriesDiscarded.Inc()
}
