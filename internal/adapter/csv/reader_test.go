package csv

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/payengine/internal/domain"
)

func streamAll(t *testing.T, input string) []domain.Entry {
	t.Helper()

	out := make(chan domain.Entry, 64)
	r := NewReader(zerolog.Nop(), nil)

	if err := r.Stream(context.Background(), strings.NewReader(input), out); err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}

	var entries []domain.Entry
	for e := range out {
		entries = append(entries, e)
	}
	return entries
}

func TestReader_Stream(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 10.5\n" +
		"withdrawal, 1, 2, 3.25\n" +
		"dispute, 1, 1,\n" +
		"resolve, 1, 1,\n" +
		"chargeback, 1, 1,\n"

	entries := streamAll(t, input)

	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}

	dep := entries[0]
	if dep.Kind != domain.EntryDeposit || dep.ClientID != 1 || dep.TxID != 1 {
		t.Errorf("unexpected first entry: %+v", dep)
	}

	amount, ok := dep.Amount()
	if !ok || !amount.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("expected amount 10.5, got %s", amount)
	}

	wantKinds := []domain.EntryKind{
		domain.EntryDeposit,
		domain.EntryWithdrawal,
		domain.EntryDispute,
		domain.EntryResolve,
		domain.EntryChargeback,
	}
	for i, kind := range wantKinds {
		if entries[i].Kind != kind {
			t.Errorf("entry %d: expected kind %s, got %s", i, kind, entries[i].Kind)
		}
	}
}

func TestReader_SkipsBadRecords(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"transfer,1,1,10\n" + // unknown kind
		"deposit,70000,2,10\n" + // client id out of uint16 range
		"deposit,1,not-a-tx,10\n" +
		"deposit,1,3,\n" + // deposit without amount
		"deposit,1,4,ten\n" +
		"deposit,1,5,10\n"

	entries := streamAll(t, input)

	if len(entries) != 1 {
		t.Fatalf("expected only the valid record, got %d entries", len(entries))
	}

	if entries[0].TxID != 5 {
		t.Errorf("expected tx 5, got %d", entries[0].TxID)
	}
}

func TestReader_DisputeRowWithoutAmountField(t *testing.T) {
	// Dispute-family rows commonly drop the trailing field entirely.
	input := "type,client,tx,amount\n" +
		"deposit,1,1,10\n" +
		"dispute,1,1\n"

	entries := streamAll(t, input)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[1].Kind != domain.EntryDispute {
		t.Errorf("expected dispute, got %s", entries[1].Kind)
	}
}

func TestReader_NegativeAmountPassesThrough(t *testing.T) {
	// The engine owns the sign check; the reader must not pre-filter.
	entries := streamAll(t, "type,client,tx,amount\ndeposit,1,1,-10\n")

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	amount, _ := entries[0].Amount()
	if !amount.IsNegative() {
		t.Errorf("expected negative amount to survive parsing, got %s", amount)
	}
}

func TestReader_HeaderOrderFlexible(t *testing.T) {
	entries := streamAll(t, "client,amount,type,tx\n7,42,deposit,9\n")

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.ClientID != 7 || e.TxID != 9 || e.Kind != domain.EntryDeposit {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestReader_MissingRequiredColumn(t *testing.T) {
	out := make(chan domain.Entry, 1)
	r := NewReader(zerolog.Nop(), nil)

	err := r.Stream(context.Background(), strings.NewReader("type,client,amount\ndeposit,1,10\n"), out)
	if err == nil {
		t.Fatal("expected error for missing tx column")
	}
}

func TestReader_EmptyInput(t *testing.T) {
	entries := streamAll(t, "")

	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
