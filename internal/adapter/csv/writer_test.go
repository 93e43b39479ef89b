package csv

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/payengine/internal/domain"
)

func TestWriter_Write(t *testing.T) {
	accounts := map[domain.ClientID]*domain.Account{
		2: {ID: 2, Available: decimal.RequireFromString("1.5"), Held: decimal.Zero, Locked: true},
		1: {ID: 1, Available: decimal.NewFromInt(10), Held: decimal.NewFromInt(5)},
	}

	var buf bytes.Buffer
	if err := NewWriter().Write(&buf, accounts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "client,available,held,total,locked\n" +
		"1,10,5,15,false\n" +
		"2,1.5,0,1.5,true\n"

	if buf.String() != want {
		t.Errorf("unexpected output:\ngot:\n%swant:\n%s", buf.String(), want)
	}
}

func TestWriter_EmptyResultSet(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter().Write(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.String() != "client,available,held,total,locked\n" {
		t.Errorf("expected header only, got %q", buf.String())
	}
}

func TestWriter_PreservesDecimalPrecision(t *testing.T) {
	accounts := map[domain.ClientID]*domain.Account{
		1: {ID: 1, Available: decimal.RequireFromString("1.2345"), Held: decimal.RequireFromString("0.0001")},
	}

	var buf bytes.Buffer
	if err := NewWriter().Write(&buf, accounts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "client,available,held,total,locked\n" +
		"1,1.2345,0.0001,1.2346,false\n"

	if buf.String() != want {
		t.Errorf("unexpected output:\ngot:\n%swant:\n%s", buf.String(), want)
	}
}
