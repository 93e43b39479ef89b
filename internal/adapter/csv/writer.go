package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/iho/payengine/internal/domain"
)

// Writer renders final account states as delimited records with the
// columns client, available, held, total, locked.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write emits one record per account, sorted by client id.
func (w *Writer) Write(dst io.Writer, accounts map[domain.ClientID]*domain.Account) error {
	cw := csv.NewWriter(dst)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	ids := make([]domain.ClientID, 0, len(accounts))
	for id := range accounts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		acc := accounts[id]

		record := []string{
			strconv.FormatUint(uint64(id), 10),
			acc.Available.String(),
			acc.Held.String(),
			acc.Total().String(),
			strconv.FormatBool(acc.Locked),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write account %d: %w", id, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
