package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/gunnas32/QR-Stock/internal/model"
)

var csvHeader = []string{"code", "name", "kind", "qty", "delta", "person", "job", "notes", "at"}

// WriteCSV streams the flat ledger for the given items to w, oldest entry
// first. Item name is repeated per row so the file is useful on its own.
func WriteCSV(w io.Writer, items []*model.Item) error {
	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.Code] = it.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range flattenLedger(items) {
		rec := []string{
			e.ItemCode,
			names[e.ItemCode],
			string(e.Kind),
			strconv.Itoa(e.Quantity),
			strconv.Itoa(e.SignedDelta()),
			e.Person,
			e.Job,
			e.Notes,
			e.At.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
