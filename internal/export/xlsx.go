// Package export renders inventory snapshots as downloadable spreadsheets.
// The workbook carries two sheets, one for current item state and one for
// the full movement ledger, so a single file answers both "what do we have"
// and "how did it get that way".
package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gunnas32/QR-Stock/internal/model"
)

const (
	SheetItems   = "Items"
	SheetHistory = "History"
)

var (
	itemHeader    = []interface{}{"Code", "Name", "Quantity", "Alert threshold", "Alert recipient", "Updated"}
	historyHeader = []interface{}{"Code", "Kind", "Quantity", "Delta", "Person", "Job", "Notes", "Timestamp"}
)

// WriteXLSX streams a two-sheet workbook for the given items to w.
// Items are listed by name, ledger rows oldest first.
func WriteXLSX(w io.Writer, items []*model.Item) error {
	f, err := Workbook(items)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Workbook builds the spreadsheet in memory. Callers own the returned file
// and must Close it.
func Workbook(items []*model.Item) (*excelize.File, error) {
	model.SortItemsByName(items)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetItems); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetHistory); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	if err := writeItemsSheet(f, items); err != nil {
		return nil, err
	}
	if err := writeHistorySheet(f, items); err != nil {
		return nil, err
	}
	return f, nil
}

func writeItemsSheet(f *excelize.File, items []*model.Item) error {
	if err := setRow(f, SheetItems, 1, itemHeader); err != nil {
		return err
	}
	for i, it := range items {
		row := []interface{}{
			it.Code,
			it.Name,
			it.Quantity,
			it.AlertThreshold,
			it.AlertRecipient,
			it.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := setRow(f, SheetItems, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetItems, "A", "B", 24); err != nil {
		return err
	}
	return f.SetColWidth(SheetItems, "E", "F", 26)
}

func writeHistorySheet(f *excelize.File, items []*model.Item) error {
	if err := setRow(f, SheetHistory, 1, historyHeader); err != nil {
		return err
	}
	for i, e := range flattenLedger(items) {
		row := []interface{}{
			e.ItemCode,
			string(e.Kind),
			e.Quantity,
			e.SignedDelta(),
			e.Person,
			e.Job,
			e.Notes,
			e.At.UTC().Format(time.RFC3339),
		}
		if err := setRow(f, SheetHistory, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetHistory, "E", "G", 22); err != nil {
		return err
	}
	return f.SetColWidth(SheetHistory, "H", "H", 22)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// flattenLedger merges every item's history into one ascending timeline.
// Same-instant entries keep their per-item append order.
func flattenLedger(items []*model.Item) []model.Entry {
	var all []model.Entry
	for _, it := range items {
		all = append(all, it.History...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].At.Before(all[j].At) })
	return all
}
