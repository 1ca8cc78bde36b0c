package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gunnas32/QR-Stock/internal/model"
)

func exportFixture() []*model.Item {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []*model.Item{
		{
			Code:           "bb22cc33",
			Name:           "Wood screws 4x40",
			Quantity:       12,
			AlertThreshold: 5,
			AlertRecipient: "shop@example.com",
			UpdatedAt:      base.Add(2 * time.Hour),
			History: []model.Entry{
				{ID: uuid.New(), ItemCode: "bb22cc33", Kind: model.TxIn, Quantity: 20, Person: "ana", At: base},
				{ID: uuid.New(), ItemCode: "bb22cc33", Kind: model.TxOut, Quantity: 8, Person: "leo", Job: "site 7", At: base.Add(2 * time.Hour)},
			},
		},
		{
			Code:      "aa11bb22",
			Name:      "Angle bracket",
			Quantity:  4,
			UpdatedAt: base.Add(time.Hour),
			History: []model.Entry{
				{ID: uuid.New(), ItemCode: "aa11bb22", Kind: model.TxManual, Quantity: 4, Delta: 4, Notes: "manual adjust from 0 to 4", At: base.Add(time.Hour)},
			},
		},
	}
}

func TestWorkbookSheetsAndOrdering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, exportFixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{SheetItems, SheetHistory}, f.GetSheetList())

	rows, err := f.GetRows(SheetItems)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Code", rows[0][0])
	// Sorted by name: Angle bracket before Wood screws.
	assert.Equal(t, "aa11bb22", rows[1][0])
	assert.Equal(t, "bb22cc33", rows[2][0])
	assert.Equal(t, "12", rows[2][2])
	assert.Equal(t, "shop@example.com", rows[2][4])
}

func TestWorkbookHistoryIsChronological(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, exportFixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetHistory)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Code", "Kind", "Quantity", "Delta", "Person", "Job", "Notes", "Timestamp"}, rows[0])

	assert.Equal(t, "in", rows[1][1])
	assert.Equal(t, "manual", rows[2][1])
	assert.Equal(t, "out", rows[3][1])
	assert.Equal(t, "-8", rows[3][3])
	assert.Equal(t, "site 7", rows[3][5])
}

func TestWriteCSVFlatLedger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportFixture()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, csvHeader, recs[0])

	assert.Equal(t, "bb22cc33", recs[1][0])
	assert.Equal(t, "Wood screws 4x40", recs[1][1])
	assert.Equal(t, "20", recs[1][3])
	assert.Equal(t, "20", recs[1][4])

	assert.Equal(t, "aa11bb22", recs[2][0])
	assert.Equal(t, "4", recs[2][4])
	assert.Equal(t, "manual adjust from 0 to 4", recs[2][7])

	assert.Equal(t, "-8", recs[3][4])
	assert.Equal(t, "2025-03-10T11:00:00Z", recs[3][8])
}

func TestWriteCSVEmptyInventory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1, "header only")
}
