package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadItemsWithHeader(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"partNumber", "partDesc", "hscode", "unitPrice", "delivery", "notes", "quantity"},
		{"AB-12/3", "Valve", "8481", "12.5", "2 weeks", "", "4"},
		{"CD-9", "", "", "abc", "", "fragile"},
	})

	rows, skipped, err := ReadItems(buf)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, "AB-12/3", rows[0].PartNumber)
	assert.Equal(t, "12.5", rows[0].UnitPrice)
	assert.Equal(t, "4", rows[0].Quantity)
	assert.Equal(t, NotAvailable, rows[0].Notes)

	assert.Equal(t, NotAvailable, rows[1].PartDesc)
	assert.Equal(t, NotAvailable, rows[1].HSCode)
	assert.Equal(t, "0", rows[1].UnitPrice)
	assert.Equal(t, "1", rows[1].Quantity)
	assert.Equal(t, "fragile", rows[1].Notes)
	assert.Equal(t, 3, rows[1].Row)
}

func TestReadItemsSkipsRowsWithoutPartNumber(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"partNumber", "partDesc"},
		{"", "orphan description"},
		{"X1", "ok"},
	})

	rows, skipped, err := ReadItems(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "X1", rows[0].PartNumber)
	assert.Equal(t, []string{"Row 2: part number is required"}, skipped)
}

func TestReadItemsNeedsDataRow(t *testing.T) {
	buf := workbook(t, [][]interface{}{{"partNumber"}})
	_, _, err := ReadItems(buf)
	assert.ErrorIs(t, err, ErrNoRows)
}
