// Package importer turns uploaded spreadsheets into enquiry item rows.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// NotAvailable fills blank text cells.
const NotAvailable = "N/A"

// ItemRow is one parsed line of a bulk item upload.
type ItemRow struct {
	Row        int    `json:"row"`
	PartNumber string `json:"part_number"`
	PartDesc   string `json:"part_desc"`
	HSCode     string `json:"hscode"`
	UnitPrice  string `json:"unit_price"`
	Quantity   string `json:"quantity"`
	Delivery   string `json:"delivery"`
	Notes      string `json:"notes"`
}

var (
	ErrNoSheet = errors.New("no sheets found in Excel file")
	ErrNoRows  = errors.New("excel file must contain a header and at least one data row")
)

// columns maps the accepted header names onto ItemRow fields.
var columns = map[string]string{
	"partnumber":  "part_number",
	"part number": "part_number",
	"part_number": "part_number",
	"partdesc":    "part_desc",
	"description": "part_desc",
	"part_desc":   "part_desc",
	"hscode":      "hscode",
	"hs code":     "hscode",
	"unitprice":   "unit_price",
	"unit price":  "unit_price",
	"unit_price":  "unit_price",
	"quantity":    "quantity",
	"qty":         "quantity",
	"delivery":    "delivery",
	"notes":       "notes",
}

// defaultOrder is used when the first row is not a recognisable header.
var defaultOrder = []string{"part_number", "part_desc", "hscode", "unit_price", "delivery", "notes"}

// ReadItems parses the first sheet of an xlsx workbook. Rows without a part
// number are dropped and reported in skipped.
func ReadItems(r io.Reader) (rows []ItemRow, skipped []string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoSheet
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(raw) < 2 {
		return nil, nil, ErrNoRows
	}

	order := headerOrder(raw[0])
	for i, cells := range raw[1:] {
		rowNum := i + 2
		row := ItemRow{Row: rowNum}
		for col, field := range order {
			value := ""
			if col < len(cells) {
				value = strings.TrimSpace(cells[col])
			}
			assign(&row, field, value)
		}

		if row.PartNumber == "" {
			if !blank(cells) {
				skipped = append(skipped, fmt.Sprintf("Row %d: part number is required", rowNum))
			}
			continue
		}
		rows = append(rows, applyDefaults(row))
	}
	return rows, skipped, nil
}

func headerOrder(header []string) []string {
	order := make([]string, len(header))
	known := 0
	for i, h := range header {
		if field, ok := columns[strings.ToLower(strings.TrimSpace(h))]; ok {
			order[i] = field
			known++
		}
	}
	if known == 0 {
		return defaultOrder
	}
	return order
}

func assign(row *ItemRow, field, value string) {
	switch field {
	case "part_number":
		row.PartNumber = value
	case "part_desc":
		row.PartDesc = value
	case "hscode":
		row.HSCode = value
	case "unit_price":
		row.UnitPrice = value
	case "quantity":
		row.Quantity = value
	case "delivery":
		row.Delivery = value
	case "notes":
		row.Notes = value
	}
}

// applyDefaults replaces blank text with N/A and a non numeric price with 0.
func applyDefaults(row ItemRow) ItemRow {
	if row.PartDesc == "" {
		row.PartDesc = NotAvailable
	}
	if row.HSCode == "" {
		row.HSCode = NotAvailable
	}
	if row.Delivery == "" {
		row.Delivery = NotAvailable
	}
	if row.Notes == "" {
		row.Notes = NotAvailable
	}
	if _, err := decimal.NewFromString(row.UnitPrice); err != nil {
		row.UnitPrice = "0"
	}
	if _, err := decimal.NewFromString(row.Quantity); err != nil {
		row.Quantity = "1"
	}
	return row
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
