// Package export renders comparison views as downloadable spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/medcompare/backend/internal/domain"
	"github.com/medcompare/backend/internal/pricing"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheet    = "Sheet1"
)

var headers = []string{
	"Source", "Name", "Manufacturer", "Pack", "MRP", "Price",
	"Discount", "Price/Unit", "Price/Unit (INR)", "Composition", "Link",
}

var columnWidths = []float64{12, 40, 24, 24, 12, 12, 12, 14, 16, 40, 50}

// XLSXExporter writes a comparison view as an Excel workbook
type XLSXExporter struct{}

// NewXLSXExporter creates an Excel exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

var _ domain.ComparisonExporter = (*XLSXExporter)(nil)

// ContentType returns the MIME type of the workbook
func (e *XLSXExporter) ContentType() string { return xlsxContentType }

// FileExtension returns the file extension of the workbook
func (e *XLSXExporter) FileExtension() string { return "xlsx" }

// Export writes one row per item of the view below a styled header row.
// The numeric price per unit column is left blank when it cannot be derived.
func (e *XLSXExporter) Export(view domain.ComparisonView, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := view.Title
	if sheetName == "" {
		sheetName = "Comparison"
	}
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeader(f, sheetName, headerStyle); err != nil {
		return err
	}

	for rowIdx, row := range view.Rows {
		values := []any{
			string(row.Source), row.Name, row.Manufacturer, row.Pack, row.MRP, row.Price,
			row.Discount, row.PricePerUnit, nil, row.Composition, row.Link,
		}
		if rowIdx < len(view.Items) {
			if ppu := pricing.ComparablePricePerUnit(view.Items[rowIdx]); ppu != nil {
				values[8] = *ppu
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", rowIdx+2, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowIdx+2, err)
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to address column %d: %w", i+1, err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheetName string, style int) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header %q: %w", header, err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style header %q: %w", header, err)
		}
	}
	return nil
}
