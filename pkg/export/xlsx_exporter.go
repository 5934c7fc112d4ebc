package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet   = "Sheet1"
	summarySheet   = "Summary"
	maxSheetName   = 31
	minColumnWidth = 12.0
	maxColumnWidth = 40.0
)

// XLSXExporter renders reports into a workbook: one summary sheet plus one sheet per table.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render builds the workbook and returns its bytes.
func (e *XLSXExporter) Render(report Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	summary := Dataset{Name: summarySheet, Headers: []string{"Metric", "Value"}}
	if report.Title != "" {
		summary.Rows = append(summary.Rows, map[string]string{"Metric": "Report", "Value": report.Title})
	}
	for _, field := range report.Summary {
		summary.Rows = append(summary.Rows, map[string]string{"Metric": field.Label, "Value": field.Value})
	}
	if err := writeSheet(f, summarySheet, summary, bold); err != nil {
		return nil, err
	}

	for i, table := range report.Tables {
		name := sheetName(table.Name, i+1)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, table, bold); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, data Dataset, headerStyle int) error {
	if len(data.Headers) == 0 {
		return nil
	}
	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	end, err := excelize.CoordinatesToCellName(len(data.Headers), 1)
	if err != nil {
		return fmt.Errorf("resolve %s header range: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", end, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	widths := make([]int, len(data.Headers))
	for i, h := range data.Headers {
		widths[i] = len(h)
	}
	for r, row := range data.Rows {
		record := data.record(row)
		values := make([]interface{}, len(record))
		for c, v := range record {
			values[c] = v
			if len(v) > widths[c] {
				widths[c] = len(v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("resolve %s row %d: %w", sheet, r+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+2, err)
		}
	}

	for c, w := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return fmt.Errorf("resolve %s column %d: %w", sheet, c+1, err)
		}
		width := float64(w) * 0.9
		if width < minColumnWidth {
			width = minColumnWidth
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("size %s column %s: %w", sheet, col, err)
		}
	}
	return nil
}

// sheetName trims names to the XLSX limit and falls back to a numbered name.
func sheetName(name string, position int) string {
	if name == "" || name == summarySheet {
		return fmt.Sprintf("Table %d", position)
	}
	runes := []rune(name)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	return string(runes)
}
