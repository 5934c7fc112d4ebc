package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func growthDataset() Dataset {
	return Dataset{
		Name:    "Growth",
		Headers: []string{"date", "users", "new_users"},
		Rows: []map[string]string{
			{"date": "2025-01-01", "users": "10", "new_users": "2"},
			{"date": "2025-01-02", "users": "11"},
		},
	}
}

func TestCSVExporterRendersHeaderOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(growthDataset())
	require.NoError(t, err)
	assert.Equal(t, "date,users,new_users\n2025-01-01,10,2\n2025-01-02,11,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	report := Report{
		Title:    "Year in review",
		Subtitle: "2024-09-01 to 2025-08-31",
		Summary:  []Field{{Label: "Average", Value: "15.20"}, {Label: "Award", Value: "comeback"}},
		Tables:   []Dataset{growthDataset()},
	}
	out, err := NewPDFExporter().Render(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresTitle(t *testing.T) {
	_, err := NewPDFExporter().Render(Report{})
	assert.Error(t, err)
}

func TestXLSXExporterWritesSummaryAndTables(t *testing.T) {
	report := Report{
		Title:   "Admin overview",
		Summary: []Field{{Label: "Total users", Value: "42"}},
		Tables:  []Dataset{growthDataset(), {Headers: []string{"rank"}, Rows: []map[string]string{{"rank": "1"}}}},
	}
	out, err := NewXLSXExporter().Render(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Growth", "Table 2"}, f.GetSheetList())

	value, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "42", value)

	rows, err := f.GetRows("Growth")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "users", "new_users"}, rows[0])
	require.GreaterOrEqual(t, len(rows[2]), 2)
	assert.Equal(t, "2025-01-02", rows[2][0])
	assert.Equal(t, "11", rows[2][1])
}

func TestSheetNameIsTrimmed(t *testing.T) {
	assert.Equal(t, "Table 3", sheetName("", 3))
	assert.Equal(t, "Table 1", sheetName(summarySheet, 1))
	assert.Len(t, []rune(sheetName("A very long sheet name that exceeds the limit", 1)), maxSheetName)
}
