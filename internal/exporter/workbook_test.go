package exporter

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shoreline/internal/shoreline"
)

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	wb := NewWorkbookWriter(dir)

	series := []shoreline.BinValue{{Longitude: 0.25, Value: 12.5}, {Longitude: 0.5, Value: math.NaN()}}
	sheets := []Sheet{
		SeriesSheet("Arabia min", "Geodesic Length [km]", series),
		DiscrepancySheet("Discrepancy", sampleDiscrepancies()),
		SummarySheet([]SummaryRow{{Series: "Arabia min", Summary: shoreline.Describe(series)}}),
	}
	require.NoError(t, wb.WriteWorkbook("offsets.xlsx", sheets))

	f, err := excelize.OpenFile(filepath.Join(dir, "offsets.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Arabia min", "Discrepancy", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Arabia min")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Lon", "Geodesic Length [km]"}, rows[0])
	assert.Equal(t, []string{"0.25", "12.5"}, rows[1])
	assert.Equal(t, "0.5", rows[2][0])
	if len(rows[2]) > 1 {
		assert.Empty(t, rows[2][1], "missing value is an empty cell")
	}

	rows, err = f.GetRows("Discrepancy")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Diff [km]", rows[0][5])
	assert.Equal(t, "117.85", rows[1][5])

	rows, err = f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Arabia min", rows[1][0])
	assert.Equal(t, "1", rows[1][1])
}

func TestWriteWorkbook_NoSheets(t *testing.T) {
	err := NewWorkbookWriter(t.TempDir()).WriteWorkbook("empty.xlsx", nil)
	assert.Error(t, err)
}

func TestWriteWorkbook_CaseOnlyCollision(t *testing.T) {
	dir := t.TempDir()
	series := []shoreline.BinValue{{Longitude: 1, Value: 2}}
	sheets := []Sheet{
		SeriesSheet("Arabia min", "Offset", series),
		SeriesSheet("ARABIA MIN", "Offset", series),
	}
	require.NoError(t, NewWorkbookWriter(dir).WriteWorkbook("case.xlsx", sheets))

	f, err := excelize.OpenFile(filepath.Join(dir, "case.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Arabia min", "ARABIA MIN (2)"}, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Arabia_min", sheetName("Arabia/min"))
	assert.Equal(t, "a_b_c", sheetName("a[b]c"))
	assert.Equal(t, "Sheet", sheetName("  "))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40))), maxSheetName)
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Arabia", uniqueSheetName("Arabia", used))
	assert.Equal(t, "Arabia (2)", uniqueSheetName("Arabia", used))
	// case-insensitive collision; the caller's casing is kept
	assert.Equal(t, "ARABIA (3)", uniqueSheetName("ARABIA", used))

	long := strings.Repeat("y", maxSheetName)
	assert.Equal(t, long, uniqueSheetName(long, used))
	second := uniqueSheetName(long, used)
	assert.Len(t, second, maxSheetName)
	assert.True(t, strings.HasSuffix(second, " (2)"))
}
