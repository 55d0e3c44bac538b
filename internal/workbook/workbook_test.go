package workbook

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/KaramelBytes/sheetdash/internal/analysis"
	"github.com/KaramelBytes/sheetdash/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Projects"))
	require.NoError(t, f.SetSheetRow("Projects", "A1", &[]any{" Name ", "Region", "Budget", "Start"}))
	require.NoError(t, f.SetSheetRow("Projects", "A2", &[]any{"A", "North", 100}))
	require.NoError(t, f.SetSheetRow("Projects", "A3", &[]any{"B", "South", 200.5}))
	// row 4 left blank on purpose
	require.NoError(t, f.SetSheetRow("Projects", "A5", &[]any{"C", "North", 150}))

	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Projects", "D2", 45306))
	require.NoError(t, f.SetCellStyle("Projects", "D2", "D2", style))

	_, err = f.NewSheet("Vacía")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Vacía", "A1", &[]any{"Latitud", "Longitud"}))

	path := filepath.Join(t.TempDir(), "dataset.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestOpenXLSX(t *testing.T) {
	wb, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Projects", "Vacía"}, wb.SheetNames())
	assert.True(t, wb.HasSheet("Vacía"))

	tb, err := wb.Table("Projects")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Region", "Budget", "Start"}, tb.Columns)
	require.Equal(t, 3, tb.Len(), "blank row is dropped")
	assert.Equal(t, "C", tb.Rows[2][0].Raw)

	assert.Equal(t, table.Number, tb.Rows[0][2].Kind)
	assert.InDelta(t, 100, tb.Rows[0][2].Num, 1e-9)
	assert.Equal(t, "200.5", tb.Rows[1][2].Raw)
	assert.Equal(t, table.Time, tb.Rows[0][3].Kind)
	assert.True(t, tb.Rows[1][3].IsMissing())

	again, err := wb.Table("Projects")
	require.NoError(t, err)
	assert.Same(t, tb, again, "sheet is read once")

	empty, err := wb.Table("Vacía")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, []string{"Latitud", "Longitud"}, empty.Columns)
}

func TestTableUnknownSheet(t *testing.T) {
	wb, err := Open(writeFixture(t))
	require.NoError(t, err)
	defer wb.Close()
	_, err = wb.Table("Nope")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestOpenCSVAsSingleSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proyectos.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,Budget\nA,1\n,\nB,2\n"), 0o644))

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"proyectos"}, wb.SheetNames())

	tb, err := wb.Table("proyectos")
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, table.Number, tb.Rows[1][1].Kind)
}

func TestOpenTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("A\tB\nx\t1\n"), 0o644))
	wb, err := Open(path)
	require.NoError(t, err)
	tb, err := wb.Table("data")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tb.Columns)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestOpenXLSXNumericText(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Código", "Monto"}))
	for i, code := range []string{"001", "002", "010"} {
		row := i + 2
		require.NoError(t, f.SetCellStr("Sheet1", "A"+strconv.Itoa(row), code))
		require.NoError(t, f.SetCellValue("Sheet1", "B"+strconv.Itoa(row), row*10))
	}
	path := filepath.Join(t.TempDir(), "codes.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()
	tb, err := wb.Table("Sheet1")
	require.NoError(t, err)
	require.Equal(t, 3, tb.Len())
	assert.Equal(t, table.Text, tb.Rows[0][0].Kind)
	assert.Equal(t, "001", tb.Rows[0][0].Raw)
	assert.Equal(t, table.Number, tb.Rows[0][1].Kind)

	schema := analysis.Classify(tb)
	assert.Equal(t, []string{"Código"}, schema.Categorical())
	assert.Equal(t, []string{"Monto"}, schema.Numeric())
}

func TestOpenXLSXCellsPastHeader(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Region"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"A", "North"}))
	require.NoError(t, f.SetCellValue("Sheet1", "D3", "nota"))
	path := filepath.Join(t.TempDir(), "wide.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()
	tb, err := wb.Table("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Region", "Unnamed: 2", "Unnamed: 3"}, tb.Columns)
	require.Equal(t, 2, tb.Len(), "row with values only past the header is kept")
	assert.Equal(t, "nota", tb.Rows[1][3].Raw)
	assert.True(t, tb.Rows[1][0].IsMissing())
}

func TestCellValue(t *testing.T) {
	unset := excelize.CellTypeUnset
	assert.True(t, cellValue("", "", unset).IsMissing())
	assert.Equal(t, table.Text, cellValue("Norte", "Norte", excelize.CellTypeSharedString).Kind)
	assert.Equal(t, table.Number, cellValue("0.125", "12.50%", unset).Kind)
	assert.Equal(t, table.Time, cellValue("45306", "01-15-24", unset).Kind)
	bv := cellValue("1", "TRUE", excelize.CellTypeBool)
	assert.Equal(t, table.Text, bv.Kind)
	assert.Equal(t, "TRUE", bv.Raw)

	for _, typ := range []excelize.CellType{excelize.CellTypeSharedString, excelize.CellTypeInlineString} {
		v := cellValue("001", "001", typ)
		assert.Equal(t, table.Text, v.Kind)
		assert.Equal(t, "001", v.Raw)
	}
	assert.Equal(t, table.Number, cellValue("001", "001", excelize.CellTypeNumber).Kind)
}
