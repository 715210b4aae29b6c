package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jmartens-dev/bulletin-harvester/constants"
	"github.com/jmartens-dev/bulletin-harvester/internal/entity"
	"github.com/jmartens-dev/bulletin-harvester/internal/harvest"
)

func passRecord(filename string) entity.Record {
	return entity.Record{
		ID:       uuid.New(),
		Filename: filename,
		Status:   constants.StatusPass,
		Fields: harvest.Result{
			QANumberFull:  "AB-1234",
			QANumberShort: "E22",
			Models:        []string{"ECOSYS M3040", "TASKalfa 3005i"},
			DocumentTitle: "Drum unit replacement",
			PublishedDate: "2024-01-05",
		},
	}
}

func rowsOf(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteXLSX_EmptyRecordsIsHeadersOnly(t *testing.T) {
	s := NewService(nil)
	data, err := s.WriteXLSX(nil)
	require.NoError(t, err)

	rows := rowsOf(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, Headers, rows[0])
}

func TestWriteXLSX_RowContentAndOrder(t *testing.T) {
	s := NewService(nil)
	records := []entity.Record{
		passRecord("z-last-alphabetically.pdf"),
		passRecord("a-first-alphabetically.pdf"),
	}
	data, err := s.WriteXLSX(records)
	require.NoError(t, err)

	rows := rowsOf(t, data)
	require.Len(t, rows, 3)

	// Rows keep accumulation order, not filename order.
	assert.Equal(t, "z-last-alphabetically.pdf", rows[1][12])
	assert.Equal(t, "a-first-alphabetically.pdf", rows[2][12])

	// Short code is embedded in the display form of the full number.
	assert.Equal(t, "AB-1234 (E22)", rows[1][0])
	assert.Equal(t, "E22", rows[1][1])
	assert.Equal(t, "ECOSYS M3040; TASKalfa 3005i", rows[1][2])
	assert.Equal(t, string(constants.StatusPass), rows[1][13])
}

func TestWriteXLSX_AbsentFieldsRenderNotFound(t *testing.T) {
	s := NewService(nil)
	rec := entity.Record{
		ID:       uuid.New(),
		Filename: "bare.pdf",
		Status:   constants.StatusNeedsReview,
		Fields:   harvest.Result{},
	}
	rec.ReviewReason = "no models harvested"
	rec.ReviewPath = "/review/bare.txt"

	data, err := s.WriteXLSX([]entity.Record{rec})
	require.NoError(t, err)

	rows := rowsOf(t, data)
	require.Len(t, rows, 2)
	for col := 0; col < 12; col++ {
		assert.Equal(t, harvest.NotFound, rows[1][col], "column %d", col)
	}
	assert.Equal(t, "no models harvested; text: /review/bare.txt", rows[1][14])
}

func TestWriteReport_NoTemplate(t *testing.T) {
	s := NewService(nil)
	out := filepath.Join(t.TempDir(), "report.xlsx")

	path, err := s.WriteReport([]entity.Record{passRecord("a.pdf")}, "", out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWriteReport_TemplateCopiedNotMutated(t *testing.T) {
	s := NewService(nil)
	dir := t.TempDir()

	// Build a template workbook that carries the sheet plus a marker cell.
	tplPath := filepath.Join(dir, "template.xlsx")
	tpl := excelize.NewFile()
	_, err := tpl.NewSheet(sheet)
	require.NoError(t, err)
	require.NoError(t, tpl.SetCellValue(sheet, "Z1", "marker"))
	require.NoError(t, tpl.SaveAs(tplPath))
	require.NoError(t, tpl.Close())
	before, err := os.ReadFile(tplPath)
	require.NoError(t, err)

	out := filepath.Join(dir, "report.xlsx")
	path, err := s.WriteReport([]entity.Record{passRecord("a.pdf")}, tplPath, out)
	require.NoError(t, err)

	// The artifact is a timestamped sibling of outPath, never outPath itself
	// and never the template.
	assert.NotEqual(t, out, path)
	assert.NotEqual(t, tplPath, path)
	assert.True(t, filepath.Dir(path) == dir)

	after, err := os.ReadFile(tplPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "template must stay untouched")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	marker, err := f.GetCellValue(sheet, "Z1")
	require.NoError(t, err)
	assert.Equal(t, "marker", marker)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(rows), 2)
}

func TestTimestamped(t *testing.T) {
	got := timestamped("/out/report.xlsx")
	assert.True(t, filepath.Ext(got) == ".xlsx")
	assert.Contains(t, got, "/out/report_")
}
