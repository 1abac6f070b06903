package xlsx

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/tsconv/internal/timesheet"
)

// writeExport builds a small timesheet export the way a time-tracking tool
// would: a title block, a project header, then detail rows with numeric
// date serials formatted as dates.
func writeExport(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	set := func(cell string, v interface{}) {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("SetCellValue(%s): %v", cell, err)
		}
	}

	set("A1", "Timesheet")
	set("A2", "Week 2")
	set("A4", "P100")
	set("A5", "Design")
	set("D5", "2024-plan")
	set("E5", 45300)
	set("J5", 7.5)
	set("K5", "approved")

	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStyle(sheet, "E5", "E5", style); err != nil {
		t.Fatal(err)
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

func TestReadFileDecodesCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)

	sheet, err := ReadFile(path, "")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if sheet.Name != "Sheet1" {
		t.Errorf("expected first sheet, got %q", sheet.Name)
	}
	if len(sheet.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(sheet.Rows))
	}

	if w := len(sheet.Rows[2]); w != 0 {
		t.Errorf("blank row width = %d, want 0", w)
	}
	if w := len(sheet.Rows[3]); w != 1 {
		t.Errorf("project row width = %d, want 1", w)
	}

	detail := sheet.Rows[4]
	if len(detail) != timesheet.DetailWidth {
		t.Fatalf("detail row width = %d, want %d", len(detail), timesheet.DetailWidth)
	}
	if detail[0].Kind != timesheet.KindText || detail[0].String() != "Design" {
		t.Errorf("task cell = %+v", detail[0])
	}
	if detail[1].Kind != timesheet.KindEmpty {
		t.Errorf("gap cell = %+v, want empty", detail[1])
	}
	if detail[4].Kind != timesheet.KindNumber || detail[4].String() != "45300" {
		t.Errorf("date cell = %+v, want raw serial 45300", detail[4])
	}
	if detail[9].Kind != timesheet.KindNumber || detail[9].String() != "7.5" {
		t.Errorf("hours cell = %+v", detail[9])
	}
}

func TestReadBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sheet, err := ReadBytes(data, "Sheet1")
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if len(sheet.Rows) != 5 {
		t.Errorf("expected 5 rows, got %d", len(sheet.Rows))
	}
}

func TestReadFileMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	writeExport(t, path)

	if _, err := ReadFile(path, "Nope"); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := ReadFile("/nonexistent/file.xlsx", "")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteAndReadTable(t *testing.T) {
	table := [][]string{
		timesheet.Header,
		{"P100", "", "NA", "Design", "0", "8", "0", "0", "0", "0", "0"},
	}

	path := filepath.Join(t.TempDir(), "QCIF_format.xlsx")
	if err := WriteFile(table, "", path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadTable(path, DefaultSheetName)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0][3] != "Task" || got[1][5] != "8" {
		t.Errorf("unexpected table %v", got)
	}
}

func TestWriteStream(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, [][]string{timesheet.Header}, "Report"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()
	if name := f.GetSheetName(0); name != "Report" {
		t.Errorf("sheet name = %q, want Report", name)
	}
}

func TestDecodeCell(t *testing.T) {
	tests := []struct {
		value string
		typ   excelize.CellType
		want  timesheet.Kind
	}{
		{"45300", excelize.CellTypeUnset, timesheet.KindNumber},
		{"8.25", excelize.CellTypeNumber, timesheet.KindNumber},
		{"45300", excelize.CellTypeSharedString, timesheet.KindText},
		{"TRUE", excelize.CellTypeBool, timesheet.KindText},
		{"n/a", excelize.CellTypeUnset, timesheet.KindText},
	}
	for _, tt := range tests {
		if got := decodeCell(tt.value, tt.typ).Kind; got != tt.want {
			t.Errorf("decodeCell(%q, %v) kind = %v, want %v", tt.value, tt.typ, got, tt.want)
		}
	}
}
