package timesheet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func preamble() []Row {
	return []Row{
		{Text("Weekly timesheet")},
		{},
		{Text("Employee"), Text("J. Doe")},
	}
}

func sheet(rows ...Row) []Row {
	return append(preamble(), rows...)
}

func dataRow(project, category, task string, hours ...string) []string {
	row := []string{project, "", category, task}
	return append(row, hours...)
}

func TestReshapeSingleDetail(t *testing.T) {
	got := Reshape(sheet(
		Row{Text("P100")},
		detailRow("Design", "", Number(45300), Text("8")),
	))

	want := [][]string{
		Header,
		dataRow("P100", "NA", "Design", "0", "8", "0", "0", "0", "0", "0"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reshape mismatch (-want +got):\n%s", diff)
	}
}

func TestReshapeMergesSameTask(t *testing.T) {
	got := Reshape(sheet(
		Row{Text("P100")},
		detailRow("Design", "", Number(45300), Number(3)), // Tuesday
		detailRow("Design", "", Number(45303), Number(5)), // Friday
	))

	want := [][]string{
		Header,
		dataRow("P100", "NA", "Design", "0", "3", "0", "0", "5", "0", "0"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reshape mismatch (-want +got):\n%s", diff)
	}
}

func TestReshapeAccumulatesSameDay(t *testing.T) {
	got := Reshape(sheet(
		Row{Text("P1")},
		detailRow("Build", "dev", Number(45292), NumberText("1.5")),
		detailRow("Build", "dev", Number(45292), NumberText("2.25")),
	))

	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[1][4] != "3.75" {
		t.Errorf("Monday = %q, want 3.75", got[1][4])
	}
}

func TestReshapeIgnoresOddWidths(t *testing.T) {
	a := NewAggregator()
	rows := sheet(
		Row{Text("P100")},
		Row{Text("a"), Text("b"), Text("c"), Text("d"), Text("e")},
		detailRow("Design", "plan", Number(45300), Number(4)),
	)
	report := SummarizeInto(a, rows)

	if a.Project() != "P100" {
		t.Errorf("active project = %q, want P100", a.Project())
	}
	want := [][]string{
		Header,
		dataRow("P100", "plan", "Design", "0", "4", "0", "0", "0", "0", "0"),
	}
	if diff := cmp.Diff(want, report.Table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	if report.Stats.Ignored != 1 {
		t.Errorf("Ignored = %d, want 1", report.Stats.Ignored)
	}
}

func TestReshapeMissingCategory(t *testing.T) {
	got := Reshape(sheet(detailRow("Support", "", Number(45301), Number(1))))
	if got[1][2] != DefaultCategory {
		t.Errorf("category = %q, want %q", got[1][2], DefaultCategory)
	}
	if got[1][0] != "" {
		t.Errorf("project without a header = %q, want empty", got[1][0])
	}
}

func TestReshapeSkipsPreamble(t *testing.T) {
	rows := []Row{
		{Text("P0")},
		detailRow("Hidden", "", Number(45300), Number(9)),
		{Text("P9")},
		detailRow("Visible", "", Number(45300), Number(1)),
	}
	report := Summarize(rows)
	if len(report.Table) != 2 || report.Table[1][3] != "Visible" {
		t.Fatalf("unexpected table %v", report.Table)
	}
	if report.Table[1][0] != "" {
		t.Errorf("project code = %q, preamble header must not apply", report.Table[1][0])
	}
	if report.Stats.Preamble != 3 || report.Stats.Rows != 4 {
		t.Errorf("stats = %+v", report.Stats)
	}
}

func TestReshapeShortInput(t *testing.T) {
	for n := 0; n <= PreambleRows; n++ {
		rows := make([]Row, n)
		got := Reshape(rows)
		if diff := cmp.Diff([][]string{Header}, got); diff != "" {
			t.Errorf("%d rows: (-want +got):\n%s", n, diff)
		}
	}
}

func TestReshapeKeepsFirstProjectOnMerge(t *testing.T) {
	got := Reshape(sheet(
		Row{Text("P1")},
		detailRow("Meetings", "ops", Number(45292), Number(1)),
		Row{Text("P2")},
		detailRow("Meetings", "other", Number(45293), Number(2)),
	))

	want := [][]string{
		Header,
		dataRow("P1", "ops", "Meetings", "1", "2", "0", "0", "0", "0", "0"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reshape mismatch (-want +got):\n%s", diff)
	}
}

func TestReshapeEmptyTaskStillCounts(t *testing.T) {
	got := Reshape(sheet(
		detailRow("", "", Number(45292), Number(2)),
		detailRow("", "", Number(45292), Number(3)),
	))
	if len(got) != 2 {
		t.Fatalf("expected one line for the empty task, got %d rows", len(got))
	}
	if got[1][4] != "5" {
		t.Errorf("Monday = %q, want 5", got[1][4])
	}
}

func TestReshapeUnresolvedDate(t *testing.T) {
	report := Summarize(sheet(detailRow("Travel", "", Text("next week"), Number(6))))
	want := [][]string{
		Header,
		dataRow("", "NA", "Travel", "0", "0", "0", "0", "0", "0", "0"),
	}
	if diff := cmp.Diff(want, report.Table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	if report.Stats.Unresolved != 1 {
		t.Errorf("Unresolved = %d, want 1", report.Stats.Unresolved)
	}
}

func TestReshapeOutOfRangeHours(t *testing.T) {
	report := Summarize(sheet(
		detailRow("Overtime", "", Number(45300), Text("1e50000000")),
		detailRow("Overtime", "", Number(45301), Text("1e-2147483647")),
		detailRow("Overtime", "", Number(45302), Text("3")),
	))
	want := [][]string{
		Header,
		dataRow("", "NA", "Overtime", "0", "0", "0", "3", "0", "0", "0"),
	}
	if diff := cmp.Diff(want, report.Table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestReshapeBlankDateText(t *testing.T) {
	got := Reshape(sheet(detailRow("Travel", "", Text(""), Number(2))))
	want := [][]string{
		Header,
		dataRow("", "NA", "Travel", "0", "0", "0", "0", "0", "2", "0"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("blank date text should resolve to the epoch Saturday (-want +got):\n%s", diff)
	}
}

func TestReshapeProperties(t *testing.T) {
	type detail struct {
		project string
		task    string
		serial  float64
		hours   string
	}
	input := []detail{
		{"A", "Design", 45292, "1"},
		{"A", "Build", 45293, "2.5"},
		{"", "Design", 45294, "3"},
		{"B", "Test", 45298, "0.25"},
		{"B", "Build", 45292, "4"},
		{"B", "Deploy", 45297, ""},
		{"C", "Test", 45304, "7"},
		{"C", "Docs", 45305, "1.75"},
	}

	rows := preamble()
	want := make(map[Day]decimal.Decimal)
	firstProject := make(map[string]string)
	for _, d := range input {
		rows = append(rows, Row{Text(d.project)})
		rows = append(rows, detailRow(d.task, "", Number(d.serial), Text(d.hours)))
		rows = append(rows, Row{Text("noise"), Text("row")})

		day, _ := WeekdayOf(d.serial)
		want[day] = want[day].Add(ParseHours(d.hours))
		if _, ok := firstProject[d.task]; !ok {
			firstProject[d.task] = d.project
		}
	}

	first := Reshape(rows)
	second := Reshape(rows)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reshaping is not repeatable:\n%s", diff)
	}

	if diff := cmp.Diff(Header, first[0]); diff != "" {
		t.Errorf("header mismatch:\n%s", diff)
	}

	seen := make(map[string]bool)
	var got Week
	for _, row := range first[1:] {
		task := row[3]
		if seen[task] {
			t.Errorf("task %q appears twice", task)
		}
		seen[task] = true

		if row[0] != firstProject[task] {
			t.Errorf("task %q project = %q, want %q", task, row[0], firstProject[task])
		}
		for d := 0; d < DaysPerWeek; d++ {
			got[d] = got[d].Add(ParseHours(row[4+d]))
		}
	}

	for d := Day(0); d < DaysPerWeek; d++ {
		if !got[d].Equal(want[d]) {
			t.Errorf("%s total = %s, want %s", d, got[d], want[d])
		}
	}
}
