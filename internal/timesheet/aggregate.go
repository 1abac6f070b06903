package timesheet

import "github.com/shopspring/decimal"

// Header is the fixed first row of every reshaped table.
var Header = []string{
	"Project Code", "Project SubCode", "Category", "Task",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Output table columns.
const (
	colOutProject = iota
	colOutSubCode
	colOutCategory
	colOutTask
	colOutMonday

	outputWidth = colOutMonday + DaysPerWeek
)

// Week holds one hour bucket per weekday. The zero value is all zero.
type Week [DaysPerWeek]decimal.Decimal

// Add returns the column-wise sum of w and o.
func (w Week) Add(o Week) Week {
	var sum Week
	for i := range w {
		sum[i] = w[i].Add(o[i])
	}
	return sum
}

// Line is one distinct task in the output table.
type Line struct {
	ProjectCode    string
	ProjectSubCode string
	Category       string
	Task           string
	Hours          Week
}

// Strings renders the line as an output table row.
func (l Line) Strings() []string {
	row := make([]string, 0, outputWidth)
	row = append(row, l.ProjectCode, l.ProjectSubCode, l.Category, l.Task)
	for _, h := range l.Hours {
		row = append(row, FormatHours(h))
	}
	return row
}

// Stats counts what a pass saw.
type Stats struct {
	Rows       int `json:"rows"`
	Preamble   int `json:"preamble"`
	Headers    int `json:"headers"`
	Details    int `json:"details"`
	Ignored    int `json:"ignored"`
	Unresolved int `json:"unresolved"`
	Merged     int `json:"merged"`
	Lines      int `json:"lines"`
}

// Aggregator is the fold state of a reshaping pass. Feed it classified
// entries in input order with Apply. A zero Aggregator is not usable; use
// NewAggregator.
type Aggregator struct {
	project string
	lines   []Line
	index   map[string]int
	stats   Stats
}

// NewAggregator returns an empty fold with no active project.
func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[string]int)}
}

// NewAggregatorFrom seeds a fold with a previously reshaped table so new
// entries merge into it. A leading header row is skipped. Rows shorter than
// the task column are ignored; missing or non-numeric totals read as zero.
// Repeated task names collapse into their first row.
func NewAggregatorFrom(table [][]string) *Aggregator {
	a := NewAggregator()
	for i, row := range table {
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) <= colOutTask {
			continue
		}
		l := Line{
			ProjectCode:    row[colOutProject],
			ProjectSubCode: row[colOutSubCode],
			Category:       row[colOutCategory],
			Task:           row[colOutTask],
		}
		for d := 0; d < DaysPerWeek; d++ {
			if c := colOutMonday + d; c < len(row) {
				l.Hours[d] = ParseHours(row[c])
			}
		}
		a.merge(l)
	}
	return a
}

func isHeader(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i := range row {
		if row[i] != Header[i] {
			return false
		}
	}
	return true
}

// Apply folds one classified entry into the state.
func (a *Aggregator) Apply(e Entry) {
	switch e := e.(type) {
	case ProjectHeader:
		a.stats.Headers++
		a.project = e.Code
	case Detail:
		a.stats.Details++
		a.applyDetail(e)
	default:
		a.stats.Ignored++
	}
}

func (a *Aggregator) applyDetail(d Detail) {
	var week Week
	if day, ok := WeekdayOf(d.Serial); ok {
		week[day] = d.Hours
	} else {
		a.stats.Unresolved++
	}
	a.merge(Line{
		ProjectCode: a.project,
		Category:    d.Category,
		Task:        d.Task,
		Hours:       week,
	})
}

// merge adds l's hours to the line with the same task, or appends l.
func (a *Aggregator) merge(l Line) {
	if i, ok := a.index[l.Task]; ok {
		a.lines[i].Hours = a.lines[i].Hours.Add(l.Hours)
		a.stats.Merged++
		return
	}
	a.index[l.Task] = len(a.lines)
	a.lines = append(a.lines, l)
}

// Project returns the active project code.
func (a *Aggregator) Project() string {
	return a.project
}

// Lines returns a copy of the output lines in first-seen order.
func (a *Aggregator) Lines() []Line {
	out := make([]Line, len(a.lines))
	copy(out, a.lines)
	return out
}

// Stats returns the counters collected so far.
func (a *Aggregator) Stats() Stats {
	s := a.stats
	s.Lines = len(a.lines)
	return s
}

// Table renders the header followed by every line.
func (a *Aggregator) Table() [][]string {
	table := make([][]string, 0, len(a.lines)+1)
	header := make([]string, len(Header))
	copy(header, Header)
	table = append(table, header)
	for _, l := range a.lines {
		table = append(table, l.Strings())
	}
	return table
}
