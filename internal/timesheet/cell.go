// Package timesheet reshapes a weekly timesheet export into one row per task
// with hours bucketed into seven weekday columns.
//
// The input is a decoded worksheet: rows of loosely typed cells, where
// one-cell rows name the active project and eleven-cell rows carry a single
// day's hours for a task. Everything in this package is pure and
// deterministic; file decoding and encoding live in internal/formats.
package timesheet

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies what a Cell holds.
type Kind int

const (
	// KindEmpty is an absent cell.
	KindEmpty Kind = iota
	// KindNumber is a numeric cell. Its raw text is kept for exact parsing.
	KindNumber
	// KindText is a string cell.
	KindText
)

// Cell is a single decoded worksheet value.
type Cell struct {
	Kind  Kind
	Value string
}

// Row is one worksheet row. Its width drives classification.
type Row []Cell

// Empty returns an absent cell.
func Empty() Cell { return Cell{Kind: KindEmpty} }

// Text returns a string cell.
func Text(s string) Cell { return Cell{Kind: KindText, Value: s} }

// Number returns a numeric cell for f.
func Number(f float64) Cell {
	return Cell{Kind: KindNumber, Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberText returns a numeric cell from its raw textual form, as stored in
// spreadsheet XML. The caller is responsible for s being numeric.
func NumberText(s string) Cell { return Cell{Kind: KindNumber, Value: s} }

// Texts builds a row of text cells, mapping "" to empty cells.
func Texts(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		if v == "" {
			row[i] = Empty()
			continue
		}
		row[i] = Text(v)
	}
	return row
}

// Truthy reports whether the cell counts as present. Empty cells, empty
// strings, zero and NaN are falsy.
func (c Cell) Truthy() bool {
	switch c.Kind {
	case KindText:
		return c.Value != ""
	case KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
		if err != nil {
			return c.Value != ""
		}
		return f != 0 && !math.IsNaN(f)
	default:
		return false
	}
}

// String returns the cell's text. Empty cells return "".
func (c Cell) String() string {
	return c.Value
}

// Float returns the numeric value of a number cell or of numeric-looking
// text. Blank text counts as 0, the way spreadsheet formulas coerce it.
// The second result is false when the cell is not a number.
func (c Cell) Float() (float64, bool) {
	if c.Kind == KindEmpty {
		return 0, false
	}
	v := strings.TrimSpace(c.Value)
	if c.Kind == KindText && v == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Hours returns the cell as an exact hour count. Non-numeric cells are zero.
func (c Cell) Hours() decimal.Decimal {
	if c.Kind == KindEmpty {
		return decimal.Zero
	}
	return ParseHours(c.Value)
}

// ParseHours parses a textual hour total. Empty or non-numeric text is
// zero, and so is anything outside the finite float64 range, which keeps
// exponents such as "1e50000000" from expanding into huge decimals.
func ParseHours(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f == 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatHours renders an hour total without trailing zeros.
func FormatHours(d decimal.Decimal) string {
	return d.String()
}

// TrimRow drops trailing empty cells so a row's width ends at its last
// populated column.
func TrimRow(row Row) Row {
	n := len(row)
	for n > 0 && row[n-1].Kind == KindEmpty {
		n--
	}
	return row[:n]
}

// cellAt returns row[i], or an empty cell when i is out of range.
func cellAt(row Row, i int) Cell {
	if i < 0 || i >= len(row) {
		return Empty()
	}
	return row[i]
}
