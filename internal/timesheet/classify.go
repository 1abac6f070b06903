package timesheet

import (
	"math"

	"github.com/shopspring/decimal"
)

// Row widths that carry meaning in a timesheet export.
const (
	HeaderWidth = 1
	DetailWidth = 11

	// PreambleRows is the fixed title block skipped before classification.
	PreambleRows = 3
)

// Detail row columns.
const (
	colTask     = 0
	colCategory = 3
	colDate     = 4
	colHours    = 9
)

// DefaultCategory replaces a missing Detail category.
const DefaultCategory = "NA"

// Entry is a classified row: ProjectHeader, Detail or Ignored.
type Entry interface {
	entry()
}

// ProjectHeader switches the active project for the Detail rows after it.
type ProjectHeader struct {
	Code string
}

// Detail is one task's hours for one date.
type Detail struct {
	Task     string
	Category string
	// Serial is the date serial, NaN when the cell is not numeric.
	Serial float64
	Hours  decimal.Decimal
}

// Ignored is any row whose width is neither 1 nor 11.
type Ignored struct {
	Width int
}

func (ProjectHeader) entry() {}
func (Detail) entry()        {}
func (Ignored) entry()       {}

// Classify tags a row by its width. It never fails; unknown shapes are
// Ignored.
func Classify(row Row) Entry {
	switch len(row) {
	case HeaderWidth:
		code := ""
		if row[0].Truthy() {
			code = row[0].String()
		}
		return ProjectHeader{Code: code}
	case DetailWidth:
		return detailFrom(row)
	default:
		return Ignored{Width: len(row)}
	}
}

func detailFrom(row Row) Detail {
	d := Detail{
		Task:     cellAt(row, colTask).String(),
		Category: DefaultCategory,
		Serial:   math.NaN(),
		Hours:    decimal.Zero,
	}
	if c := cellAt(row, colCategory); c.Truthy() {
		d.Category = c.String()
	}
	if f, ok := cellAt(row, colDate).Float(); ok {
		d.Serial = f
	}
	if c := cellAt(row, colHours); c.Truthy() {
		d.Hours = c.Hours()
	}
	return d
}
