// Package progress renders a one-line progress bar for batch conversions.
// The bar draws to stderr so stdout stays clean for reports and JSON.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Bar counts finished conversions out of a known total.
type Bar struct {
	Total   int
	Current int
	Failed  int
	Label   string
	Width   int
	Enabled bool

	out io.Writer
	mu  sync.Mutex
}

// New creates a bar on stderr. It is disabled when quiet is set, when
// stderr is not a terminal, or when TSCONV_NO_PROGRESS=1.
func New(label string, total int, quiet bool) *Bar {
	return &Bar{
		Total:   total,
		Label:   label,
		Width:   30,
		Enabled: !quiet && shouldEnable(os.Stderr),
		out:     os.Stderr,
	}
}

// NewWriter creates an enabled bar that draws to w.
func NewWriter(w io.Writer, label string, total int) *Bar {
	return &Bar{Total: total, Label: label, Width: 30, Enabled: true, out: w}
}

// Done records one finished conversion of input and redraws. It is safe
// to call from several goroutines.
func (b *Bar) Done(input string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Current = min(b.Current+1, b.Total)
	if err != nil {
		b.Failed++
	}
	b.render(input)
}

// Finish clears the bar and prints a summary line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.Enabled {
		return
	}
	if b.Failed > 0 {
		fmt.Fprintf(b.out, "\r\033[K✗ %d of %d conversions failed\n", b.Failed, b.Total)
		return
	}
	fmt.Fprintf(b.out, "\r\033[K✓ %d of %d converted\n", b.Current, b.Total)
}

// Pct returns the completed share in percent.
func (b *Bar) Pct() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Total == 0 {
		return 0
	}
	return float64(b.Current) / float64(b.Total) * 100
}

func (b *Bar) render(status string) {
	if !b.Enabled {
		return
	}

	filled := 0
	if b.Total > 0 {
		filled = b.Current * b.Width / b.Total
	}

	bar := strings.Repeat("=", filled) + strings.Repeat(" ", b.Width-filled)
	fmt.Fprintf(b.out, "\r\033[K%s [%s] %d/%d  %s", b.Label, bar, b.Current, b.Total, status)
}

func shouldEnable(f *os.File) bool {
	if os.Getenv("TSCONV_NO_PROGRESS") == "1" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
