package timesheet

// Report is the outcome of a reshaping pass.
type Report struct {
	Table [][]string `json:"table"`
	Stats Stats      `json:"stats"`
}

// Reshape turns raw worksheet rows into the weekly table: the header row
// followed by one row per distinct task.
func Reshape(rows []Row) [][]string {
	return Summarize(rows).Table
}

// Summarize runs the same pass as Reshape and also returns its counters.
func Summarize(rows []Row) Report {
	return SummarizeInto(NewAggregator(), rows)
}

// SummarizeInto folds rows into an existing aggregator, for example one
// seeded from an earlier report.
func SummarizeInto(a *Aggregator, rows []Row) Report {
	preamble := min(PreambleRows, len(rows))
	for _, row := range rows[preamble:] {
		a.Apply(Classify(row))
	}
	stats := a.Stats()
	stats.Rows = len(rows)
	stats.Preamble = preamble
	return Report{Table: a.Table(), Stats: stats}
}
