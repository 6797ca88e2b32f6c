package main

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/roster/internal/core"
)

const separator = "========================================="

// printReport writes the first top people followed by the statistics block.
func printReport(w io.Writer, result *core.Result, top int) {
	fmt.Fprintf(w, "Successfully read %d people:\n", len(result.People))
	fmt.Fprintln(w, separator)

	for _, p := range core.Top(result.People, top) {
		fmt.Fprintln(w, p)
	}

	stats := core.Summarize(result.People)
	fmt.Fprintln(w, "\nStatistics:")
	fmt.Fprintf(w, "Total people: %d\n", stats.Total)
	fmt.Fprintf(w, "Male: %d, Female: %d\n", stats.Male, stats.Female)
	fmt.Fprintf(w, "Unique departments: %d\n", stats.UniqueDivisions)
	fmt.Fprintf(w, "Average salary: %.2f\n", stats.AverageSalary)
	fmt.Fprintf(w, "Max salary: %.2f\n", stats.MaxSalary)
	fmt.Fprintf(w, "Min salary: %.2f\n", stats.MinSalary)

	if n := len(result.Failed); n > 0 {
		fmt.Fprintf(w, "Skipped lines: %d\n", n)
	}
}

func printFailures(w io.Writer, failed []*core.LineError) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSkipped lines:")
	for _, f := range failed {
		fmt.Fprintf(w, "  %v\n", f)
	}
}
