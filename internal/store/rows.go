package store

import (
	"github.com/google/uuid"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/person"
)

// divisionRows returns COPY rows matching divisionColumns.
func divisionRows(runID uuid.UUID, divisions []*person.Division) [][]any {
	id := toPgUUID(runID)
	rows := make([][]any, 0, len(divisions))
	for _, d := range divisions {
		rows = append(rows, []any{id, toPgInt4(d.ID()), d.Name()})
	}
	return rows
}

// peopleRows returns COPY rows matching peopleColumns. Position is the
// 0-based index in file order, since person ids are not unique.
func peopleRows(runID uuid.UUID, people []*person.Person) [][]any {
	id := toPgUUID(runID)
	rows := make([][]any, 0, len(people))
	for i, p := range people {
		rows = append(rows, []any{
			id,
			toPgInt4(i),
			toPgInt8(p.ID()),
			toPgText(p.Name()),
			p.Gender().ShortCode(),
			toPgDate(p.BirthDate()),
			toPgInt4(p.Division().ID()),
			toPgFloat8(p.Salary()),
		})
	}
	return rows
}

// failureRows returns COPY rows matching failureColumns.
func failureRows(runID uuid.UUID, failed []*core.LineError) [][]any {
	id := toPgUUID(runID)
	rows := make([][]any, 0, len(failed))
	for _, f := range failed {
		rows = append(rows, []any{id, toPgInt4(f.Line), toPgText(f.Text), f.Err.Error()})
	}
	return rows
}

// runArgs returns the insertRunSQL arguments for run.
func runArgs(run Run) []any {
	stats := core.Summarize(run.Result.People)
	return []any{
		toPgUUID(run.ID),
		toPgText(run.FileName),
		toPgTimestamptz(run.CreatedAt),
		run.Result.Duration.Milliseconds(),
		toPgInt4(run.Result.Lines),
		toPgInt4(stats.Total),
		toPgInt4(stats.Male),
		toPgInt4(stats.Female),
		toPgInt4(stats.UniqueDivisions),
		toPgFloat8(stats.AverageSalary),
		toPgFloat8(stats.MaxSalary),
		toPgFloat8(stats.MinSalary),
		toPgInt4(len(run.Result.Failed)),
	}
}
