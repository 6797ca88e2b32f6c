package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/person"
)

// fakeDB records what writeRun sends instead of talking to Postgres.
type fakeDB struct {
	execSQL  []string
	execArgs [][]any
	execErr  error
	copied   map[string][][]any
	copyErr  error
	row      pgx.Row
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.row
}

func (f *fakeDB) CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	if f.copied == nil {
		f.copied = make(map[string][][]any)
	}
	var n int64
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return n, err
		}
		if len(vals) != len(columns) {
			return n, fmt.Errorf("%s: got %d values for %d columns", table.Sanitize(), len(vals), len(columns))
		}
		f.copied[table[0]] = append(f.copied[table[0]], vals)
		n++
	}
	return n, src.Err()
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

func sampleRun(t *testing.T) Run {
	t.Helper()

	reg := person.NewMapRegistry()
	eng := reg.LookupOrCreate("Engineering")
	sales := reg.LookupOrCreate("Sales")
	born := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)

	return Run{
		ID:        uuid.New(),
		FileName:  "people.csv",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Result: &core.Result{
			People: []*person.Person{
				person.New(1, "Aaron", person.Male, born, eng, 1000),
				person.New(2, "Beth", person.Female, born, sales, 2500.5),
				person.New(1, "", person.Female, born, eng, 300),
			},
			Divisions: reg.Divisions(),
			Failed: []*core.LineError{
				{Line: 5, Text: "x;y", Err: errors.New("wrong field count")},
			},
			Lines:    4,
			Duration: 1500 * time.Millisecond,
		},
	}
}

func TestWriteRun(t *testing.T) {
	run := sampleRun(t)
	db := &fakeDB{}

	if err := writeRun(context.Background(), db, run); err != nil {
		t.Fatalf("writeRun() error = %v", err)
	}

	if len(db.execSQL) != 1 || db.execSQL[0] != insertRunSQL {
		t.Fatalf("exec calls = %v, want one run insert", db.execSQL)
	}
	if got := len(db.execArgs[0]); got != 13 {
		t.Errorf("run insert has %d args, want 13", got)
	}

	wantCounts := map[string]int{"divisions": 2, "people": 3, "import_failures": 1}
	for table, want := range wantCounts {
		if got := len(db.copied[table]); got != want {
			t.Errorf("%s rows = %d, want %d", table, got, want)
		}
	}
}

func TestWriteRun_SkipsEmptyCopies(t *testing.T) {
	run := sampleRun(t)
	run.Result.Failed = nil
	db := &fakeDB{}

	if err := writeRun(context.Background(), db, run); err != nil {
		t.Fatalf("writeRun() error = %v", err)
	}
	if _, ok := db.copied["import_failures"]; ok {
		t.Error("import_failures should not be copied when empty")
	}
}

func TestWriteRun_Errors(t *testing.T) {
	t.Run("duplicate run", func(t *testing.T) {
		db := &fakeDB{execErr: &pgconn.PgError{Code: "23505", Message: "duplicate key value"}}
		err := writeRun(context.Background(), db, sampleRun(t))
		if !errors.Is(err, ErrDuplicateRun) {
			t.Fatalf("error = %v, want ErrDuplicateRun", err)
		}
		if got := core.MapError(err).Code; got != "DB001" {
			t.Errorf("MapError code = %s, want DB001", got)
		}
	})

	t.Run("copy failure", func(t *testing.T) {
		copyErr := errors.New("connection reset")
		db := &fakeDB{copyErr: copyErr}
		err := writeRun(context.Background(), db, sampleRun(t))
		if !errors.Is(err, copyErr) {
			t.Fatalf("error = %v, want wrapped copy error", err)
		}
	})

	t.Run("nil result", func(t *testing.T) {
		err := writeRun(context.Background(), &fakeDB{}, Run{ID: uuid.New()})
		if err == nil {
			t.Fatal("expected error for nil result")
		}
	})
}

func TestPeopleRows(t *testing.T) {
	run := sampleRun(t)
	rows := peopleRows(run.ID, run.Result.People)

	second := rows[1]
	if got := second[1].(pgtype.Int4).Int32; got != 1 {
		t.Errorf("position = %d, want 1", got)
	}
	if got := second[2].(pgtype.Int8).Int64; got != 2 {
		t.Errorf("person_id = %d, want 2", got)
	}
	if got := second[4].(string); got != "F" {
		t.Errorf("gender = %q, want F", got)
	}
	if got := second[6].(pgtype.Int4).Int32; got != 2 {
		t.Errorf("division_id = %d, want 2", got)
	}
	if got := second[7].(pgtype.Float8).Float64; got != 2500.5 {
		t.Errorf("salary = %v, want 2500.5", got)
	}

	if name := rows[2][3].(pgtype.Text); name.Valid {
		t.Errorf("empty name should be NULL, got %+v", name)
	}
}

func TestDivisionRows(t *testing.T) {
	run := sampleRun(t)
	rows := divisionRows(run.ID, run.Result.Divisions)

	want := []struct {
		id   int32
		name string
	}{{1, "Engineering"}, {2, "Sales"}}

	for i, w := range want {
		if got := rows[i][1].(pgtype.Int4).Int32; got != w.id {
			t.Errorf("rows[%d] id = %d, want %d", i, got, w.id)
		}
		if got := rows[i][2].(string); got != w.name {
			t.Errorf("rows[%d] name = %q, want %q", i, got, w.name)
		}
	}
}

func TestRunArgs_Statistics(t *testing.T) {
	args := runArgs(sampleRun(t))

	checks := []struct {
		idx  int
		want int32
	}{
		{4, 4},  // lines
		{5, 3},  // total
		{6, 1},  // male
		{7, 2},  // female
		{8, 2},  // unique divisions
		{12, 1}, // failed lines
	}
	for _, c := range checks {
		if got := args[c.idx].(pgtype.Int4).Int32; got != c.want {
			t.Errorf("args[%d] = %d, want %d", c.idx, got, c.want)
		}
	}
	if got := args[3].(int64); got != 1500 {
		t.Errorf("duration_ms = %d, want 1500", got)
	}
	if got := args[11].(pgtype.Float8).Float64; got != 300 {
		t.Errorf("min salary = %v, want 300", got)
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	db := &fakeDB{row: errRow{err: pgx.ErrNoRows}}

	_, err := loadRun(context.Background(), db, uuid.New())
	if !errors.Is(err, core.ErrRunNotFound) {
		t.Fatalf("error = %v, want ErrRunNotFound", err)
	}
}

func TestConvert(t *testing.T) {
	if toPgText("  ").Valid {
		t.Error("blank text should be NULL")
	}
	if got := toPgText(" Sales ").String; got != "Sales" {
		t.Errorf("toPgText = %q, want Sales", got)
	}
	if toPgUUID(uuid.Nil).Valid {
		t.Error("nil uuid should be NULL")
	}
	if toPgDate(time.Time{}).Valid {
		t.Error("zero date should be NULL")
	}

	d := toPgDate(time.Date(2000, 2, 29, 13, 45, 0, 0, time.FixedZone("X", 3600)))
	if !d.Valid || d.Time.Hour() != 0 || d.Time.Day() != 29 {
		t.Errorf("toPgDate = %+v, want 2000-02-29 midnight", d)
	}
	if fromPgText(pgtype.Text{}) != "" {
		t.Error("NULL text should read as empty")
	}
}
