package store

// schemaStatements create the tables an import run is written to. Every
// statement is idempotent so EnsureSchema can run on each startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS import_runs (
		id               UUID PRIMARY KEY,
		file_name        TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		duration_ms      BIGINT NOT NULL,
		lines            INTEGER NOT NULL,
		total            INTEGER NOT NULL,
		male             INTEGER NOT NULL,
		female           INTEGER NOT NULL,
		unique_divisions INTEGER NOT NULL,
		average_salary   DOUBLE PRECISION NOT NULL,
		max_salary       DOUBLE PRECISION NOT NULL,
		min_salary       DOUBLE PRECISION NOT NULL,
		failed_lines     INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS divisions (
		run_id      UUID NOT NULL REFERENCES import_runs(id) ON DELETE CASCADE,
		division_id INTEGER NOT NULL,
		name        TEXT NOT NULL,
		PRIMARY KEY (run_id, division_id)
	)`,
	`CREATE TABLE IF NOT EXISTS people (
		run_id      UUID NOT NULL REFERENCES import_runs(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		person_id   BIGINT NOT NULL,
		name        TEXT,
		gender      CHAR(1) NOT NULL,
		birth_date  DATE NOT NULL,
		division_id INTEGER NOT NULL,
		salary      DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id, division_id) REFERENCES divisions(run_id, division_id)
	)`,
	`CREATE TABLE IF NOT EXISTS import_failures (
		run_id UUID NOT NULL REFERENCES import_runs(id) ON DELETE CASCADE,
		line   INTEGER NOT NULL,
		text   TEXT,
		reason TEXT NOT NULL,
		PRIMARY KEY (run_id, line)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_people_run_person ON people (run_id, person_id)`,
}

var (
	divisionColumns = []string{"run_id", "division_id", "name"}
	peopleColumns   = []string{"run_id", "position", "person_id", "name", "gender", "birth_date", "division_id", "salary"}
	failureColumns  = []string{"run_id", "line", "text", "reason"}
)

const insertRunSQL = `INSERT INTO import_runs (
	id, file_name, created_at, duration_ms, lines, total, male, female,
	unique_divisions, average_salary, max_salary, min_salary, failed_lines
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const selectRunSQL = `SELECT
	id, file_name, created_at, duration_ms, lines, total, male, female,
	unique_divisions, average_salary, max_salary, min_salary, failed_lines
FROM import_runs WHERE id = $1`
