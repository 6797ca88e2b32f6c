package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/logging"
	"github.com/JonMunkholm/roster/internal/metrics"
	"github.com/JonMunkholm/roster/internal/person"
	"github.com/JonMunkholm/roster/internal/store"
)

const (
	defaultFileName = "upload.csv"
	maxPageSize     = 1000
)

type divisionJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type personJSON struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Gender    string       `json:"gender"`
	BirthDate string       `json:"birthDate"`
	Division  divisionJSON `json:"division"`
	Salary    float64      `json:"salary"`
}

type failureJSON struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
	Code   string `json:"code"`
}

type runJSON struct {
	ID          uuid.UUID       `json:"id"`
	FileName    string          `json:"fileName"`
	CreatedAt   time.Time       `json:"createdAt"`
	DurationMS  int64           `json:"durationMs"`
	Lines       int             `json:"lines"`
	People      int             `json:"people"`
	FailedLines int             `json:"failedLines"`
	Persisted   bool            `json:"persisted"`
	Statistics  core.Statistics `json:"statistics"`
	Divisions   []divisionJSON  `json:"divisions,omitempty"`
	Failed      []failureJSON   `json:"failed,omitempty"`
}

type pageJSON[T any] struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Items  []T `json:"items"`
}

// handleCreateImport parses the request body as a personnel file.
//
// Query parameters:
//   - name: file name recorded with the run (default upload.csv)
//   - policy: abort or collect, overriding PARSE_POLICY
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	fileName := path.Base(strings.TrimSpace(r.URL.Query().Get("name")))
	if fileName == "." || fileName == "/" {
		fileName = defaultFileName
	}

	opts, err := s.parseOptions(r)
	if err != nil {
		s.importError(w, r, err)
		return
	}

	limit := s.cfg.Import.MaxFileSize
	if r.ContentLength > limit {
		s.importError(w, r, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, limit))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	if err := s.limiter.Acquire(ctx); err != nil {
		s.importError(w, r, err)
		return
	}
	defer s.limiter.Release()

	runID := uuid.New()
	logger := logging.WithFields(ctx, "run_id", runID, "file", fileName)
	logger.Info("import started", "policy", opts.Policy, "workers", opts.Workers)

	body := &limitedBody{r: http.MaxBytesReader(w, r.Body, limit)}
	result, err := core.Parse(ctx, body, opts)
	if body.exceeded() {
		err = fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, limit)
	}
	if err != nil {
		s.importError(w, r, err)
		return
	}
	if result.BytesRead == 0 {
		s.importError(w, r, core.ErrEmptyInput)
		return
	}

	run := &importRun{
		ID:        runID,
		FileName:  fileName,
		CreatedAt: time.Now().UTC(),
		Result:    result,
		Stats:     core.Summarize(result.People),
	}

	if s.db != nil {
		err := s.db.SaveRun(ctx, store.Run{
			ID:        run.ID,
			FileName:  run.FileName,
			CreatedAt: run.CreatedAt,
			Result:    run.Result,
		})
		if err != nil {
			s.importError(w, r, fmt.Errorf("save run: %w", err))
			return
		}
		run.Persisted = true
	}

	s.runs.add(run)
	s.metrics.ObserveImport(result.Duration, len(result.People), len(result.Failed))

	logger.Info("import completed",
		"people", len(result.People),
		"divisions", len(result.Divisions),
		"failed", len(result.Failed),
		"duration_ms", result.Duration.Milliseconds(),
	)

	w.Header().Set("Location", "/api/imports/"+run.ID.String())
	writeJSON(w, http.StatusCreated, toRunJSON(run, true))
}

// importError counts a failed import by outcome, then responds.
func (s *Server) importError(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		s.metrics.IncrementOutcome(metrics.OutcomeFailed)
	} else {
		s.metrics.IncrementOutcome(metrics.OutcomeRejected)
	}
	s.respondError(w, r, err)
}

// limitedBody records whether the size limit was hit. The scanner hands
// a truncated final line to the parser before the read error surfaces, so
// the limit must be checked independently of the parse outcome.
type limitedBody struct {
	r   io.Reader
	err error
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		b.err = err
	}
	return n, err
}

func (b *limitedBody) exceeded() bool {
	var maxErr *http.MaxBytesError
	return errors.As(b.err, &maxErr)
}

// parseOptions builds parse options from config plus request overrides.
func (s *Server) parseOptions(r *http.Request) (core.Options, error) {
	policy := s.cfg.Parse.Policy
	if p := r.URL.Query().Get("policy"); p != "" {
		policy = p
	}
	pol, err := core.ParsePolicy(policy)
	if err != nil {
		return core.Options{}, fmt.Errorf("%w: %w", core.ErrInvalidParameter, err)
	}

	return core.Options{
		Policy:      pol,
		Workers:     s.cfg.Parse.Workers,
		ShardSize:   s.cfg.Parse.ShardSize,
		Delimiter:   s.cfg.Parse.DelimiterRune(),
		MaxLineSize: s.cfg.Parse.MaxLineSize,
	}, nil
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	runs := s.runs.list()
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunJSON(run, false))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetImport returns a run from memory, falling back to the database
// for runs that have been evicted.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	id, err := runIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if run, ok := s.runs.get(id); ok {
		writeJSON(w, http.StatusOK, toRunJSON(run, true))
		return
	}

	if s.db == nil {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrRunNotFound, id))
		return
	}

	sum, err := s.db.LoadRun(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runJSON{
		ID:          sum.ID,
		FileName:    sum.FileName,
		CreatedAt:   sum.CreatedAt,
		DurationMS:  sum.Duration.Milliseconds(),
		Lines:       sum.Lines,
		People:      sum.Statistics.Total,
		FailedLines: sum.FailedLines,
		Persisted:   true,
		Statistics:  sum.Statistics,
	})
}

// handleListPeople pages through a retained run's people in file order.
//
// Query parameters:
//   - limit: page size (default PEOPLE_TOP, max 1000)
//   - offset: records to skip (default 0)
func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	offset, limit, err := pageParams(r, s.cfg.Source.Top)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	people := run.Result.People
	page := people[min(offset, len(people)):]
	page = core.Top(page, limit)

	items := make([]personJSON, 0, len(page))
	for _, p := range page {
		items = append(items, toPersonJSON(p))
	}

	writeJSON(w, http.StatusOK, pageJSON[personJSON]{
		Total:  len(people),
		Offset: offset,
		Limit:  limit,
		Items:  items,
	})
}

func (s *Server) handleListFailures(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toFailuresJSON(run.Result.Failed))
}

// lookupRun resolves {runID} against retained runs, writing the error
// response itself when the run is unknown.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*importRun, bool) {
	id, err := runIDParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	run, ok := s.runs.get(id)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrRunNotFound, id))
		return nil, false
	}
	return run, true
}

// runIDParam parses {runID}. A malformed id cannot name a run, so it is
// reported as not found.
func runIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "runID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", core.ErrRunNotFound, raw)
	}
	return id, nil
}

func pageParams(r *http.Request, defaultLimit int) (offset, limit int, err error) {
	q := r.URL.Query()

	limit = defaultLimit
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return 0, 0, fmt.Errorf("%w: limit %q", core.ErrInvalidParameter, v)
		}
	}
	limit = min(limit, maxPageSize)

	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("%w: offset %q", core.ErrInvalidParameter, v)
		}
	}
	return offset, limit, nil
}

func toRunJSON(run *importRun, detail bool) runJSON {
	out := runJSON{
		ID:          run.ID,
		FileName:    run.FileName,
		CreatedAt:   run.CreatedAt,
		DurationMS:  run.Result.Duration.Milliseconds(),
		Lines:       run.Result.Lines,
		People:      len(run.Result.People),
		FailedLines: len(run.Result.Failed),
		Persisted:   run.Persisted,
		Statistics:  run.Stats,
	}
	if !detail {
		return out
	}

	out.Divisions = make([]divisionJSON, 0, len(run.Result.Divisions))
	for _, d := range run.Result.Divisions {
		out.Divisions = append(out.Divisions, divisionJSON{ID: d.ID(), Name: d.Name()})
	}
	out.Failed = toFailuresJSON(run.Result.Failed)
	return out
}

func toFailuresJSON(failed []*core.LineError) []failureJSON {
	out := make([]failureJSON, 0, len(failed))
	for _, f := range failed {
		out = append(out, failureJSON{
			Line:   f.Line,
			Text:   f.Text,
			Reason: f.Err.Error(),
			Code:   core.MapError(f).Code,
		})
	}
	return out
}

func toPersonJSON(p *person.Person) personJSON {
	return personJSON{
		ID:        p.ID(),
		Name:      p.Name(),
		Gender:    p.Gender().FullName(),
		BirthDate: p.BirthDate().Format(person.DateLayout),
		Division:  divisionJSON{ID: p.Division().ID(), Name: p.Division().Name()},
		Salary:    p.Salary(),
	}
}
