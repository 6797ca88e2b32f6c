package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/JonMunkholm/roster/internal/person"
)

// ContextCheckInterval is how often (in lines) a run checks for cancellation.
var ContextCheckInterval = 100

// ParseFile opens path and parses it with Parse.
// Errors opening or reading the file match ErrSourceUnavailable.
func ParseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()

	return Parse(ctx, f, opts)
}

// Parse reads a header line followed by one record per line from r.
//
// Under PolicyAbort the first bad line is returned as a *LineError and no
// Result is produced. Under PolicyCollect bad lines are listed in
// Result.Failed and the error is nil unless reading itself fails.
func Parse(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	src, counter := newSourceReader(r)

	var (
		res *Result
		err error
	)
	if opts.Workers > 1 {
		res, err = parseSharded(ctx, src, opts)
	} else {
		res, err = parseSequential(ctx, src, opts)
	}
	if err != nil {
		return nil, err
	}

	res.BytesRead = counter.BytesRead()
	res.Duration = time.Since(start)
	return res, nil
}

// parseSequential builds every record against one registry as lines arrive.
func parseSequential(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	reg := person.NewMapRegistry()
	res := &Result{}

	err := scanLines(ctx, src, opts, func(num int, text string) error {
		res.Lines++
		p, err := buildLine(text, opts.Delimiter, reg)
		if err != nil {
			le := &LineError{Line: num, Text: text, Err: err}
			if opts.Policy == PolicyAbort {
				return le
			}
			res.Failed = append(res.Failed, le)
			return nil
		}
		res.People = append(res.People, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Divisions = reg.Divisions()
	return res, nil
}

// buildLine is the per-line pipeline shared by all parse strategies.
func buildLine(text string, delim rune, reg person.Registry) (*person.Person, error) {
	return person.Build(person.TokenizeWith(text, delim), reg)
}

// scanLines discards the header and calls fn with each following line and
// its 1-based number. An error from fn stops the scan and is returned as is.
func scanLines(ctx context.Context, src io.Reader, opts Options, fn func(num int, text string) error) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, min(64*1024, opts.MaxLineSize)), opts.MaxLineSize)

	num := 0
	for sc.Scan() {
		num++
		if num == 1 {
			continue
		}

		if num%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("parse cancelled at line %d: %w", num, err)
			}
		}

		if err := fn(num, sc.Text()); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("%w: line %d exceeds %d bytes", ErrLineTooLong, num+1, opts.MaxLineSize)
		}
		return fmt.Errorf("%w: read line %d: %w", ErrSourceUnavailable, num+1, err)
	}

	return ctx.Err()
}
