// Command roster reads a personnel file, prints the first records and a
// statistics summary.
//
//	roster [--file path] [--top N] [--workers N] [--policy abort|collect]
//	       [--delimiter ;] [--save]
//
// Defaults come from the environment (see internal/config) and an optional
// .env file in the working directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/JonMunkholm/roster/internal/config"
	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/logging"
	"github.com/JonMunkholm/roster/internal/person"
	"github.com/JonMunkholm/roster/internal/store"
)

type options struct {
	File      string
	Top       int
	Workers   int
	Policy    string
	Delimiter string
	Failures  bool
	Save      bool
}

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without process globals. It returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	slog.SetDefault(logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format))

	opt := options{
		File:      cfg.Source.File,
		Top:       cfg.Source.Top,
		Workers:   cfg.Parse.Workers,
		Policy:    cfg.Parse.Policy,
		Delimiter: cfg.Parse.Delimiter,
	}

	flags := pflag.NewFlagSet("roster", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opt.File, "file", "f", opt.File, "Personnel file to read.")
	flags.IntVarP(&opt.Top, "top", "n", opt.Top, "Number of records to print.")
	flags.IntVar(&opt.Workers, "workers", opt.Workers, "Parse with this many workers; values above 1 shard the input.")
	flags.StringVar(&opt.Policy, "policy", opt.Policy, "What to do with a bad line: abort or collect.")
	flags.StringVar(&opt.Delimiter, "delimiter", opt.Delimiter, "Single-character field delimiter.")
	flags.BoolVar(&opt.Failures, "failures", false, "Print every collected bad line (collect policy only).")
	flags.BoolVar(&opt.Save, "save", false, "Persist the run to the database configured by DATABASE_URL.")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Invalid arguments: %v\n", err)
		flags.PrintDefaults()
		return 2
	}

	parseOpts, err := opt.parseOptions(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid arguments: %v\n", err)
		return 2
	}

	slog.Debug("reading people", "file", opt.File, "policy", parseOpts.Policy, "workers", parseOpts.Workers)

	result, err := core.ParseFile(ctx, opt.File, parseOpts)
	if err != nil {
		reportError(stderr, err)
		return 1
	}

	printReport(stdout, result, opt.Top)
	if opt.Failures {
		printFailures(stdout, result.Failed)
	}

	if opt.Save {
		if err := save(ctx, cfg, opt.File, result); err != nil {
			reportError(stderr, err)
			return 1
		}
	}

	return 0
}

func (o options) parseOptions(cfg *config.Config) (core.Options, error) {
	policy, err := core.ParsePolicy(o.Policy)
	if err != nil {
		return core.Options{}, err
	}
	if o.Workers < 1 {
		return core.Options{}, fmt.Errorf("--workers must be at least 1, got %d", o.Workers)
	}
	if o.Top < 0 {
		return core.Options{}, fmt.Errorf("--top must not be negative, got %d", o.Top)
	}
	delim, size := utf8.DecodeRuneInString(o.Delimiter)
	if size == 0 || size != len(o.Delimiter) || delim == person.Quote {
		return core.Options{}, fmt.Errorf("--delimiter must be a single character other than '\"', got %q", o.Delimiter)
	}

	return core.Options{
		Policy:      policy,
		Workers:     o.Workers,
		ShardSize:   cfg.Parse.ShardSize,
		Delimiter:   delim,
		MaxLineSize: cfg.Parse.MaxLineSize,
	}, nil
}

// save writes result as a new import run.
func save(ctx context.Context, cfg *config.Config, file string, result *core.Result) error {
	if !cfg.Database.Enabled() {
		return errors.New("--save requires DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Import.Timeout)
	defer cancel()

	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	run := store.Run{ID: uuid.New(), FileName: file, CreatedAt: time.Now().UTC(), Result: result}
	if err := db.SaveRun(ctx, run); err != nil {
		return err
	}

	slog.Info("import run saved", "run_id", run.ID, "people", len(result.People))
	return nil
}

// reportError prints the technical error followed by the user-facing hint.
func reportError(w io.Writer, err error) {
	switch {
	case errors.Is(err, core.ErrSourceUnavailable):
		fmt.Fprintf(w, "Error reading file: %v\n", err)
	case errors.Is(err, person.ErrMalformedRecord), errors.Is(err, core.ErrLineTooLong):
		fmt.Fprintf(w, "Data parsing error: %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
}
