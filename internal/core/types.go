package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/roster/internal/person"
)

var (
	// ErrSourceUnavailable is matched when the input cannot be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrEmptyInput is returned by callers that require at least a header line.
	ErrEmptyInput = errors.New("empty file")

	// ErrLineTooLong is matched when a line exceeds Options.MaxLineSize.
	ErrLineTooLong = errors.New("line too long")
)

// Policy decides what happens to a line that fails to build.
type Policy string

const (
	PolicyAbort   Policy = "abort"
	PolicyCollect Policy = "collect"
)

// ParsePolicy converts a config or flag value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyAbort, "":
		return PolicyAbort, nil
	case PolicyCollect:
		return PolicyCollect, nil
	default:
		return "", fmt.Errorf("unknown policy %q (want abort or collect)", s)
	}
}

// Defaults applied by Options.withDefaults.
const (
	DefaultShardSize   = 2048
	DefaultMaxLineSize = 1 << 20
)

// Options controls a parse run. The zero value parses sequentially,
// aborts on the first bad line and splits on ';'.
type Options struct {
	Policy      Policy
	Workers     int  // > 1 enables sharded parsing
	ShardSize   int  // Lines per shard (default DefaultShardSize)
	Delimiter   rune // Field delimiter (default person.Delimiter)
	MaxLineSize int  // Longest accepted line in bytes (default DefaultMaxLineSize)
}

func (o Options) withDefaults() Options {
	if o.Policy == "" {
		o.Policy = PolicyAbort
	}
	if o.ShardSize <= 0 {
		o.ShardSize = DefaultShardSize
	}
	if o.Delimiter == 0 {
		o.Delimiter = person.Delimiter
	}
	if o.MaxLineSize <= 0 {
		o.MaxLineSize = DefaultMaxLineSize
	}
	return o
}

// LineError attaches the 1-based line number (header is line 1) to a
// record failure.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("invalid data at line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a parse run.
type Result struct {
	People    []*person.Person   // File order
	Divisions []*person.Division // Id order
	Failed    []*LineError       // Only populated under PolicyCollect
	Lines     int                // Data lines read, header excluded
	BytesRead int64
	Duration  time.Duration
}
