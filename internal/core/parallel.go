package core

import (
	"context"
	"io"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/roster/internal/person"
)

type numberedLine struct {
	num  int
	text string
}

// shardOutcome is what one shard produced against its private registry.
type shardOutcome struct {
	people []*person.Person
	failed []*LineError
}

// parseSharded reads every line, builds contiguous shards concurrently and
// merges them in file order.
//
// Each shard has its own MapRegistry, so no locking happens while
// building. The merge re-resolves every division name through one final
// registry, which leaves exactly one instance per name with ids assigned
// in order of first appearance.
func parseSharded(ctx context.Context, src io.Reader, opts Options) (*Result, error) {
	var lines []numberedLine
	err := scanLines(ctx, src, opts, func(num int, text string) error {
		lines = append(lines, numberedLine{num: num, text: text})
		return nil
	})
	if err != nil {
		return nil, err
	}

	shards := splitShards(lines, opts.ShardSize)
	outcomes := make([]shardOutcome, len(shards))

	// Under PolicyAbort, shards after the earliest failing one are skipped.
	var firstFailed atomic.Int64
	firstFailed.Store(math.MaxInt64)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, shard := range shards {
		g.Go(func() error {
			if int64(i) > firstFailed.Load() {
				return nil
			}
			out, err := buildShard(gctx, shard, opts)
			if err != nil {
				return err
			}
			outcomes[i] = out
			if opts.Policy == PolicyAbort && len(out.failed) > 0 {
				lowerFirstFailed(&firstFailed, int64(i))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Policy == PolicyAbort {
		for _, out := range outcomes {
			if len(out.failed) > 0 {
				return nil, out.failed[0]
			}
		}
	}

	return mergeShards(outcomes, len(lines)), nil
}

// buildShard runs the line pipeline over one shard. Under PolicyAbort it
// stops at the shard's first failure.
func buildShard(ctx context.Context, shard []numberedLine, opts Options) (shardOutcome, error) {
	reg := person.NewMapRegistry()
	out := shardOutcome{people: make([]*person.Person, 0, len(shard))}

	for i, ln := range shard {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return shardOutcome{}, err
			}
		}

		p, err := buildLine(ln.text, opts.Delimiter, reg)
		if err != nil {
			out.failed = append(out.failed, &LineError{Line: ln.num, Text: ln.text, Err: err})
			if opts.Policy == PolicyAbort {
				break
			}
			continue
		}
		out.people = append(out.people, p)
	}

	return out, nil
}

// mergeShards concatenates shard outcomes and rebinds every person to the
// division instance held by a single run-wide registry.
func mergeShards(outcomes []shardOutcome, lines int) *Result {
	reg := person.NewMapRegistry()
	res := &Result{Lines: lines}

	for _, out := range outcomes {
		for _, p := range out.people {
			res.People = append(res.People, p.WithDivision(reg.LookupOrCreate(p.Division().Name())))
		}
		res.Failed = append(res.Failed, out.failed...)
	}

	res.Divisions = reg.Divisions()
	return res
}

func splitShards(lines []numberedLine, size int) [][]numberedLine {
	shards := make([][]numberedLine, 0, (len(lines)+size-1)/size)
	for start := 0; start < len(lines); start += size {
		end := min(start+size, len(lines))
		shards = append(shards, lines[start:end])
	}
	return shards
}

func lowerFirstFailed(v *atomic.Int64, idx int64) {
	for {
		cur := v.Load()
		if idx >= cur || v.CompareAndSwap(cur, idx) {
			return
		}
	}
}
