// Package core reads personnel CSV files into person records.
//
// This package sits between raw input and the [person] package. It owns
// everything the record builder deliberately leaves out: opening the
// source, skipping the header, numbering lines, choosing what to do with
// a bad line, and running the work sequentially or in shards.
//
// # Parsing
//
// [Parse] consumes an io.Reader; [ParseFile] opens a path first. The first
// line is always discarded. Each following line goes through
// [person.Tokenize] and [person.Build]:
//
//	res, err := core.Parse(ctx, r, core.Options{Policy: core.PolicyCollect})
//	for _, le := range res.Failed {
//	    fmt.Println(le.Line, le.Err)
//	}
//
// # Policies
//
//   - [PolicyAbort] stops at the first bad line and returns a [*LineError].
//   - [PolicyCollect] records every bad line in [Result.Failed] and keeps going.
//
// # Parallelism
//
// With Options.Workers greater than one, lines are split into contiguous
// shards, each built against its own registry, and merged in file order.
// Division ids after the merge are the same as a sequential run would
// assign: 1..n in order of first appearance.
//
// # Error Handling
//
// [MapError] turns any error from this package (or from the web and
// store layers) into a [UserMessage] with a support code.
package core
