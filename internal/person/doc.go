// Package person turns delimited text lines into typed personnel records.
//
// The package has two parts:
//
//   - Tokenizer: [Tokenize] splits one raw line into trimmed fields. A
//     double quote toggles a quoted span in which the delimiter is literal.
//     It never fails; unterminated quotes are tolerated.
//   - Record builder: [Build] validates and coerces a field slice into a
//     [Person], resolving the division through a [Registry] so that equal
//     division names share one [Division] instance per run.
//
// Nothing here performs I/O or logs. Failures are returned as
// [*RecordError] (matching [ErrMalformedRecord]) or [*ValueError]
// (matching [ErrInvalidValue]) and callers attach line numbers.
package person
