package core

// input.go prepares raw input for line scanning.
//
// Files exported from spreadsheet tools often start with a UTF-8 byte order
// mark and occasionally contain bytes that are not valid UTF-8. The
// decoder chain strips the BOM and replaces invalid sequences with U+FFFD
// so the header skip and the tokenizer always see clean text.

import (
	"io"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// countingReader tracks bytes pulled from the underlying source.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// BytesRead returns the number of raw bytes consumed so far.
func (c *countingReader) BytesRead() int64 {
	return c.n.Load()
}

// newSourceReader wraps r so that reads yield BOM-free, valid UTF-8.
// The returned counter reports raw bytes consumed from r.
func newSourceReader(r io.Reader) (io.Reader, *countingReader) {
	counter := &countingReader{r: r}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(counter, decoder), counter
}
