package person

import "strings"

const (
	// Delimiter separates fields on a line.
	Delimiter = ';'

	// Quote toggles a span in which Delimiter is taken literally.
	Quote = '"'
)

// Tokenize splits line on Delimiter. See TokenizeWith.
func Tokenize(line string) []string {
	return TokenizeWith(line, Delimiter)
}

// TokenizeWith splits line on delim, honouring quoted spans.
//
// Quote characters are dropped from the output and never cause an error,
// even when left unterminated. Every field is trimmed of surrounding
// whitespace. The result always has one more element than there are
// delimiters outside quotes.
func TokenizeWith(line string, delim rune) []string {
	fields := make([]string, 0, strings.Count(line, string(delim))+1)

	var buf strings.Builder
	inQuotes := false

	for _, c := range line {
		switch {
		case c == Quote:
			inQuotes = !inQuotes
		case c == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(buf.String()))
			buf.Reset()
		default:
			buf.WriteRune(c)
		}
	}

	return append(fields, strings.TrimSpace(buf.String()))
}
