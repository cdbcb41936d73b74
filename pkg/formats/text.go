package formats

import (
	"strconv"
	"strings"
)

// lineReader walks the lines of a text asset file, stripping inline
// comments and surrounding whitespace. Line numbers are 1-based and refer
// to the original file, for diagnostics.
type lineReader struct {
	lines    []string
	idx      int
	comments string // comment leader characters, cut with the rest of the line
}

func newLineReader(data []byte, comments string) *lineReader {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return &lineReader{
		lines:    strings.Split(text, "\n"),
		comments: comments,
	}
}

// next returns the next cleaned line and its line number. ok is false at
// end of input. Empty and comment-only lines come back as "".
func (r *lineReader) next() (line string, num int, ok bool) {
	if r.idx >= len(r.lines) {
		return "", 0, false
	}
	line = r.lines[r.idx]
	r.idx++
	if cut := strings.IndexAny(line, r.comments); cut >= 0 {
		line = line[:cut]
	}
	return strings.TrimSpace(line), r.idx, true
}

// tokenize splits a record line into fields. Fields are separated by
// whitespace (and commas when commaSep is set); double-quoted substrings
// form a single field with the quotes removed.
func tokenize(line string, commaSep bool) []string {
	isSep := func(c byte) bool {
		return c == ' ' || c == '\t' || (commaSep && c == ',')
	}

	var tokens []string
	i := 0
	for i < len(line) {
		if isSep(line[i]) {
			i++
			continue
		}
		if line[i] == '"' {
			j := i + 1
			for j < len(line) && line[j] != '"' {
				j++
			}
			tokens = append(tokens, line[i+1:j])
			if j < len(line) {
				j++
			}
			i = j
			continue
		}
		j := i
		for j < len(line) && !isSep(line[j]) && line[j] != '"' {
			j++
		}
		tokens = append(tokens, line[i:j])
		i = j
	}
	return tokens
}

// splitRecord tokenizes comma-or-whitespace separated lines (IPL, IDE).
func splitRecord(line string) []string { return tokenize(line, true) }

// splitFields tokenizes whitespace separated lines (DAT family).
func splitFields(line string) []string { return tokenize(line, false) }

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

// isBinaryData samples up to n leading bytes for anything outside 7-bit
// ASCII. A fragile heuristic, but it matches how the legacy files are
// told apart in practice.
func isBinaryData(data []byte, n int) bool {
	if len(data) < n {
		return false
	}
	for _, b := range data[:n] {
		if b > 0x7F {
			return true
		}
	}
	return false
}
