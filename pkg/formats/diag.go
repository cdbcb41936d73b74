package formats

import "fmt"

// Diagnostic describes a recoverable problem found while parsing: a record
// line that could not be decoded, or a texture that had to be skipped.
// The offending unit is dropped and parsing continues, so diagnostics are
// reported on the result instead of failing the whole file.
type Diagnostic struct {
	Line    int    // 1-based line number for text formats, 0 if not applicable
	Offset  int64  // byte offset for binary formats, -1 if not applicable
	Message string
}

// String returns the diagnostic with its location prefix.
func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	if d.Offset >= 0 {
		return fmt.Sprintf("offset 0x%x: %s", d.Offset, d.Message)
	}
	return d.Message
}

func lineDiag(line int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Line: line, Offset: -1, Message: fmt.Sprintf(format, args...)}
}

func offsetDiag(offset int64, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
