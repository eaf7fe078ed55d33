package outline

import (
	"fmt"
	"io"
	"strings"
)

// ErrorMarker is the token inserted in front of every offending line so the
// user can find them with a plain text search.
const ErrorMarker = "ERROR:"

// Annotate rewrites the menu file content with the parse errors woven in:
// annotation lines from a previous run are stripped, a header comment
// states the error count, and a marker comment is inserted immediately
// before each offending line. All other lines keep their relative order.
// Errors must be sorted by line number.
func Annotate(original []byte, errs []ParseError) []byte {
	lines := strings.Split(string(original), "\n")
	var b strings.Builder

	if len(errs) == 1 {
		fmt.Fprintf(&b, "# There is one error in this file. Search for %s to find it.\n\n", ErrorMarker)
	} else {
		fmt.Fprintf(&b, "# There are %d errors in this file. Search for %s to find them.\n\n", len(errs), ErrorMarker)
	}

	next := 0
	for i, line := range lines {
		if isAnnotation(line) {
			continue
		}
		for next < len(errs) && errs[next].Line == i+1 {
			fmt.Fprintf(&b, "# %s %s\n", ErrorMarker, errs[next].Message)
			next++
		}
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	// Errors addressed past the last line, e.g. unclosed groups at EOF.
	for next < len(errs) {
		fmt.Fprintf(&b, "# %s %s\n", ErrorMarker, errs[next].Message)
		next++
	}
	return []byte(b.String())
}

// isAnnotation recognizes lines Annotate itself produced on an earlier run.
func isAnnotation(line string) bool {
	t := strings.TrimSpace(line)
	if strings.HasPrefix(t, "# "+ErrorMarker) {
		return true
	}
	return strings.HasPrefix(t, "# There ") && strings.Contains(t, ErrorMarker)
}

// Report writes each error to the diagnostic stream in the conventional
// "file:line: message" form.
func Report(w io.Writer, path string, errs []ParseError) {
	for _, e := range errs {
		fmt.Fprintf(w, "%s:%d: %s\n", path, e.Line, e.Message)
	}
}
