package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders Errors against the original source text as Rust-style
// caret diagnostics, the same layout kanso/internal/errors.ErrorReporter
// uses: a bold header, a "--> file:line:col" location, a source gutter with
// the offending line, and an underline marker.
type Reporter struct {
	source string
	lines  []string
}

// NewReporter builds a Reporter over the given source text.
func NewReporter(source string) *Reporter {
	return &Reporter{source: source, lines: strings.Split(source, "\n")}
}

// Format renders err as a multi-line colored diagnostic.
func (r *Reporter) Format(err *Error) string {
	var b strings.Builder

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	if err.Code != "" {
		b.WriteString(fmt.Sprintf("%s[%s]: %s\n", red("error"), err.Code, err.Message))
	} else {
		b.WriteString(fmt.Sprintf("%s: %s\n", red("error"), err.Message))
	}

	width := lineNumberWidth(err.Pos.Line)
	indent := strings.Repeat(" ", width)

	b.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), err.Pos.File, err.Pos.Line, err.Pos.Column))
	b.WriteString(fmt.Sprintf("%s %s\n", indent, dim("|")))

	if err.Pos.Line >= 1 && err.Pos.Line <= len(r.lines) {
		line := r.lines[err.Pos.Line-1]
		b.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", width, err.Pos.Line)), dim("|"), line))

		length := len(err.Lexeme)
		if length == 0 {
			length = 1
		}
		marker := strings.Repeat(" ", max0(err.Pos.Column-1)) + red(strings.Repeat("^", length))
		b.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("|"), marker))
	}

	b.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("="), dim(string(err.Stage))))
	return b.String()
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		w = 3
	}
	return w
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
