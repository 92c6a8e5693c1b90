// Package diag defines the diagnostics produced by lexing and parsing
// and renders them against a source buffer.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/source"
)

type Severity int

const (
	// Error marks a grammar or lexical violation.  It never stops the
	// parse but makes the result unsuccessful.
	Error Severity = iota
	// Warning marks a valid but discouraged construct.
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Loc      ast.Loc  `json:"loc"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Render formats a diagnostic with the offending line and a span of
// tildes (or a caret for a zero-length span) beneath it.
func Render(b *strings.Builder, buf *source.Buffer, d Diagnostic, colorize bool) {
	start := buf.Position(d.Loc.Pos())
	label := d.Severity.String()
	if colorize {
		c := color.New(color.FgRed, color.Bold)
		if d.Severity == Warning {
			c = color.New(color.FgYellow, color.Bold)
		}
		label = c.Sprint(label)
	}
	if buf.Name != "" {
		fmt.Fprintf(b, "%s:%s: ", buf.Name, start)
	} else {
		fmt.Fprintf(b, "%s: ", start)
	}
	fmt.Fprintf(b, "%s: %s\n", label, d.Message)
	line := buf.LineText(start.Line)
	fmt.Fprintf(b, "%s\n", line)
	b.WriteString(strings.Repeat(" ", start.Column))
	n := d.Loc.Length
	if end := buf.Position(d.Loc.End()); end.Line != start.Line {
		n = len(line) - start.Column
	}
	if n < 1 {
		b.WriteString("^")
	} else {
		b.WriteString(strings.Repeat("~", n))
	}
	b.WriteByte('\n')
}

// RenderAll renders a batch of diagnostics into one string.
func RenderAll(buf *source.Buffer, ds []Diagnostic, colorize bool) string {
	var b strings.Builder
	for _, d := range ds {
		Render(&b, buf, d, colorize)
	}
	return b.String()
}
