// Package output renders operator-facing botctl output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	// Swappable in tests.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

func Success(format string, a ...interface{}) {
	successColor.Fprintf(stdout, "✓ "+format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	errorColor.Fprintf(stderr, "✗ "+format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	infoColor.Fprintf(stdout, format+"\n", a...)
}

func Warn(format string, a ...interface{}) {
	warnColor.Fprintf(stdout, "⚠ "+format+"\n", a...)
}

// Table renders rows under a bold header with columns padded to the
// widest cell.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) Render() {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, header := range t.headers {
		headerColor.Fprintf(stdout, "%-*s  ", widths[i], header)
	}
	fmt.Fprintln(stdout)

	for _, width := range widths {
		fmt.Fprint(stdout, strings.Repeat("-", width), "  ")
	}
	fmt.Fprintln(stdout)

	for _, row := range t.rows {
		for i, cell := range row {
			fmt.Fprintf(stdout, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(stdout)
	}
}
