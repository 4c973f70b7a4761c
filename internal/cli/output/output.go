// Package output renders command results as tables, JSON, YAML or markdown.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

// Output formats.
const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Tabular is a result that can be shown as rows and columns.
// JSON and YAML encode the value itself.
type Tabular interface {
	Columns() []string
	Rows() [][]any
}

// Renderer writes results to an output stream in one format.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	format Format
}

// NewRenderer creates a renderer. An unknown format renders as a table.
func NewRenderer(out, errOut io.Writer, format Format) *Renderer {
	return &Renderer{out: out, errOut: errOut, format: format}
}

// Format returns the renderer's output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render writes v in the renderer's format.
func (r *Renderer) Render(v Tabular) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		return r.renderMarkdown(v.Columns(), v.Rows())
	default:
		return r.renderTable(v.Columns(), v.Rows())
	}
}

// Notice writes an informational line to the error stream.
// Structured formats stay machine-readable on the output stream.
func (r *Renderer) Notice(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errOut, format+"\n", args...)
}

func (r *Renderer) renderTable(cols []string, rows [][]any) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(r.out, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = FormatValue(v)
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintf(r.out, "(%d rows)\n", len(rows))
	return nil
}

func (r *Renderer) renderMarkdown(cols []string, rows [][]any) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(r.out, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = strings.ReplaceAll(FormatValue(v), "|", `\|`)
		}
		_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// FormatValue renders a single cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
