package printers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/kashev/singularity-pipeline/internal/sanitize"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// Inspired by Kubernetes
// TablePrinter prints the table form of a resource, one row per item.
type TablePrinter struct {
	Sanitizer *sanitize.Sanitizer
	// Bold prints the header line in bold.
	Bold bool
}

func NewTablePrinter() *TablePrinter {
	return &TablePrinter{
		Sanitizer: sanitize.NullSanitizer,
	}
}

func (p TablePrinter) PrintResource(_ context.Context, items types.PrintableResource, writer io.Writer) error {
	table, err := items.GetTable()
	if err != nil {
		return err
	}
	return p.PrintTable(table, writer)
}

func (p TablePrinter) PrintTable(table types.Table, writer io.Writer) error {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 1, 1, 4, ' ', tabwriter.TabIndent)

	var tableHeaders string
	var tableFormatter string
	for i, c := range table.Columns {
		if i > 0 {
			tableHeaders += "\t"
			tableFormatter += "\t"
		}
		tableHeaders += c.Name
		tableFormatter += c.Formatter()
	}
	tableFormatter += "\n"

	//nolint:forbidigo // this is how the tabwriter works
	if _, err := fmt.Fprintln(w, tableHeaders); err != nil {
		return err
	}

	for _, r := range table.Rows {
		str := fmt.Sprintf(tableFormatter, r.Cells...)
		if p.Sanitizer != nil {
			str = p.Sanitizer.SanitizeString(str)
		}

		//nolint:forbidigo // this is how the tabwriter works
		if _, err := fmt.Fprint(w, str); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}

	// the header is styled after alignment, escape sequences have no width
	out := buf.String()
	if p.Bold {
		if i := strings.IndexByte(out, '\n'); i >= 0 {
			out = color.New(color.Bold).Sprint(out[:i]) + out[i:]
		}
	}
	_, err := io.WriteString(writer, out)
	return err
}
