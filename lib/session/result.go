package session

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Result is one statement result: column names, stringified rows, and the
// command tag.
type Result struct {
	Columns []string
	Rows    [][]string
	Tag     string
}

func printResults(out io.Writer, results []Result) error {
	for _, result := range results {
		if err := printResult(out, result); err != nil {
			return err
		}
	}
	return nil
}

func printResult(out io.Writer, result Result) error {
	if len(result.Columns) > 0 {
		w := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, strings.Join(result.Columns, "\t"))
		for _, row := range result.Rows {
			_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "(%d rows)\n", len(result.Rows))
		return err
	}
	if result.Tag != "" {
		_, err := fmt.Fprintln(out, result.Tag)
		return err
	}
	return nil
}
