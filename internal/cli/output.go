package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"sigs.k8s.io/yaml"
)

// column is one column of table output.
type column[T any] struct {
	header string
	value  func(T) string
}

var (
	goodStatus    = color.New(color.FgGreen)
	pendingStatus = color.New(color.FgYellow)
	badStatus     = color.New(color.FgRed).Add(color.Bold)
)

// colorStatus colours a status value for the terminal. Colour is dropped automatically
// when stdout is not a terminal.
func colorStatus(s string) string {
	switch strings.ToLower(s) {
	case "active", "verified", "paid", "resolved", "closed":
		return goodStatus.Sprint(s)
	case "pending", "under_review", "open", "in_progress":
		return pendingStatus.Sprint(s)
	case "rejected", "expired", "overdue":
		return badStatus.Sprint(s)
	}
	return s
}

// envelope is the JSON wrapper of every successful result.
func envelope(v any) map[string]any {
	return map[string]any{
		"result": 1,
		"value":  v,
	}
}

// render writes v in the selected output format. Table output uses cols over items;
// JSON and YAML output encode v.
func render[T any](w io.Writer, title string, v any, items []T, cols []column[T]) error {
	switch outputFormat {
	case "json":
		printJSON(w, envelope(v))
		return nil
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to format YAML output: %v", err)
		}
		_, err = w.Write(out)
		return err
	}

	if title != "" {
		fmt.Fprintf(w, "%s:\n", cases.Title(language.English).String(title))
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = strings.ToUpper(c.header)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, item := range items {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.value(item)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// printMessage writes a confirmation line, or the JSON envelope of v.
func printMessage(w io.Writer, msg string, v any) {
	switch outputFormat {
	case "json":
		printJSON(w, envelope(v))
	case "yaml":
		if out, err := yaml.Marshal(v); err == nil {
			w.Write(out)
		}
	default:
		fmt.Fprintln(w, msg)
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func dateOf(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
