package main

import (
	"context"
	"fmt"
	"io"

	styles "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/pipeline"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

// runOnce fetches the dataset, runs the table pipeline with no filter or
// sort, and prints it to w.
func runOnce(ctx context.Context, f fetcher, bounds pipeline.Bounds, w io.Writer) error {
	records, report, err := f.Fetch(ctx)
	if err != nil {
		return err
	}
	view := pipeline.Apply(records, pipeline.FilterCriteria{Bounds: bounds}, pipeline.SortSpec{})
	if _, err := fmt.Fprintln(w, renderTable(view.Records, record.TableColumns)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s records from %s (%s skipped)\n",
		humanize.Comma(int64(report.Kept)), report.Source, humanize.Comma(int64(len(report.Skipped))))
	return err
}

func renderTable(records []record.DerivedRecord, columns []record.Column) string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Title()
	}
	t := table.New().
		Border(styles.NormalBorder()).
		Headers(headers...)
	for _, row := range pipeline.TableRows(records, columns) {
		t = t.Row(row...)
	}
	return t.String()
}
