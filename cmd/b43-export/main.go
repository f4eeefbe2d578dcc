// Command b43-export downloads expenses from the backend API and writes them
// to a CSV or XLSX file, applying the same filters the web dashboard offers.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"b43/internal/api"
	"b43/internal/cli"
	"b43/internal/core"
	"b43/internal/export"
	"b43/internal/filter"
)

func main() {
	var (
		query   = flag.String("q", "", "backend search query")
		field   = flag.String("field", "name", "filter field: name, category, floor or date")
		value   = flag.String("value", "", "filter value")
		from    = flag.String("from", "", "start date (YYYY-MM-DD, inclusive)")
		to      = flag.String("to", "", "end date (YYYY-MM-DD, inclusive)")
		out     = flag.String("o", "", "output file (default expenses.csv, or - for stdout)")
		xlsx    = flag.Bool("xlsx", false, "write an XLSX workbook instead of CSV")
		timeout = flag.Duration("timeout", 60*time.Second, "request timeout")
	)
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backend := api.New(cfg.APIBaseURL, *timeout)
	items, err := backend.List(ctx, *query)
	if err != nil {
		logger.Error("Failed to fetch expenses", "error", err, "api_base_url", cfg.APIBaseURL)
		os.Exit(1)
	}

	filtered := filter.Apply(items, filter.Criteria{
		Field:    filter.ParseField(*field),
		Value:    *value,
		DateFrom: *from,
		DateTo:   *to,
	})

	path := *out
	if path == "" {
		path = export.CSVFileName
		if *xlsx {
			path = export.XLSXFileName
		}
	}

	if err := writeOutput(path, *xlsx, filtered); err != nil {
		logger.Error("Export failed", "error", err, "output", path)
		os.Exit(1)
	}

	if path != "-" {
		fmt.Fprintf(os.Stderr, "wrote %d expenses to %s (total %s)\n",
			len(filtered), path, core.FormatINR(filter.Total(filtered)))
	}
}

func writeOutput(path string, xlsx bool, items []core.Expense) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if xlsx {
		return export.WriteXLSX(w, items)
	}
	return export.WriteCSV(w, items)
}
