// Command processor runs one full dataset build from the command line:
// it discovers the export files in the inbox, merges them into the
// deduplicated dataset, and prints a summary. Useful for checking a
// batch of exports before pointing the web service at them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"thrive/internal/config"
	"thrive/internal/dataprocessing"
	"thrive/internal/exporter"
	"thrive/internal/files"
	"thrive/internal/infrastructure"
	"thrive/pkg/contracts/domain"
)

func main() {
	inDir := flag.String("in", "", "inbox directory with export files (defaults to the configured paths.inbox_dir)")
	outFile := flag.String("out", "", "write the merged dataset to this CSV file")
	verbose := flag.Bool("v", false, "per-file statistics")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging := cfg.Logging
	if !*verbose {
		logging.Level = "warn"
	}
	logger, err := infrastructure.InitializeLogger(logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	inbox := cfg.Paths.InboxDir
	if *inDir != "" {
		inbox = *inDir
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	merger := dataprocessing.NewMerger(files.NewDiscovery(inbox), logger, nil)

	start := time.Now()
	records, stats := merger.LoadAll(ctx)

	fmt.Printf("Inbox:            %s\n", inbox)
	fmt.Printf("Files processed:  %d (%d skipped)\n", stats.FilesProcessed, stats.FilesSkipped)
	fmt.Printf("Raw rows:         %d\n", stats.RawRows)
	fmt.Printf("Unique rows:      %d (%d duplicates dropped)\n", stats.UniqueRows, stats.RawRows-stats.UniqueRows)
	fmt.Printf("Cost corrections: %d\n", totalCorrections(stats))
	fmt.Printf("Elapsed:          %s\n", time.Since(start).Round(time.Millisecond))

	if *verbose {
		fmt.Println()
		for _, f := range stats.PerFile {
			fmt.Printf("  %-50s %6d rows, %5d new\n", f.Name, f.RowsRead, f.RowsAdded)
		}
	}

	if len(records) > 0 {
		printSummary(records)
	}

	if *outFile != "" {
		if err := exporter.WriteSalesFile(*outFile, records); err != nil {
			slog.Error("failed to write merged dataset", "path", *outFile, "error", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %d rows to %s\n", len(records), *outFile)
	}
}

func totalCorrections(stats *dataprocessing.MergeStats) int {
	total := 0
	for _, c := range stats.Corrections {
		total += c.Rows
	}
	return total
}

// printSummary prints per-period row counts and revenue, oldest first.
func printSummary(records []domain.SalesRecord) {
	type bucket struct {
		rows    int
		revenue float64
	}
	byPeriod := make(map[int]*bucket)
	for i := range records {
		r := &records[i]
		b, ok := byPeriod[r.YearMonth()]
		if !ok {
			b = &bucket{}
			byPeriod[r.YearMonth()] = b
		}
		b.rows++
		if r.TransactionType == domain.TransactionRegular {
			b.revenue += r.ActualRevenue
		}
	}

	periods := make([]int, 0, len(byPeriod))
	for ym := range byPeriod {
		periods = append(periods, ym)
	}
	sort.Ints(periods)

	fmt.Println()
	fmt.Println("Period      Rows    Regular revenue")
	for _, ym := range periods {
		b := byPeriod[ym]
		fmt.Printf("%04d-%02d  %7d  $%15.2f\n", ym/100, ym%100, b.rows, b.revenue)
	}
}
