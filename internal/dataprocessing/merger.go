package dataprocessing

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"thrive/internal/files"
	"thrive/internal/infrastructure"
	"thrive/pkg/contracts/domain"
)

// FileStat records the incremental contribution of one source file.
type FileStat struct {
	Name              string `json:"name"`
	RowsRead          int    `json:"rows_read"`
	RowsAdded         int    `json:"rows_added"`
	DuplicatesDropped int    `json:"duplicates_dropped"`
	Skipped           bool   `json:"skipped,omitempty"`
	Error             string `json:"error,omitempty"`
}

// MergeStats summarizes one full merge pass.
type MergeStats struct {
	FilesProcessed int               `json:"files_processed"`
	FilesSkipped   int               `json:"files_skipped"`
	RawRows        int               `json:"raw_rows"`
	UniqueRows     int               `json:"unique_rows"`
	Corrections    []CorrectionCount `json:"-"`
	PerFile        []FileStat        `json:"per_file"`
	Duration       time.Duration     `json:"duration"`
}

// Merger combines all discovered sales exports into one deduplicated,
// classified, cost-corrected dataset.
type Merger struct {
	discovery *files.Discovery
	logger    *slog.Logger
	metrics   *infrastructure.Metrics
}

// NewMerger creates a merger over the given discovery root.
func NewMerger(discovery *files.Discovery, logger *slog.Logger, metrics *infrastructure.Metrics) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{discovery: discovery, logger: logger, metrics: metrics}
}

// LoadAll discovers, merges, classifies, and cost-corrects every sales
// export. Files are processed most-recent first and deduplicated
// incrementally, so peak memory stays at the accumulated unique rows
// plus one file, never the sum of all files. A file that fails to
// parse is skipped with a warning; no files at all yields an empty
// dataset, not an error.
func (m *Merger) LoadAll(ctx context.Context) ([]domain.SalesRecord, *MergeStats) {
	start := time.Now()
	stats := &MergeStats{}

	exports := m.discovery.SalesExports()
	if len(exports) == 0 {
		m.logger.InfoContext(ctx, "no sales exports found, starting with empty dataset")
		stats.Duration = time.Since(start)
		return nil, stats
	}

	// Keep-first dedup over most-recent-first file order: the first
	// occurrence of a key is always from the latest export covering it,
	// so precedence needs no per-row comparison.
	var merged []domain.SalesRecord
	seen := make(map[domain.SalesKey]struct{})

	for i, export := range exports {
		records, err := ParseSalesFile(export.Path)
		if err != nil {
			m.logger.WarnContext(ctx, "skipping unreadable sales export",
				slog.String("file", export.Name),
				slog.String("error", err.Error()))
			stats.FilesSkipped++
			stats.PerFile = append(stats.PerFile, FileStat{Name: export.Name, Skipped: true, Error: err.Error()})
			if m.metrics != nil {
				m.metrics.FilesSkipped.Inc()
			}
			continue
		}

		added := 0
		for j := range records {
			key := records[j].Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, records[j])
			added++
		}

		stat := FileStat{
			Name:              export.Name,
			RowsRead:          len(records),
			RowsAdded:         added,
			DuplicatesDropped: len(records) - added,
		}
		stats.PerFile = append(stats.PerFile, stat)
		stats.FilesProcessed++
		stats.RawRows += stat.RowsRead

		if m.metrics != nil {
			m.metrics.FilesProcessed.Inc()
			m.metrics.RowsRead.Add(float64(stat.RowsRead))
			m.metrics.DuplicatesDropped.Add(float64(stat.DuplicatesDropped))
		}

		m.logger.InfoContext(ctx, "merged sales export",
			slog.Int("file_number", i+1),
			slog.Int("file_count", len(exports)),
			slog.String("file", export.Name),
			slog.Int("rows_read", stat.RowsRead),
			slog.Int("rows_added", added),
			slog.Int("duplicates_dropped", stat.DuplicatesDropped),
			slog.Int("total_unique", len(merged)))
	}

	stats.UniqueRows = len(merged)

	// Classification and cost correction run once, in batch, over the
	// finished merged set.
	ClassifyTransactions(merged)
	ClassifyDeals(merged)
	stats.Corrections = ApplyCostCorrections(merged, m.logger)

	if m.metrics != nil {
		m.metrics.RowsUnique.Set(float64(len(merged)))
		for _, c := range stats.Corrections {
			m.metrics.CostCorrections.WithLabelValues(c.Brand, strconv.Itoa(c.Year)).Add(float64(c.Rows))
		}
	}

	stats.Duration = time.Since(start)
	m.logger.InfoContext(ctx, "merge complete",
		slog.Int("files_processed", stats.FilesProcessed),
		slog.Int("files_skipped", stats.FilesSkipped),
		slog.Int("raw_rows", stats.RawRows),
		slog.Int("unique_rows", stats.UniqueRows),
		slog.Duration("duration", stats.Duration))

	return merged, stats
}
