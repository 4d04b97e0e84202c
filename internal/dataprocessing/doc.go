// Package dataprocessing turns raw point-of-sale export files into the
// canonical deduplicated sales dataset. It covers the complete pipeline
// from file ingestion to the finished record set.
//
// # Architecture
//
// The package is organized into four main components:
//
// 1. Normalizer: reads one CSV/XLSX export into cleaned, typed records
// 2. Classifier: assigns transaction-type and deal-type labels in bulk
// 3. Cost corrector: rewrites known-bad cost data for house brands
// 4. Merger: combines overlapping exports into one unique-row dataset
//
// # Usage
//
// Full pipeline:
//
//	merger := dataprocessing.NewMerger(discovery, logger, metrics)
//	records, stats := merger.LoadAll(ctx)
//
// Exports are rolling snapshots whose date windows overlap, so the
// merger deduplicates by (receipt, product, completed-at) with the
// most recent export winning. Files are merged one at a time to keep
// peak memory at the accumulated unique rows plus a single file.
package dataprocessing
