package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thrive/internal/files"
	"thrive/internal/infrastructure"
	"thrive/pkg/contracts/domain"
)

func newTestMerger(t *testing.T, inbox string) *Merger {
	t.Helper()
	return NewMerger(files.NewDiscovery(inbox), slog.Default(), infrastructure.NewMetrics())
}

func TestLoadAll_OverlappingExportsDeduplicated(t *testing.T) {
	// File A covers Jan 1-15 and contains key (555, "X", T) with
	// cost-per-item $0.50. File B covers Jan 1-31 and carries the same
	// key with $2.00. B's end date is later, so B's row must win.
	inbox := t.TempDir()

	rowsA := make([][]string, 0, 10)
	rowsA = append(rowsA, salesRow(map[string]string{
		"Receipt ID":    "555",
		"Product":       "X",
		"Completed At":  "01/10/2025 01:00:00 PM",
		"Cost Per Item": "$0.50",
	}))
	for i := 0; i < 9; i++ {
		rowsA = append(rowsA, salesRow(map[string]string{
			"Receipt ID":   fmt.Sprintf("a%d", i),
			"Completed At": "01/05/2025 10:00:00 AM",
		}))
	}
	writeSalesCSV(t, inbox, "Margin Report 2025-01-01 2025-01-15.csv", rowsA...)

	rowsB := make([][]string, 0, 30)
	rowsB = append(rowsB, salesRow(map[string]string{
		"Receipt ID":    "555",
		"Product":       "X",
		"Completed At":  "01/10/2025 01:00:00 PM",
		"Cost Per Item": "$2.00",
	}))
	for i := 0; i < 29; i++ {
		rowsB = append(rowsB, salesRow(map[string]string{
			"Receipt ID":   fmt.Sprintf("b%d", i),
			"Completed At": "01/20/2025 10:00:00 AM",
		}))
	}
	writeSalesCSV(t, inbox, "Margin Report 2025-01-01 2025-01-31.csv", rowsB...)

	merged, stats := newTestMerger(t, inbox).LoadAll(context.Background())

	assert.Equal(t, 39, len(merged), "10 + 30 - 1 duplicate")
	assert.Equal(t, 40, stats.RawRows)
	assert.Equal(t, 39, stats.UniqueRows)
	assert.Equal(t, 2, stats.FilesProcessed)

	var survivors []domain.SalesRecord
	for _, r := range merged {
		if r.ReceiptID == "555" && r.Product == "X" {
			survivors = append(survivors, r)
		}
	}
	require.Len(t, survivors, 1, "exactly one row per dedup key")
	assert.Equal(t, 2.00, survivors[0].CostPerItem, "the later export wins")
}

func TestLoadAll_PerFileStats(t *testing.T) {
	inbox := t.TempDir()
	writeSalesCSV(t, inbox, "Margin Report 2025-01-01 2025-01-31.csv",
		salesRow(map[string]string{"Receipt ID": "1"}),
		salesRow(map[string]string{"Receipt ID": "2"}),
	)
	writeSalesCSV(t, inbox, "Margin Report 2025-01-01 2025-01-15.csv",
		salesRow(map[string]string{"Receipt ID": "1"}), // duplicate of newer export
		salesRow(map[string]string{"Receipt ID": "9"}),
	)

	_, stats := newTestMerger(t, inbox).LoadAll(context.Background())

	require.Len(t, stats.PerFile, 2)
	// Most recent file processed first
	assert.Equal(t, "Margin Report 2025-01-01 2025-01-31.csv", stats.PerFile[0].Name)
	assert.Equal(t, 2, stats.PerFile[0].RowsAdded)
	assert.Equal(t, 0, stats.PerFile[0].DuplicatesDropped)
	assert.Equal(t, 1, stats.PerFile[1].RowsAdded)
	assert.Equal(t, 1, stats.PerFile[1].DuplicatesDropped)
}

func TestLoadAll_WithinFileDuplicates(t *testing.T) {
	inbox := t.TempDir()
	same := map[string]string{"Receipt ID": "7", "Product": "X", "Completed At": "01/10/2025 01:00:00 PM"}
	writeSalesCSV(t, inbox, "Margin Report 2025-01-01 2025-01-31.csv",
		salesRow(same), salesRow(same),
	)

	merged, _ := newTestMerger(t, inbox).LoadAll(context.Background())
	assert.Len(t, merged, 1, "duplicates within one file keep the first occurrence")
}

func TestLoadAll_MalformedFileSkipped(t *testing.T) {
	inbox := t.TempDir()
	writeSalesCSV(t, inbox, "Margin Report 2025-01-01 2025-01-31.csv",
		salesRow(map[string]string{"Receipt ID": "1"}),
	)
	// Older file with a broken currency cell: skipped, batch continues.
	writeSalesCSV(t, inbox, "Margin Report 2025-01-01 2025-01-15.csv",
		salesRow(map[string]string{"Receipt ID": "2", "Cost": "broken"}),
	)

	merged, stats := newTestMerger(t, inbox).LoadAll(context.Background())

	assert.Len(t, merged, 1)
	assert.Equal(t, 1, stats.FilesProcessed)
	assert.Equal(t, 1, stats.FilesSkipped)
	require.Len(t, stats.PerFile, 2)
	assert.True(t, stats.PerFile[1].Skipped)
	assert.NotEmpty(t, stats.PerFile[1].Error)
}

func TestLoadAll_EmptyInbox(t *testing.T) {
	merged, stats := newTestMerger(t, filepath.Join(t.TempDir(), "missing")).LoadAll(context.Background())
	assert.Nil(t, merged)
	assert.Equal(t, 0, stats.UniqueRows)
	assert.Equal(t, 0, stats.FilesProcessed)
}

func TestLoadAll_ClassifiesAndCorrects(t *testing.T) {
	inbox := t.TempDir()
	writeSalesCSV(t, inbox, "Margin Report 2024-06-01 2024-06-30.csv",
		salesRow(map[string]string{
			"Receipt ID":    "1",
			"Completed At":  "06/15/2024 02:30:00 PM",
			"Brand":         "HAUS",
			"Cost Per Item": "$0.05",
			"Cost":          "$0.05",
		}),
		salesRow(map[string]string{
			"Receipt ID":   "2",
			"Completed At": "06/15/2024 02:31:00 PM",
			"Deals Used":   "REWARD - 100 POINTS - GUMMY",
		}),
	)

	merged, stats := newTestMerger(t, inbox).LoadAll(context.Background())
	require.Len(t, merged, 2)

	byReceipt := map[string]domain.SalesRecord{}
	for _, r := range merged {
		byReceipt[r.ReceiptID] = r
	}

	assert.Equal(t, domain.TransactionRegular, byReceipt["1"].TransactionType)
	assert.Equal(t, domain.DealNone, byReceipt["1"].DealType)
	assert.Equal(t, 10.0, byReceipt["1"].CostPerItem, "2024 conditional correction applied")

	assert.Equal(t, domain.TransactionReward, byReceipt["2"].TransactionType)
	require.Len(t, stats.Corrections, 1)
	assert.Equal(t, "HAUS", stats.Corrections[0].Brand)
}

func TestParseStaffFile(t *testing.T) {
	content := "Budtender,Transactions,Average Cart Value (pre-tax),Sales (pre-tax),Upsell Total Price,Upsell Total Profit,% of Sales Discounted\n" +
		"Alex,120,\"$45.50\",\"$5,460.00\",$300.00,$120.00,12.5%\n" +
		",,,,,,\n"
	path := filepath.Join(t.TempDir(), "BT Sales 2025-01-01 2025-01-31.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := ParseStaffFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Alex", records[0].Name)
	assert.Equal(t, 120, records[0].Transactions)
	assert.Equal(t, 45.50, records[0].AvgCartValue)
	assert.Equal(t, 5460.00, records[0].Sales)
	assert.Equal(t, 12.5, records[0].PctDiscounted)
}

func TestParseCustomerFile(t *testing.T) {
	content := "ID,Name,Groups,Loyal,Loyalty Points\n" +
		"C-1,Jamie,\"Veteran, Local\",true,250\n" +
		"C-2,Morgan,,false,0\n"
	path := filepath.Join(t.TempDir(), "Customer List.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := ParseCustomerFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Veteran", records[0].Segment)
	assert.True(t, records[0].IsLoyal)
	assert.Equal(t, 250, records[0].LoyaltyPoints)
	assert.Equal(t, "Regular", records[1].Segment)
}

func TestSegmentFor(t *testing.T) {
	tests := []struct {
		groups string
		want   string
	}{
		{"", "Regular"},
		{"Veteran, Local", "Veteran"},
		{"industry friends", "Industry"},
		{"Medical Card", "Medical"},
		{"Book Club", "Other Group"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SegmentFor(tt.groups), tt.groups)
	}
}

func TestExtractRewardName(t *testing.T) {
	assert.Equal(t, "REWARD - 500 Points - Free Pre Roll",
		ExtractRewardName("REWARD - 500 Points - Free Pre Roll, 10% OFF"))
	assert.Equal(t, "birthday reward", ExtractRewardName("birthday reward"))
	assert.Equal(t, "", ExtractRewardName("10% OFF"))
	assert.Equal(t, "", ExtractRewardName(""))
}
