package files

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"thrive/internal/config"
)

// ExportFile is one discovered source file together with the date
// range embedded in its name. Exports are rolling snapshots; the end
// date decides precedence when the same sale appears in several files.
type ExportFile struct {
	Path      string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	HasRange  bool
}

// dateRangeRe matches two ISO dates separated by whitespace somewhere
// in the file stem, e.g. "Margin Report 2025-01-01 2025-01-31.csv".
var dateRangeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{4}-\d{2}-\d{2})`)

// ParseDateRange extracts the covered (start, end) dates from a
// filename. Files without a parseable range report HasRange false and
// sort as if dated earliest.
func ParseDateRange(name string) (start, end time.Time, ok bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m := dateRangeRe.FindStringSubmatch(stem)
	if m == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse("2006-01-02", m[2])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Discovery locates point-of-sale export files under an inbox
// directory, including year subdirectories.
type Discovery struct {
	inbox string
}

// NewDiscovery creates a file discovery instance rooted at inbox.
func NewDiscovery(inbox string) *Discovery {
	return &Discovery{inbox: inbox}
}

// find walks the inbox recursively and returns data files whose name
// contains any of the keywords (case-insensitive) and none of the
// exclude keywords, ordered by embedded end date descending. A missing
// inbox yields an empty list, not an error: absence of data is valid.
func (d *Discovery) find(keywords, exclude []string) []ExportFile {
	var matches []ExportFile

	filepath.WalkDir(d.inbox, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, walk continues
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			return nil
		}
		lower := strings.ToLower(name)
		for _, ex := range exclude {
			if strings.Contains(lower, ex) {
				return nil
			}
		}
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				start, end, ok := ParseDateRange(name)
				matches = append(matches, ExportFile{
					Path:      path,
					Name:      name,
					StartDate: start,
					EndDate:   end,
					HasRange:  ok,
				})
				return nil
			}
		}
		return nil
	})

	// Most recent export first. Stable so same-date files keep walk
	// order, with name as a final tie-break for determinism.
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].EndDate.Equal(matches[j].EndDate) {
			return matches[i].EndDate.After(matches[j].EndDate)
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// SalesExports returns all sales export files, most recent first.
// Staff and customer files are excluded even when they also match a
// sales keyword.
func (d *Discovery) SalesExports() []ExportFile {
	exclude := make([]string, 0, len(config.StaffKeywords)+len(config.CustomerKeywords))
	exclude = append(exclude, config.StaffKeywords...)
	exclude = append(exclude, config.CustomerKeywords...)
	return d.find(config.SalesKeywords, exclude)
}

// StaffExports returns staff-performance files, most recent first.
func (d *Discovery) StaffExports() []ExportFile {
	return d.find(config.StaffKeywords, nil)
}

// CustomerExports returns customer-attribute files, most recent first.
func (d *Discovery) CustomerExports() []ExportFile {
	return d.find(config.CustomerKeywords, nil)
}

// Latest returns the most recent file from an already ordered list.
func Latest(files []ExportFile) (ExportFile, bool) {
	if len(files) == 0 {
		return ExportFile{}, false
	}
	return files[0], true
}
