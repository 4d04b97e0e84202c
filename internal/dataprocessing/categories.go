package dataprocessing

import (
	"regexp"
	"strings"

	"thrive/internal/config"
)

// CanonicalCategory maps a free-text category alias to its canonical
// name. Unknown categories pass through unchanged.
func CanonicalCategory(raw string) string {
	if canonical, ok := config.CategoryAliases[raw]; ok {
		return canonical
	}
	return raw
}

// SegmentFor returns the customer segment for a group-membership
// string. First matching keyword wins; customers with no groups are
// "Regular".
func SegmentFor(groups string) string {
	if strings.TrimSpace(groups) == "" {
		return "Regular"
	}
	upper := strings.ToUpper(groups)
	for _, seg := range config.CustomerSegments {
		if strings.Contains(upper, seg.Keyword) {
			return seg.Segment
		}
	}
	return "Other Group"
}

var rewardNameRe = regexp.MustCompile(`(?i)(REWARD\s*-\s*\d+\s*Points?\s*-\s*[^,]+)`)

// ExtractRewardName pulls the reward description out of a deals string,
// e.g. "REWARD - 500 Points - Free Pre Roll". Falls back to the whole
// string when it mentions a reward without the structured form, and
// returns "" otherwise.
func ExtractRewardName(deals string) string {
	if deals == "" {
		return ""
	}
	if m := rewardNameRe.FindStringSubmatch(deals); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.Contains(strings.ToUpper(deals), "REWARD") {
		return strings.TrimSpace(deals)
	}
	return ""
}
