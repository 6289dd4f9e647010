package citation

import (
	"regexp"
	"slices"
	"strconv"

	"heinscrape/internal/textutil"
)

var (
	parenYearRegex = regexp.MustCompile(`\([^)]*\d{4}[^)]*\)`)
	yearRegex      = regexp.MustCompile(`\d{4}`)
)

// ExtractYearRange collects every four digit run inside parentheses and
// returns the smallest and largest of them. It returns nil when there are none.
func ExtractYearRange(source string) *YearRange {
	var years []int
	for _, group := range textutil.MatchAll(source, parenYearRegex) {
		for _, y := range textutil.MatchAll(group, yearRegex) {
			n, err := strconv.Atoi(y)
			if err != nil {
				continue
			}
			years = append(years, n)
		}
	}

	if len(years) == 0 {
		return nil
	}

	slices.Sort(years)
	years = slices.Compact(years)

	return &YearRange{Start: years[0], End: years[len(years)-1]}
}
