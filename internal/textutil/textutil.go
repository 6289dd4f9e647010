// Package textutil holds the small string helpers shared by the scraper and
// the citation heuristics.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	separatorsRegex = regexp.MustCompile(`[\pZ\pC]+`)
	edgeRegex       = regexp.MustCompile(`^[\pZ\pC]+|[\pZ\pC]+$`)
)

// ContainsAny reports whether s contains at least one of the needles.
func ContainsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether s contains every needle.
func ContainsAll(s string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(s, n) {
			return false
		}
	}
	return true
}

// Match returns the first match of re in s and its submatches, or nil.
func Match(s string, re *regexp.Regexp) []string {
	return re.FindStringSubmatch(s)
}

// MatchAll returns every full match of re in s.
func MatchAll(s string, re *regexp.Regexp) []string {
	return re.FindAllString(s, -1)
}

// Check reports whether re matches anywhere in s.
func Check(s string, re *regexp.Regexp) bool {
	return re.MatchString(s)
}

// Group returns submatch i of the first match, and false when there is no
// match or the group did not participate.
func Group(s string, re *regexp.Regexp, i int) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil || i >= len(m) {
		return "", false
	}
	return m[i], true
}

// CompactWhitespace replaces every run of unicode separators and control
// characters with a single space.
func CompactWhitespace(s string) string {
	return separatorsRegex.ReplaceAllString(s, " ")
}

// UnicodeTrim trims unicode separators and control characters from both ends.
func UnicodeTrim(s string) string {
	return edgeRegex.ReplaceAllString(s, "")
}

// StripTags drops anything that looks like a markup tag. Entities are left
// encoded.
func StripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}

// UnescapeAmp turns the &amp; entity back into a bare ampersand. Other
// entities are kept as they are in the export.
func UnescapeAmp(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}

// NormalizeLine is the cleanup applied to every scraped result line.
func NormalizeLine(s string) string {
	return norm.NFC.String(CompactWhitespace(UnicodeTrim(StripTags(s))))
}
