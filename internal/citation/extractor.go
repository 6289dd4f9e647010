package citation

import (
	"regexp"
	"strconv"
	"strings"

	"heinscrape/internal/textutil"
)

var (
	volumeRegex   = regexp.MustCompile(`Vol\. (\d+)`)
	issueRegex    = regexp.MustCompile(`Issue (\d+)`)
	pagesRegex    = regexp.MustCompile(`pp\. (\d+)-(\d+)`)
	citationRegex = regexp.MustCompile(`(.+) \(Cited (\d+) times\)`)
)

const journalTail = ", Vol."

// Extractor parses cells that have already been classified.
type Extractor struct {
	rules Rules
}

func NewExtractor(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Title drops the export markers and decodes &amp;.
func (e *Extractor) Title(cell string) string {
	title := cell
	if e.rules.TitleMarker != "" {
		title = strings.ReplaceAll(title, e.rules.TitleMarker, "")
	}
	if e.rules.NewMarker != "" {
		title = strings.ReplaceAll(title, e.rules.NewMarker, "")
	}
	return textutil.UnescapeAmp(title)
}

// Journal splits "Name, Vol. 12, Issue 3, pp. 45-67" into its parts. Parts
// that are not present stay nil.
func (e *Extractor) Journal(cell string) Journal {
	name := cell
	if idx := strings.Index(name, journalTail); idx >= 0 {
		name = name[:idx]
	}

	j := Journal{Name: textutil.UnescapeAmp(name)}
	j.Volume = groupInt(cell, volumeRegex, 1)
	j.Issue = groupInt(cell, issueRegex, 1)
	if m := textutil.Match(cell, pagesRegex); m != nil {
		j.FromPage = atoi(m[1])
		j.ToPage = atoi(m[2])
	}
	return j
}

// Authors parses "Last, First (Cited N times); Last, First". A name with a
// third comma part or with nothing left after parsing is a FatalError.
func (e *Extractor) Authors(cell string) ([]Author, error) {
	sep := e.rules.AuthorSeparator
	if sep == "" {
		sep = ";"
	}

	authors := make([]Author, 0)
	for _, entry := range strings.Split(cell, sep) {
		if entry == "" {
			continue
		}

		name := entry
		var citations *int
		if m := textutil.Match(entry, citationRegex); m != nil {
			name = m[1]
			citations = atoi(m[2])
		}

		// some entries carry a stray comma
		parts := strings.Split(strings.Trim(name, ","), ",")
		if len(parts) > 2 {
			return nil, &FatalError{Kind: ErrUnusualName, Text: cell}
		}

		author := Author{
			LastName:  strings.TrimSpace(parts[0]),
			Citations: citations,
		}
		if len(parts) > 1 {
			author.FirstName = strings.TrimSpace(parts[1])
		}

		if author.FirstName == "" && author.LastName == "" {
			return nil, &FatalError{Kind: ErrEmptyName, Text: entry}
		}

		authors = append(authors, author)
	}

	return authors, nil
}

func groupInt(s string, re *regexp.Regexp, i int) *int {
	g, ok := textutil.Group(s, re, i)
	if !ok {
		return nil
	}
	return atoi(g)
}

func atoi(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
