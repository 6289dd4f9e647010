package citation

import (
	"regexp"
	"slices"
	"strings"

	"heinscrape/internal/textutil"
)

var (
	digitRegex = regexp.MustCompile(`\d`)
	parenRegex = regexp.MustCompile(`[()]`)
)

// Classification is the outcome of running every predicate over one cell.
type Classification struct {
	Title   bool
	Journal bool
	Author  bool
}

// Kinds lists every field the cell matched, in title, journal, author order.
func (c Classification) Kinds() []Kind {
	var kinds []Kind
	if c.Title {
		kinds = append(kinds, KindTitle)
	}
	if c.Journal {
		kinds = append(kinds, KindJournal)
	}
	if c.Author {
		kinds = append(kinds, KindAuthor)
	}
	return kinds
}

// Ambiguity records a second cell matching a predicate already satisfied
// earlier in the same record.
type Ambiguity struct {
	Kind     Kind
	Previous string
	Current  string
}

// Classifier holds the predicates for title, journal and author cells.
type Classifier struct {
	rules Rules
}

func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

var defaultClassifier = NewClassifier(DefaultRules())

func IsTitle(cell string) bool             { return defaultClassifier.IsTitle(cell) }
func IsJournal(cell string) bool           { return defaultClassifier.IsJournal(cell) }
func IsAuthor(cell string, index int) bool { return defaultClassifier.IsAuthor(cell, index) }

func (c *Classifier) IsTitle(cell string) bool {
	return strings.Contains(cell, c.rules.TitleMarker)
}

func (c *Classifier) IsJournal(cell string) bool {
	return textutil.ContainsAny(cell, c.rules.JournalMarkers...)
}

// IsAuthor has no explicit marker to go on. A citation annotation is taken
// as proof; otherwise the cell has to sit at an author position, look like
// "Last, First" and not be claimed by the other predicates.
func (c *Classifier) IsAuthor(cell string, index int) bool {
	if len(c.rules.CitationWords) > 0 && textutil.ContainsAll(cell, c.rules.CitationWords...) {
		return true
	}

	if !slices.Contains(c.rules.AuthorPositions, index) {
		return false
	}
	if !strings.Contains(cell, ",") {
		return false
	}
	if textutil.Check(cell, digitRegex) {
		return false
	}
	if textutil.Check(cell, parenRegex) {
		return false
	}
	if c.IsJournal(cell) {
		return false
	}
	if c.IsTitle(cell) {
		return false
	}

	return true
}

func (c *Classifier) Classify(cell string, index int) Classification {
	return Classification{
		Title:   c.IsTitle(cell),
		Journal: c.IsJournal(cell),
		Author:  c.IsAuthor(cell, index),
	}
}

func (c *Classifier) matches(kind Kind, cell string, index int) bool {
	switch kind {
	case KindTitle:
		return c.IsTitle(cell)
	case KindJournal:
		return c.IsJournal(cell)
	case KindAuthor:
		return c.IsAuthor(cell, index)
	default:
		return false
	}
}

// Select scans cells and returns the last one matching kind, or "" when none
// does. Every match after the first is reported as an Ambiguity.
func (c *Classifier) Select(cells []string, kind Kind) (string, []Ambiguity) {
	var (
		found     bool
		saved     string
		ambiguous []Ambiguity
	)

	for i, cell := range cells {
		if !c.matches(kind, cell, i) {
			continue
		}
		if found {
			ambiguous = append(ambiguous, Ambiguity{Kind: kind, Previous: saved, Current: cell})
		}
		found = true
		saved = cell
	}

	return saved, ambiguous
}
