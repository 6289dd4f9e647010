// Package citation turns the loosely ordered cells scraped from a HeinOnline
// result page into structured citation records.
//
// Cells carry no field markers beyond convention, so every field is located by
// a predicate (see Classifier) and then parsed by a matching extractor. When
// several cells satisfy the same predicate the last one wins and a warning is
// logged.
package citation

// RawRecord is one scraped article element: handle, PDF link, match count,
// snippet, then any number of free-text result lines.
type RawRecord []string

// Kind is the field a cell was classified as.
type Kind int

const (
	KindUnclassified Kind = iota
	KindTitle
	KindJournal
	KindAuthor
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindJournal:
		return "journal"
	case KindAuthor:
		return "author"
	default:
		return "unclassified"
	}
}

type Journal struct {
	Name     string `json:"name"`
	Volume   *int   `json:"volume"`
	Issue    *int   `json:"issue"`
	FromPage *int   `json:"from_page"`
	ToPage   *int   `json:"to_page"`
}

type Author struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// Citations is set only when the cell carried "(Cited N times)".
	Citations *int `json:"citations"`
}

type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Record is the beautified form of a RawRecord.
type Record struct {
	Handle     string     `json:"handle"`
	PDFLink    string     `json:"pdf_link"`
	MatchCount string     `json:"match_count"`
	Snippet    string     `json:"snippet"`
	Years      *YearRange `json:"years"`
	Title      string     `json:"title"`
	Journal    Journal    `json:"journal"`
	Authors    []Author   `json:"authors"`
	Source     string     `json:"source"`
}

// Rules are the tunable markers the heuristics look for. DefaultRules
// matches the HeinOnline export.
type Rules struct {
	TitleMarker     string   `yaml:"title_marker"`
	NewMarker       string   `yaml:"new_marker"`
	JournalMarkers  []string `yaml:"journal_markers"`
	CitationWords   []string `yaml:"citation_words"`
	AuthorPositions []int    `yaml:"author_positions"`
	SourceSeparator string   `yaml:"source_separator"`
	AuthorSeparator string   `yaml:"author_separator"`
}

func DefaultRules() Rules {
	return Rules{
		TitleMarker:     "[article]",
		NewMarker:       "*new*",
		JournalMarkers:  []string{" Vol.", " pp."},
		CitationWords:   []string{"Cited", "times"},
		AuthorPositions: []int{2, 3},
		SourceSeparator: " :: ",
		AuthorSeparator: ";",
	}
}
