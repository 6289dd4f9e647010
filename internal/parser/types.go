package parser

import (
	"time"

	"heinscrape/internal/citation"
)

// Page is everything scraped from one saved result page.
type Page struct {
	Source   string
	Records  []citation.RawRecord
	ParsedAt string
}

func NewPage(source string) *Page {
	return &Page{
		Source:   source,
		Records:  make([]citation.RawRecord, 0),
		ParsedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
