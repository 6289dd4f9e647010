// Package table flattens beautified citation records into rows with one
// scalar value per named column.
package table

import (
	"fmt"
	"strconv"

	"heinscrape/internal/citation"
)

const (
	ColSource     = "Source"
	ColHandle     = "HeinOnline Handle"
	ColPDF        = "Link to PDF"
	ColMatches    = "Number of matches"
	ColSnippet    = "Snippet"
	ColYearFrom   = "Year (from)"
	ColYearTo     = "Year (to)"
	ColTitle      = "Title"
	journalPrefix = "Journal "
	authorPrefix  = "Author "
)

var (
	journalFields = []string{"name", "volume", "issue", "from page", "to page"}
	authorFields  = []string{"first name", "last name", "citations"}
)

// Row keeps its columns in insertion order. Values are nil, string or int.
type Row struct {
	Columns []string
	Values  map[string]any
}

func newRow() Row {
	return Row{Values: make(map[string]any)}
}

func (r *Row) set(col string, v any) {
	if _, ok := r.Values[col]; !ok {
		r.Columns = append(r.Columns, col)
	}
	r.Values[col] = v
}

// Get returns the value stored under col; missing columns read as nil.
func (r Row) Get(col string) any {
	return r.Values[col]
}

// String renders the value under col the way the tabular writers expect:
// nil and missing columns become "".
func (r Row) String(col string) string {
	switch v := r.Values[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// Strings lays the row out along header.
func (r Row) Strings(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		out[i] = r.String(col)
	}
	return out
}

type Table struct {
	Header []string
	Rows   []Row
}

// Strings returns row i laid out along the header.
func (t Table) Strings(i int) []string {
	return t.Rows[i].Strings(t.Header)
}

type Options struct {
	// IncludeSource adds a leading Source column with the joined record text.
	IncludeSource bool
}

// Flatten converts records into rows. The header is the column list of the
// widest row; the first one wins on ties.
func Flatten(records []citation.Record, opts Options) Table {
	t := Table{
		Header: []string{},
		Rows:   make([]Row, 0, len(records)),
	}

	for _, rec := range records {
		row := flattenRecord(rec, opts)
		if len(row.Columns) > len(t.Header) {
			t.Header = row.Columns
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}

// AuthorColumn names the column for field of the n-th author, counting from 1.
func AuthorColumn(n int, field string) string {
	return authorPrefix + strconv.Itoa(n) + " " + field
}

func JournalColumn(field string) string {
	return journalPrefix + field
}

func flattenRecord(rec citation.Record, opts Options) Row {
	row := newRow()

	if opts.IncludeSource {
		row.set(ColSource, rec.Source)
	}
	row.set(ColHandle, rec.Handle)
	row.set(ColPDF, rec.PDFLink)
	row.set(ColMatches, rec.MatchCount)
	row.set(ColSnippet, rec.Snippet)

	if rec.Years != nil {
		row.set(ColYearFrom, rec.Years.Start)
		row.set(ColYearTo, rec.Years.End)
	} else {
		row.set(ColYearFrom, nil)
		row.set(ColYearTo, nil)
	}
	row.set(ColTitle, rec.Title)

	j := rec.Journal
	journal := []any{j.Name, intValue(j.Volume), intValue(j.Issue), intValue(j.FromPage), intValue(j.ToPage)}
	for i, field := range journalFields {
		row.set(JournalColumn(field), journal[i])
	}

	for n, a := range rec.Authors {
		author := []any{a.FirstName, a.LastName, intValue(a.Citations)}
		for i, field := range authorFields {
			row.set(AuthorColumn(n+1, field), author[i])
		}
	}

	return row
}

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
