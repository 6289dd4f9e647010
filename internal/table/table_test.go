package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heinscrape/internal/citation"
)

func intp(n int) *int { return &n }

func records() []citation.Record {
	return []citation.Record{
		{
			Handle:  "h1",
			Years:   &citation.YearRange{Start: 1990, End: 1999},
			Title:   "One",
			Journal: citation.Journal{Name: "J", Volume: intp(3)},
			Authors: []citation.Author{{FirstName: "A", LastName: "B", Citations: intp(2)}},
		},
		{
			Handle: "h2",
			Title:  "Two",
			Authors: []citation.Author{
				{FirstName: "C", LastName: "D"},
				{FirstName: "E", LastName: "F", Citations: intp(7)},
			},
		},
		{
			Handle: "h3",
			Title:  "Three",
		},
	}
}

func TestFlattenHeader(t *testing.T) {
	tbl := Flatten(records(), Options{})

	want := []string{
		"HeinOnline Handle", "Link to PDF", "Number of matches", "Snippet",
		"Year (from)", "Year (to)", "Title",
		"Journal name", "Journal volume", "Journal issue", "Journal from page", "Journal to page",
		"Author 1 first name", "Author 1 last name", "Author 1 citations",
		"Author 2 first name", "Author 2 last name", "Author 2 citations",
	}
	assert.Equal(t, want, tbl.Header)
	require.Len(t, tbl.Rows, 3)
}

func TestFlattenValues(t *testing.T) {
	tbl := Flatten(records(), Options{})

	first := tbl.Rows[0]
	assert.Equal(t, 1990, first.Get(ColYearFrom))
	assert.Equal(t, 1999, first.Get(ColYearTo))
	assert.Equal(t, 3, first.Get("Journal volume"))
	assert.Nil(t, first.Get("Journal issue"))
	assert.Equal(t, 2, first.Get("Author 1 citations"))

	second := tbl.Rows[1]
	assert.Nil(t, second.Get(ColYearFrom))
	assert.Nil(t, second.Get("Author 1 citations"))
	assert.Equal(t, "F", second.Get("Author 2 last name"))

	// padding for rows narrower than the header
	third := tbl.Strings(2)
	assert.Len(t, third, len(tbl.Header))
	assert.Equal(t, "h3", third[0])
	for _, v := range third[12:] {
		assert.Equal(t, "", v)
	}
}

func TestAuthorColumnsMatchMaxAuthors(t *testing.T) {
	recs := records()
	tbl := Flatten(recs, Options{})

	widest := 0
	for _, r := range recs {
		widest = max(widest, len(r.Authors))
	}

	count := 0
	for _, col := range tbl.Header {
		if len(col) > len(authorPrefix) && col[:len(authorPrefix)] == authorPrefix {
			count++
		}
	}
	assert.Equal(t, widest*len(authorFields), count)
}

func TestFlattenIdempotent(t *testing.T) {
	recs := records()
	assert.Equal(t, Flatten(recs, Options{}), Flatten(recs, Options{}))
}

func TestFlattenTieKeepsFirst(t *testing.T) {
	recs := []citation.Record{
		{Handle: "a", Authors: []citation.Author{{LastName: "X"}}},
		{Handle: "b", Authors: []citation.Author{{LastName: "Y"}}},
	}
	tbl := Flatten(recs, Options{})
	assert.Equal(t, tbl.Rows[0].Columns, tbl.Header)
}

func TestFlattenIncludeSource(t *testing.T) {
	tbl := Flatten([]citation.Record{{Handle: "h", Source: "a :: b"}}, Options{IncludeSource: true})
	assert.Equal(t, ColSource, tbl.Header[0])
	assert.Equal(t, "a :: b", tbl.Rows[0].String(ColSource))
}

func TestFlattenEmpty(t *testing.T) {
	tbl := Flatten(nil, Options{})
	assert.Empty(t, tbl.Header)
	assert.Empty(t, tbl.Rows)
}
