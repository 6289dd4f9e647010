package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"heinscrape/internal/citation"
	"heinscrape/internal/table"
)

func TestReadRawVariableWidth(t *testing.T) {
	in := "\uFEFFh1,link,3,snip,Title [article],\"Foo, Vol. 1\"\nh2,,,\n"

	records, err := ReadRaw(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, citation.RawRecord{"h1", "link", "3", "snip", "Title [article]", "Foo, Vol. 1"}, records[0])
	assert.Equal(t, citation.RawRecord{"h2", "", "", ""}, records[1])
}

func TestReadRawMalformed(t *testing.T) {
	_, err := ReadRaw(strings.NewReader("a,\"unterminated\n"))
	assert.Error(t, err)
}

func TestWriteRawRoundTrip(t *testing.T) {
	records := []citation.RawRecord{
		{"h1", "", "1", "a \"quoted\" snippet", "Smith, John; Doe, Jane"},
		{"h2", "l", "2", ""},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRaw(&buf, records))

	back, err := ReadRaw(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestWriteTablePadsRows(t *testing.T) {
	tbl := table.Table{
		Header: []string{"a", "b", "c"},
		Rows: []table.Row{
			{Columns: []string{"a", "b", "c"}, Values: map[string]any{"a": "x", "b": 2, "c": nil}},
			{Columns: []string{"a"}, Values: map[string]any{"a": "y"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))
	assert.Equal(t, "a,b,c\nx,2,\ny,,\n", buf.String())
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "data.csv")
	s := NewStorage(zaptest.NewLogger(t))

	require.NoError(t, s.SaveRaw(path, []citation.RawRecord{{"h1", "l"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "h1,l\n", string(data))
	assert.NoFileExists(t, path+".tmp")
}

func TestSaveRecordsKeepsMarkup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	s := NewStorage(nil)

	rec := citation.Record{Handle: "hein.journals/foo12&div=5", Title: "A & B", Authors: []citation.Author{}}
	require.NoError(t, s.SaveRecords(path, []citation.Record{rec}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hein.journals/foo12&div=5"`)

	var back []citation.Record
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.Equal(t, rec.Title, back[0].Title)
}

func TestSaveStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	s := NewStorage(nil)
	s.Update(func(st *Stats) {
		st.Pages = 2
		st.Records = 7
		st.Ambiguities = 1
	})

	require.NoError(t, s.SaveStats(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.EqualValues(t, 2, out["pages"])
	assert.EqualValues(t, 7, out["records"])
	assert.EqualValues(t, 1, out["ambiguities"])
	assert.Contains(t, out, "duration")
}
