package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heinscrape/internal/table"
)

func TestExportSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citations.db")
	tbl := table.Table{
		Header: []string{table.ColHandle, table.ColYearFrom, table.AuthorColumn(1, "last name")},
		Rows: []table.Row{
			{Values: map[string]any{table.ColHandle: "h1", table.ColYearFrom: 1995, table.AuthorColumn(1, "last name"): "Smith"}},
			{Values: map[string]any{table.ColHandle: "h2", table.ColYearFrom: nil}},
		},
	}

	require.NoError(t, ExportSQLite(context.Background(), path, tbl))
	// a second export replaces the table
	require.NoError(t, ExportSQLite(context.Background(), path, tbl))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM citations`).Scan(&count))
	assert.Equal(t, 2, count)

	var year sql.NullInt64
	var last sql.NullString
	require.NoError(t, db.QueryRow(`SELECT "Year (from)", "Author 1 last name" FROM citations WHERE "HeinOnline Handle" = ?`, "h1").Scan(&year, &last))
	assert.Equal(t, int64(1995), year.Int64)
	assert.Equal(t, "Smith", last.String)

	require.NoError(t, db.QueryRow(`SELECT "Year (from)", "Author 1 last name" FROM citations WHERE "HeinOnline Handle" = ?`, "h2").Scan(&year, &last))
	assert.False(t, year.Valid)
	assert.False(t, last.Valid)
}

func TestExportSQLiteKeepsOtherTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE notes (body TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO notes (body) VALUES ('keep me')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tbl := table.Table{
		Header: []string{table.ColHandle},
		Rows:   []table.Row{{Values: map[string]any{table.ColHandle: "h1"}}},
	}
	require.NoError(t, ExportSQLite(context.Background(), path, tbl))

	db, err = sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var body string
	require.NoError(t, db.QueryRow(`SELECT body FROM notes`).Scan(&body))
	assert.Equal(t, "keep me", body)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM citations`).Scan(&count))
	assert.Equal(t, 1, count)
	assert.NoFileExists(t, path+".tmp")
}

func TestExportSQLiteEmptyHeader(t *testing.T) {
	err := ExportSQLite(context.Background(), filepath.Join(t.TempDir(), "x.db"), table.Table{})
	assert.Error(t, err)
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, "INTEGER", columnType(table.JournalColumn("volume")))
	assert.Equal(t, "TEXT", columnType(table.JournalColumn("name")))
	assert.Equal(t, "INTEGER", columnType(table.AuthorColumn(3, "citations")))
	assert.Equal(t, "TEXT", columnType(table.ColTitle))
}
