package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"heinscrape/internal/table"
)

// CitationsTable is the table ExportSQLite writes the flat rows into.
const CitationsTable = "citations"

// ExportSQLite replaces the citations table in the database at path with the
// rows of tbl, creating the file when needed. Other tables are left alone and
// the swap happens in one transaction, so a failed export keeps the previous
// citations table. Columns follow the table header; integer values keep their
// type and missing values are stored as NULL.
func ExportSQLite(ctx context.Context, path string, tbl table.Table) error {
	if len(tbl.Header) == 0 {
		return fmt.Errorf("exporting to sqlite: empty header")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createSchema(ctx, tx, tbl.Header); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tbl.Header)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		CitationsTable, quoteColumns(tbl.Header), placeholders))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(tbl.Header))
	for i, row := range tbl.Rows {
		for j, col := range tbl.Header {
			args[j] = row.Get(col)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func createSchema(ctx context.Context, tx *sql.Tx, header []string) error {
	cols := make([]string, len(header))
	for i, col := range header {
		cols[i] = quoteIdent(col) + " " + columnType(col)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+CitationsTable); err != nil {
		return err
	}
	schema := fmt.Sprintf(`
		CREATE TABLE %s (
			%s
		)
	`, CitationsTable, strings.Join(cols, ",\n\t\t\t"))

	_, err := tx.ExecContext(ctx, schema)
	return err
}

func columnType(col string) string {
	switch {
	case col == table.ColMatches, col == table.ColYearFrom, col == table.ColYearTo:
		return "INTEGER"
	case strings.HasPrefix(col, table.JournalColumn("")) && col != table.JournalColumn("name"):
		return "INTEGER"
	case strings.HasSuffix(col, " citations"):
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func quoteColumns(header []string) string {
	quoted := make([]string, len(header))
	for i, col := range header {
		quoted[i] = quoteIdent(col)
	}
	return strings.Join(quoted, ", ")
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
