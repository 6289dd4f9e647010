// Package storage reads and writes the tabular files on either side of the
// beautify stage. Files are written to a temp file first and renamed into
// place, so a failed run never leaves a partial output behind; the SQLite
// export gets the same guarantee from a transaction.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"heinscrape/internal/citation"
	"heinscrape/internal/table"
)

const utf8BOM = "\uFEFF"

type Storage struct {
	mu     sync.Mutex
	stats  *Stats
	logger *zap.Logger
}

type Stats struct {
	Pages       int       `json:"pages"`
	FailedPages int       `json:"failed_pages"`
	RawRecords  int       `json:"raw_records"`
	Duplicates  int       `json:"duplicates"`
	Records     int       `json:"records"`
	Ambiguities int       `json:"ambiguities"`
	Overlaps    int       `json:"overlapping_cells"`
	MaxAuthors  int       `json:"max_authors"`
	Columns     int       `json:"columns"`
	StartTime   time.Time `json:"start_time"`
	LastUpdate  time.Time `json:"last_update"`
}

func NewStorage(logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{
		stats: &Stats{
			StartTime:  time.Now(),
			LastUpdate: time.Now(),
		},
		logger: logger,
	}
}

// Update applies fn to the run counters.
func (s *Storage) Update(fn func(*Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.stats)
	s.stats.LastUpdate = time.Now()
}

func (s *Storage) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.stats
}

// ReadRaw reads the headerless intermediate table. Rows may have any width.
func ReadRaw(r io.Reader) ([]citation.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records []citation.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading raw table: %w", err)
		}
		if len(records) == 0 && len(row) > 0 {
			row[0] = strings.TrimPrefix(row[0], utf8BOM)
		}
		records = append(records, citation.RawRecord(row))
	}
	return records, nil
}

func ReadRawFile(path string) ([]citation.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening raw table: %w", err)
	}
	defer f.Close()
	return ReadRaw(f)
}

func WriteRaw(w io.Writer, records []citation.RawRecord) error {
	writer := csv.NewWriter(w)
	for _, r := range records {
		if err := writer.Write(r); err != nil {
			return fmt.Errorf("writing raw record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTable writes the header and every row padded out to the header width.
func WriteTable(w io.Writer, tbl table.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(tbl.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range tbl.Rows {
		if err := writer.Write(tbl.Strings(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (s *Storage) SaveRaw(path string, records []citation.RawRecord) error {
	return s.save(path, func(w io.Writer) error { return WriteRaw(w, records) })
}

func (s *Storage) SaveTable(path string, tbl table.Table) error {
	return s.save(path, func(w io.Writer) error { return WriteTable(w, tbl) })
}

func (s *Storage) SaveRecords(path string, records []citation.Record) error {
	return s.save(path, func(w io.Writer) error { return WriteJSON(w, records) })
}

func (s *Storage) SaveStats(path string) error {
	stats := s.GetStats()
	out := struct {
		Stats
		EndTime  time.Time `json:"end_time"`
		Duration string    `json:"duration"`
	}{
		Stats:    stats,
		EndTime:  time.Now(),
		Duration: time.Since(stats.StartTime).String(),
	}
	return s.save(path, func(w io.Writer) error { return WriteJSON(w, out) })
}

// save writes to stdout when path is "-" and atomically to path otherwise.
func (s *Storage) save(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempFile := path + ".tmp"
	if err := writeFile(tempFile, write); err != nil {
		os.Remove(tempFile)
		return err
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Debug("saved output", zap.String("path", path))
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return write(file)
}
