package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"heinscrape/internal/citation"
	"heinscrape/internal/fetcher"
	"heinscrape/internal/parser"
	"heinscrape/internal/storage"
	"heinscrape/internal/table"
	"heinscrape/internal/worker"
)

// outputs names the files a beautify run writes. Empty paths are skipped.
type outputs struct {
	csv           string
	json          string
	sqlite        string
	stats         string
	includeSource bool
}

// scrape loads and parses every page with the worker pool and merges the
// records in argument order. Pages that fail are logged and skipped; the
// stage only fails when no page could be read.
func (a *app) scrape(ctx context.Context, sources []string, dedupe bool, st *storage.Storage) ([]citation.RawRecord, error) {
	if len(sources) == 0 {
		return nil, errors.New("no pages given")
	}

	f := fetcher.NewFetcher(a.cfg.Timeout, a.cfg.MaxRetries, a.cfg.UserAgent, a.logger)
	p := parser.NewParser(a.logger)
	pool := worker.NewPool(a.cfg.Workers, a.cfg.RateLimit, a.logger)

	start := time.Now()
	results := pool.Run(ctx, sources, fetcher.IsRemote, func(ctx context.Context, source string) (any, error) {
		res, err := f.Fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch failed: %w", err)
		}
		page, err := p.Parse(res.Body, source)
		if err != nil {
			return nil, fmt.Errorf("parse failed: %w", err)
		}
		return page, nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		records []citation.RawRecord
		failed  int
		errs    []error
	)
	for _, r := range results {
		if r.Error != nil {
			failed++
			errs = append(errs, fmt.Errorf("%s: %w", r.Task.Source, r.Error))
			a.logger.Error("page failed", zap.String("source", r.Task.Source), zap.Error(r.Error))
			continue
		}
		page := r.Data.(*parser.Page)
		records = append(records, page.Records...)
	}
	if failed == len(sources) {
		return nil, fmt.Errorf("no page could be read: %w", errors.Join(errs...))
	}

	scraped := len(records)
	duplicates := 0
	if dedupe {
		records, duplicates = parser.Dedupe(records)
	}

	st.Update(func(s *storage.Stats) {
		s.Pages = len(sources) - failed
		s.FailedPages = failed
		s.RawRecords = scraped
		s.Duplicates = duplicates
	})

	a.logger.Info("scraped pages",
		zap.Int("pages", len(sources)-failed),
		zap.Int("failed", failed),
		zap.Int("records", len(records)),
		zap.Int("duplicates", duplicates),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))

	return records, nil
}

// beautify turns raw records into typed records and the flat table. Nothing
// is returned when any record is fatal.
func (a *app) beautify(ctx context.Context, raws []citation.RawRecord, opts table.Options, st *storage.Storage) ([]citation.Record, table.Table, error) {
	b := citation.NewBeautifier(a.cfg.Rules, a.cfg.Workers, a.logger)

	records, err := b.BeautifyAll(ctx, raws)
	if err != nil {
		return nil, table.Table{}, err
	}
	tbl := table.Flatten(records, opts)

	st.Update(func(s *storage.Stats) {
		s.Records = len(records)
		s.Ambiguities = b.Ambiguities()
		s.Overlaps = b.Overlaps()
		s.MaxAuthors = b.MaxAuthors()
		s.Columns = len(tbl.Header)
	})

	a.logger.Info("beautified records",
		zap.Int("records", len(records)),
		zap.Int("max_authors", b.MaxAuthors()),
		zap.Int("ambiguities", b.Ambiguities()),
		zap.Int("overlapping_cells", b.Overlaps()),
		zap.Int("columns", len(tbl.Header)))

	return records, tbl, nil
}

func (a *app) write(ctx context.Context, out outputs, records []citation.Record, tbl table.Table, st *storage.Storage) error {
	if out.csv != "" {
		if err := st.SaveTable(out.csv, tbl); err != nil {
			return fmt.Errorf("writing %s: %w", out.csv, err)
		}
	}
	if out.json != "" {
		if err := st.SaveRecords(out.json, records); err != nil {
			return fmt.Errorf("writing %s: %w", out.json, err)
		}
	}
	if out.sqlite != "" {
		if err := storage.ExportSQLite(ctx, out.sqlite, tbl); err != nil {
			return fmt.Errorf("writing %s: %w", out.sqlite, err)
		}
	}
	if out.stats != "" {
		if err := st.SaveStats(out.stats); err != nil {
			return fmt.Errorf("writing %s: %w", out.stats, err)
		}
	}
	return nil
}
