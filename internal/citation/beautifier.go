package citation

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fixedCells is the number of leading cells the scraper always emits.
const fixedCells = 4

type Beautifier struct {
	rules      Rules
	classifier *Classifier
	extractor  *Extractor
	logger     *zap.Logger
	workers    int

	maxAuthors atomic.Int64
	ambiguous  atomic.Int64
	overlaps   atomic.Int64
}

func NewBeautifier(rules Rules, workers int, logger *zap.Logger) *Beautifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &Beautifier{
		rules:      rules,
		classifier: NewClassifier(rules),
		extractor:  NewExtractor(rules),
		logger:     logger,
		workers:    workers,
	}
}

// MaxAuthors is the largest author list seen so far.
func (b *Beautifier) MaxAuthors() int {
	return int(b.maxAuthors.Load())
}

// Ambiguities counts the cells that lost to a later match of the same kind.
func (b *Beautifier) Ambiguities() int {
	return int(b.ambiguous.Load())
}

// Overlaps counts the cells that matched more than one field.
func (b *Beautifier) Overlaps() int {
	return int(b.overlaps.Load())
}

func (b *Beautifier) Beautify(raw RawRecord) (Record, error) {
	head, rest := splitFixed(raw)

	rec := Record{
		Handle:     head[0],
		PDFLink:    head[1],
		MatchCount: head[2],
		Snippet:    head[3],
		Source:     strings.Join(rest, b.rules.SourceSeparator),
	}

	rec.Years = ExtractYearRange(rec.Source)
	b.checkOverlaps(rec.Handle, rest)
	rec.Title = b.extractor.Title(b.find(rec.Handle, rest, KindTitle))
	rec.Journal = b.extractor.Journal(b.find(rec.Handle, rest, KindJournal))

	authors, err := b.extractor.Authors(b.find(rec.Handle, rest, KindAuthor))
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", rec.Handle, err)
	}
	rec.Authors = authors

	b.trackAuthors(len(authors))

	return rec, nil
}

// BeautifyAll beautifies a batch, keeping input order. A failing record
// stops the batch and no records are returned; with several failures the
// error reported is the one of the earliest record in input order.
func (b *Beautifier) BeautifyAll(ctx context.Context, raws []RawRecord) ([]Record, error) {
	records := make([]Record, len(raws))
	errs := make([]error, len(raws))

	// records after the earliest known failure are skipped
	var firstFailed atomic.Int64
	firstFailed.Store(int64(len(raws)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, raw := range raws {
		if gctx.Err() != nil || int64(i) > firstFailed.Load() {
			break
		}
		i, raw := i, raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if int64(i) > firstFailed.Load() {
				return nil
			}
			rec, err := b.Beautify(raw)
			if err != nil {
				errs[i] = err
				lowerFailure(&firstFailed, int64(i))
				return nil
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i := firstFailed.Load(); i < int64(len(raws)) {
		return nil, errs[i]
	}

	b.logger.Debug("beautified batch",
		zap.Int("records", len(records)),
		zap.Int("max_authors", b.MaxAuthors()),
		zap.Int("ambiguities", b.Ambiguities()))

	return records, nil
}

func lowerFailure(first *atomic.Int64, i int64) {
	for {
		cur := first.Load()
		if i >= cur || first.CompareAndSwap(cur, i) {
			return
		}
	}
}

func (b *Beautifier) find(handle string, cells []string, kind Kind) string {
	cell, ambiguous := b.classifier.Select(cells, kind)
	for _, a := range ambiguous {
		b.ambiguous.Add(1)
		b.logger.Warn("ambiguous classification",
			zap.String("handle", handle),
			zap.Stringer("kind", a.Kind),
			zap.String("saved_item", a.Previous),
			zap.String("item", a.Current))
	}
	return cell
}

// checkOverlaps warns about cells claimed by several predicates. Each field
// is still selected on its own, so such a cell may feed two fields.
func (b *Beautifier) checkOverlaps(handle string, cells []string) {
	for i, cell := range cells {
		kinds := b.classifier.Classify(cell, i).Kinds()
		if len(kinds) < 2 {
			continue
		}
		names := make([]string, len(kinds))
		for j, k := range kinds {
			names[j] = k.String()
		}
		b.overlaps.Add(1)
		b.logger.Warn("cell matches several fields",
			zap.String("handle", handle),
			zap.Strings("kinds", names),
			zap.String("item", cell))
	}
}

func (b *Beautifier) trackAuthors(n int) {
	for {
		cur := b.maxAuthors.Load()
		if int64(n) <= cur || b.maxAuthors.CompareAndSwap(cur, int64(n)) {
			return
		}
	}
}

func splitFixed(raw RawRecord) ([fixedCells]string, []string) {
	var head [fixedCells]string
	n := copy(head[:], raw)
	return head, raw[n:]
}
