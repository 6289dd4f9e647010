package parser

import (
	"github.com/zeebo/xxh3"

	"heinscrape/internal/citation"
)

// Dedupe drops records whose cells repeat an earlier record exactly.
// Overlapping exports of the same search produce such duplicates. The first
// occurrence is kept and order is preserved.
func Dedupe(records []citation.RawRecord) ([]citation.RawRecord, int) {
	seen := make(map[xxh3.Uint128]struct{}, len(records))
	out := make([]citation.RawRecord, 0, len(records))

	for _, r := range records {
		key := hashRecord(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	return out, len(records) - len(out)
}

func hashRecord(r citation.RawRecord) xxh3.Uint128 {
	h := xxh3.New()
	for _, cell := range r {
		_, _ = h.WriteString(cell)
		// unit separator keeps ["ab","c"] apart from ["a","bc"]
		_, _ = h.Write([]byte{0x1f})
	}
	return h.Sum128()
}
