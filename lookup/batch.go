package lookup

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// BatchResult summarizes a batch lookup run, matching the fields the
// original builder's batch_lookup_hashes printed to its
// lookup_times%d.csv benchmark file.
type BatchResult struct {
	Count    int
	Hits     int
	Misses   int
	TotalNS  int64
	MeanNS   float64
}

// RunBatch issues count lookups for random prefixes of prefixLen
// bytes, optionally streaming a per-query CSV line (query,hit,duration_ns) to
// csvOut as it goes, and returns the aggregate summary.
func (e *Engine) RunBatch(ctx context.Context, count, prefixLen int, csvOut io.Writer) (BatchResult, error) {
	var w *csv.Writer
	if csvOut != nil {
		w = csv.NewWriter(csvOut)
		defer w.Flush()
		if err := w.Write([]string{"query", "hit", "duration_ns"}); err != nil {
			return BatchResult{}, fmt.Errorf("lookup: write csv header: %w", err)
		}
	}

	var res BatchResult
	res.Count = count
	for i := 0; i < count; i++ {
		prefix := make([]byte, prefixLen)
		if _, err := rand.Read(prefix); err != nil {
			return res, fmt.Errorf("lookup: generate random query prefix: %w", err)
		}

		started := time.Now()
		_, err := e.Lookup(ctx, prefix)
		elapsed := time.Since(started)

		hit := err == nil
		switch {
		case hit:
			res.Hits++
		case errors.Is(err, ErrNotFound):
			res.Misses++
		default:
			return res, fmt.Errorf("lookup: batch query %d: %w", i, err)
		}
		res.TotalNS += elapsed.Nanoseconds()

		if w != nil {
			if err := w.Write([]string{
				strconv.Itoa(i),
				strconv.FormatBool(hit),
				strconv.FormatInt(elapsed.Nanoseconds(), 10),
			}); err != nil {
				return res, fmt.Errorf("lookup: write csv row: %w", err)
			}
		}
	}
	if count > 0 {
		res.MeanNS = float64(res.TotalNS) / float64(count)
	}
	return res, nil
}

// SummaryLine formats res as the single-line benchmark summary the
// original builder appended after a batch run:
// count,hits,misses,total_ns,mean_ns
func (r BatchResult) SummaryLine() string {
	return fmt.Sprintf("%d,%d,%d,%d,%.2f", r.Count, r.Hits, r.Misses, r.TotalNS, r.MeanNS)
}
