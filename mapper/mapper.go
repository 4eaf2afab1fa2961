// Package mapper rewrites tables keyed by identifier into tables keyed by
// locus, using an index to resolve each row.
package mapper

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/codahale/hdrhistogram"

	"github.com/stripe/locusmap/index"
	"github.com/stripe/locusmap/locus"
	"github.com/stripe/locusmap/tsv"
)

// A Locator resolves identifiers to records. *index.Index is a Locator; Get
// returns index.ErrNotFound for identifiers it doesn't hold.
type Locator interface {
	Get(id uint32) (locus.Record, error)
}

type Options struct {
	// IDPrefix is stripped from the first field of each row before parsing.
	IDPrefix string

	// SkipMissing drops rows whose identifier isn't in the index, instead of
	// failing. Either way, an unparseable identifier is an error.
	SkipMissing bool
}

// Stats summarizes a call to Map.
type Stats struct {
	Rows    int64
	Written int64
	Missing int64

	// Latency records the duration of each lookup, in microseconds.
	Latency *hdrhistogram.Histogram
}

func newStats() *Stats {
	return &Stats{
		Latency: hdrhistogram.New(0, int64(10*time.Second/time.Microsecond), 3),
	}
}

// Map reads every row of src, replaces its first field with the
// "chromosome:position" of the identifier it holds, and writes the row to dst.
// The remaining fields are passed through unchanged. Each row is looked up on
// its own, so src doesn't need to be sorted.
func Map(loc Locator, src *tsv.Reader, dst *tsv.Writer, opts Options) (*Stats, error) {
	stats := newStats()
	var out []string

	for {
		row, err := src.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return stats, err
		}

		stats.Rows++
		id, err := locus.ParseID(row[0], opts.IDPrefix)
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", src.Line(), err)
		}

		start := time.Now()
		r, err := loc.Get(id)
		stats.Latency.RecordValue(int64(time.Since(start) / time.Microsecond))

		if errors.Is(err, index.ErrNotFound) {
			stats.Missing++
			if opts.SkipMissing {
				log.Printf("Skipping line %d: %s not found", src.Line(), row[0])
				continue
			}

			return stats, fmt.Errorf("line %d: %s: %w", src.Line(), row[0], err)
		} else if err != nil {
			return stats, fmt.Errorf("line %d: looking up %s: %w", src.Line(), row[0], err)
		}

		l, err := r.Locus()
		if err != nil {
			return stats, fmt.Errorf("line %d: record for %s: %w", src.Line(), row[0], err)
		}

		out = append(out[:0], l)
		out = append(out, row[1:]...)
		err = dst.Write(out)
		if err != nil {
			return stats, err
		}

		stats.Written++
	}

	return stats, dst.Flush()
}
