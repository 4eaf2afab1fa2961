package index

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/nightlyone/lockfile"

	"github.com/stripe/locusmap/locus"
	"github.com/stripe/locusmap/tsv"
)

var (
	ErrNotSorted = errors.New("the source table isn't sorted by identifier")
	errLocked    = errors.New("index is locked by another builder")
)

// BuildOptions configure Build.
type BuildOptions struct {
	// IDPrefix is stripped from each identifier before parsing.
	IDPrefix string

	// Lock makes Build hold a lock file next to the destination while it
	// writes, so that two builders can't clobber the same index.
	Lock bool
}

// Build reads rows of the form "<prefix><id>\t<chromosome>:<position>" from
// src, which must be sorted by identifier, and writes an index to path. It
// returns the number of records written.
//
// Records are written first, and the header is spliced onto the front once
// the count is known. If anything fails, the destination is removed.
func Build(src *tsv.Reader, path string, opts BuildOptions) (count uint64, err error) {
	if opts.Lock {
		unlock, err := lockIndex(path)
		if err != nil {
			return 0, err
		}
		defer unlock()
	}

	defer func() {
		if err != nil {
			os.Remove(path)
		}
	}()

	log.Println("Building index at", path)
	count, bounds, err := writeRecords(src, path, opts.IDPrefix)
	if err != nil {
		return 0, err
	}

	err = PrependFile(serializeHeader(count), path)
	if err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	m := manifest{
		Version: manifestVersion,
		Count:   count,
		Size:    expectedSize(count),
		MinID:   bounds.min,
		MaxID:   bounds.max,
	}

	// The index is usable without a manifest, so an old one must not survive
	// a failed write.
	manifestPath := ManifestPath(path)
	os.Remove(manifestPath)
	if werr := writeManifest(manifestPath, m); werr != nil {
		log.Printf("Error writing manifest for %s: %s", path, werr)
		os.Remove(manifestPath)
	}

	log.Printf("Wrote %d records to %s", count, path)
	return count, nil
}

type idBounds struct {
	min, max uint32
}

func writeRecords(src *tsv.Reader, path, prefix string) (count uint64, bounds idBounds, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, bounds, err
	}

	// The file must be flushed and closed before the header is prepended.
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	buf := make([]byte, locus.RecordSize)

	for {
		row, err := src.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return 0, bounds, err
		}

		r, err := parseSourceRow(row, prefix)
		if err != nil {
			return 0, bounds, fmt.Errorf("line %d: %w", src.Line(), err)
		}

		if count > 0 && r.ID < bounds.max {
			return 0, bounds, fmt.Errorf("line %d: %w: %s comes after %s", src.Line(), ErrNotSorted,
				locus.FormatID(r.ID, prefix), locus.FormatID(bounds.max, prefix))
		}

		if count == 0 {
			bounds.min = r.ID
		}

		r.Encode(buf)
		_, err = w.Write(buf)
		if err != nil {
			return 0, bounds, err
		}

		bounds.max = r.ID
		count++
	}

	return count, bounds, w.Flush()
}

func parseSourceRow(row []string, prefix string) (locus.Record, error) {
	if len(row) < 2 {
		return locus.Record{}, fmt.Errorf("%w: expected an identifier and a locus, got %d fields",
			locus.ErrInvalidPosition, len(row))
	}

	id, err := locus.ParseID(row[0], prefix)
	if err != nil {
		return locus.Record{}, err
	}

	chrom, pos, err := locus.ParseLocus(row[1])
	if err != nil {
		return locus.Record{}, err
	}

	return locus.Record{ID: id, Chrom: chrom, Pos: pos}, nil
}

func lockIndex(path string) (func(), error) {
	absPath, err := filepath.Abs(path + ".lock")
	if err != nil {
		return nil, err
	}

	lock, err := lockfile.New(absPath)
	if err != nil {
		return nil, err
	}

	err = lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s)", errLocked, absPath, err)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("Error releasing lock %s: %s", absPath, err)
		}
	}, nil
}
