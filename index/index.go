// Package index builds and reads locusmap index files.
//
// An index file is an 8 byte big-endian record count, followed by that many
// fixed-width records (see package locus), sorted by identifier:
//
//  offset 0      record count (uint64)
//  offset 8+9*i  identifier (uint32) | chromosome (uint8) | position (uint32)
//
// Index files are immutable once built. Every lookup is a positioned read, so
// any number of readers can share one file.
package index

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/bits"
	"os"

	"github.com/stripe/locusmap/locus"
)

var (
	ErrNotFound = errors.New("identifier not found in index")
	ErrCorrupt  = errors.New("corrupt index")
)

// An Index looks up records in an index file by identifier.
type Index struct {
	Path  string
	Count uint64

	r    io.ReaderAt
	file *os.File

	bounded bool
	minID   uint32
	maxID   uint32
}

// New returns an Index over count records read from r, which must hold a
// well-formed index including its header.
func New(r io.ReaderAt, count uint64) *Index {
	return &Index{r: r, Count: count}
}

// Open opens the index file at path for reading. It checks that the header
// agrees with the size of the file, and loads the manifest alongside it if
// there is one.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	index, err := open(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}

	return index, nil
}

func open(f *os.File, path string) (*Index, error) {
	header := make([]byte, HeaderSize)
	_, err := f.ReadAt(header, 0)
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s is too short to hold a header", ErrCorrupt, path)
	} else if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	count := deserializeHeader(header)
	if count > uint64(stat.Size())/locus.RecordSize || expectedSize(count) != stat.Size() {
		return nil, fmt.Errorf("%w: %s declares %d records but is %d bytes",
			ErrCorrupt, path, count, stat.Size())
	}

	index := New(f, count)
	index.Path = path
	index.file = f

	m, err := readManifest(ManifestPath(path))
	if err == nil {
		ok, err := index.matchesManifest(m, stat.Size())
		if err != nil {
			return nil, err
		} else if ok {
			index.bounded = true
			index.minID = m.MinID
			index.maxID = m.MaxID
		} else {
			log.Println("Ignoring stale manifest for", path)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Ignoring manifest for %s: %s", path, err)
	}

	return index, nil
}

// matchesManifest checks the manifest against the index itself. A matching
// count and size aren't enough, since another index with as many records could
// have been written over this one, so the first and last identifiers are read
// back as well.
func (index *Index) matchesManifest(m manifest, size int64) (bool, error) {
	if index.Count == 0 || m.Count != index.Count || m.Size != size {
		return false, nil
	}

	first, err := index.Record(0)
	if err != nil {
		return false, err
	}

	last, err := index.Record(index.Count - 1)
	if err != nil {
		return false, err
	}

	return first.ID == m.MinID && last.ID == m.MaxID, nil
}

// Get returns the record stored for id, or ErrNotFound. If the index holds
// more than one record for id, any one of them may be returned.
func (index *Index) Get(id uint32) (locus.Record, error) {
	if index.bounded && (id < index.minID || id > index.maxID) {
		return locus.Record{}, ErrNotFound
	}

	return index.search(id)
}

// search binary searches the records in [start, end]. Both bounds are
// inclusive and unsigned, so end is never decremented past zero.
func (index *Index) search(id uint32) (locus.Record, error) {
	if index.Count == 0 {
		return locus.Record{}, ErrNotFound
	}

	var buf [locus.RecordSize]byte
	start, end := uint64(0), index.Count-1

	// A binary search over n records reads at most floor(log2(n))+1 of them.
	for steps := bits.Len64(index.Count); steps > 0 && start <= end; steps-- {
		middle := start + (end-start)/2
		offset := recordOffset(middle)

		_, err := index.r.ReadAt(buf[:4], offset)
		if err != nil {
			return locus.Record{}, index.readError(middle, err)
		}

		stored := locus.DecodeRecord(buf[:]).ID
		switch {
		case stored == id:
			_, err = index.r.ReadAt(buf[4:], offset+4)
			if err != nil {
				return locus.Record{}, index.readError(middle, err)
			}

			return locus.DecodeRecord(buf[:]), nil
		case stored < id:
			start = middle + 1
		default:
			if middle == 0 {
				return locus.Record{}, ErrNotFound
			}

			end = middle - 1
		}
	}

	return locus.Record{}, ErrNotFound
}

// Record returns the record at virtual index i.
func (index *Index) Record(i uint64) (locus.Record, error) {
	if i >= index.Count {
		return locus.Record{}, fmt.Errorf("record %d out of range [0, %d)", i, index.Count)
	}

	var buf [locus.RecordSize]byte
	_, err := index.r.ReadAt(buf[:], recordOffset(i))
	if err != nil {
		return locus.Record{}, index.readError(i, err)
	}

	return locus.DecodeRecord(buf[:]), nil
}

func (index *Index) readError(i uint64, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: record %d of %d is truncated", ErrCorrupt, i, index.Count)
	}

	return fmt.Errorf("reading record %d: %w", i, err)
}

// Close closes the index file, if it was opened by Open.
func (index *Index) Close() error {
	if index.file != nil {
		return index.file.Close()
	}

	return nil
}
