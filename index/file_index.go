package index

import (
	"encoding/binary"

	"github.com/stripe/locusmap/locus"
)

// HeaderSize is the size of the record count at the start of every index file.
const HeaderSize = 8

// recordOffset returns the byte offset of the record at virtual index i.
func recordOffset(i uint64) int64 {
	return HeaderSize + int64(i)*locus.RecordSize
}

// expectedSize returns the size of a well-formed index holding count records.
func expectedSize(count uint64) int64 {
	return recordOffset(count)
}

func serializeHeader(count uint64) []byte {
	b := make([]byte, HeaderSize)
	binary.BigEndian.PutUint64(b, count)
	return b
}

func deserializeHeader(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
