// Package locus encodes the fixed-width records stored in a locusmap index, and
// converts between chromosome labels and their single-byte codes.
package locus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RecordSize is the size of one encoded record: a 4 byte identifier, a 1 byte
// chromosome code and a 4 byte position.
const RecordSize = 4 + 1 + 4

// DefaultIDPrefix is the textual prefix carried by dbSNP identifiers.
const DefaultIDPrefix = "rs"

const (
	chromX  uint8 = 23
	chromY  uint8 = 24
	chromMT uint8 = 25
)

var (
	ErrInvalidChromosome = errors.New("invalid chromosome")
	ErrInvalidID         = errors.New("invalid identifier")
	ErrInvalidPosition   = errors.New("invalid position")
)

// A Record is the unit stored in the index.
type Record struct {
	ID    uint32
	Chrom uint8
	Pos   uint32
}

// Encode writes the record to b, which must be at least RecordSize long. Every
// multi-byte field is big-endian, like the index header.
func (r Record) Encode(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], r.ID)
	b[4] = r.Chrom
	binary.BigEndian.PutUint32(b[5:9], r.Pos)
}

// DecodeRecord is the inverse of Encode.
func DecodeRecord(b []byte) Record {
	return Record{
		ID:    binary.BigEndian.Uint32(b[0:4]),
		Chrom: b[4],
		Pos:   binary.BigEndian.Uint32(b[5:9]),
	}
}

// Locus returns the record's "chromosome:position" string.
func (r Record) Locus() (string, error) {
	return FormatLocus(r.Chrom, r.Pos)
}

// ChromToCode maps a chromosome label to its code. Autosomes "1" through "22"
// map to themselves, and X, Y and MT map to 23, 24 and 25.
func ChromToCode(label string) (uint8, error) {
	switch label {
	case "X":
		return chromX, nil
	case "Y":
		return chromY, nil
	case "MT":
		return chromMT, nil
	}

	n, err := strconv.ParseUint(label, 10, 8)
	if err != nil || n < 1 || n > 22 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChromosome, label)
	}

	return uint8(n), nil
}

// CodeToChrom is the inverse of ChromToCode. A code outside 1-25 can only come
// from a corrupt index.
func CodeToChrom(code uint8) (string, error) {
	switch {
	case code >= 1 && code <= 22:
		return strconv.Itoa(int(code)), nil
	case code == chromX:
		return "X", nil
	case code == chromY:
		return "Y", nil
	case code == chromMT:
		return "MT", nil
	}

	return "", fmt.Errorf("%w: code %d", ErrInvalidChromosome, code)
}

// ParseID strips prefix from field and parses the rest as an unsigned 32-bit
// identifier. The prefix is required when it isn't empty.
func ParseID(field, prefix string) (uint32, error) {
	if !strings.HasPrefix(field, prefix) {
		return 0, fmt.Errorf("%w: %q is missing prefix %q", ErrInvalidID, field, prefix)
	}

	id, err := strconv.ParseUint(field[len(prefix):], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, field)
	}

	return uint32(id), nil
}

// FormatID renders an identifier with its prefix, so that ParseID(FormatID(id,
// p), p) == id.
func FormatID(id uint32, prefix string) string {
	return prefix + strconv.FormatUint(uint64(id), 10)
}

// ParseLocus parses a "chromosome:position" string.
func ParseLocus(s string) (uint8, uint32, error) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return 0, 0, fmt.Errorf("%w: %q has no ':'", ErrInvalidPosition, s)
	}

	chrom, err := ChromToCode(s[:i])
	if err != nil {
		return 0, 0, err
	}

	pos, err := strconv.ParseUint(s[i+1:], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}

	return chrom, uint32(pos), nil
}

// FormatLocus renders a chromosome code and position as "chromosome:position".
func FormatLocus(chrom uint8, pos uint32) (string, error) {
	label, err := CodeToChrom(chrom)
	if err != nil {
		return "", err
	}

	return label + ":" + strconv.FormatUint(uint64(pos), 10), nil
}
