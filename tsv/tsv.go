// Package tsv streams headerless, tab-separated tables one row at a time.
// Tables whose names end in ".sz" are read and written as snappy framed
// streams.
package tsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
)

const snappySuffix = ".sz"

var ErrInvalidField = errors.New("field contains a tab or a newline")

// IsSnappy reports whether a table name denotes a snappy framed stream.
func IsSnappy(name string) bool {
	return strings.HasSuffix(name, snappySuffix)
}

// A Reader reads rows from a table. Fields are split on tabs and returned
// exactly as they appear, quotes and surrounding spaces included. Empty lines
// are skipped. The slice returned by Read is reused by the next call.
type Reader struct {
	buf    *bufio.Reader
	closer io.Closer
	line   int
	row    []string
}

// NewReader returns a Reader over r. If name ends in ".sz", r is decompressed
// with snappy first.
func NewReader(r io.Reader, name string) *Reader {
	rd := &Reader{}
	if closer, ok := r.(io.Closer); ok {
		rd.closer = closer
	}

	if IsSnappy(name) {
		r = snappy.NewReader(r)
	}

	rd.buf = bufio.NewReader(r)
	return rd
}

// Open opens a local table for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return NewReader(f, path), nil
}

// Read returns the next row, or io.EOF at the end of the table. A final line
// without a newline is still a row.
func (r *Reader) Read() ([]string, error) {
	for {
		line, err := r.buf.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil, io.EOF
		} else if err != nil && err != io.EOF {
			return nil, err
		}

		r.line++
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		r.row = r.row[:0]
		for {
			field, rest, found := strings.Cut(line, "\t")
			r.row = append(r.row, field)
			if !found {
				break
			}

			line = rest
		}

		return r.row, nil
	}
}

// Line returns the line number of the row most recently read. Skipped empty
// lines are counted.
func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}

	return nil
}

// A Writer writes rows to a table, joining fields with tabs. Fields are written
// as they are, without quoting, so they can't contain tabs or newlines.
type Writer struct {
	buf    *bufio.Writer
	snappy *snappy.Writer
	file   *os.File
}

// NewWriter returns a Writer to w. If name ends in ".sz", the output is snappy
// framed.
func NewWriter(w io.Writer, name string) *Writer {
	tw := &Writer{}
	if IsSnappy(name) {
		tw.snappy = snappy.NewBufferedWriter(w)
		w = tw.snappy
	}

	tw.buf = bufio.NewWriter(w)
	return tw
}

// Create creates (or truncates) a local table for writing.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	tw := NewWriter(f, path)
	tw.file = f
	return tw, nil
}

func (w *Writer) Write(row []string) error {
	for _, field := range row {
		if strings.ContainsAny(field, "\t\n") {
			return fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
	}

	for i, field := range row {
		if i > 0 {
			w.buf.WriteByte('\t')
		}

		w.buf.WriteString(field)
	}

	return w.buf.WriteByte('\n')
}

// Flush writes any buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	err := w.buf.Flush()
	if err != nil {
		return err
	}

	if w.snappy != nil {
		return w.snappy.Flush()
	}

	return nil
}

// Close flushes the writer, and closes the file if it was opened by Create.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.snappy != nil {
		if cerr := w.snappy.Close(); err == nil {
			err = cerr
		}
	}

	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}

	return err
}
