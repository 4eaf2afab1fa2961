package main

import (
	"fmt"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/stripe/locusmap/index"
	"github.com/stripe/locusmap/locus"
	"github.com/stripe/locusmap/tsv"
)

var (
	version string

	header = kingpin.Flag("header", "Only display the record count.").Short('c').Bool()
	prefix = kingpin.Flag("id-prefix", "The prefix to print before identifiers.").Default(locus.DefaultIDPrefix).String()

	path = kingpin.Arg("PATH", "Path to dump").Required().String()
)

func main() {
	kingpin.Version("locusmap-dump version " + version)
	kingpin.Parse()

	idx, err := index.Open(*path)
	if err != nil {
		fatal(err)
	}
	defer idx.Close()

	if *header {
		fmt.Println(idx.Count)
		return
	}

	w := tsv.NewWriter(os.Stdout, "")
	err = dump(idx, w, *prefix)
	if err == nil {
		err = w.Flush()
	}

	if err != nil {
		fatal(err)
	}
}

// dump writes every record in the index as a row of a source table, so that
// the output can be used to rebuild the index.
func dump(idx *index.Index, w *tsv.Writer, prefix string) error {
	row := make([]string, 2)
	for i := uint64(0); i < idx.Count; i++ {
		r, err := idx.Record(i)
		if err != nil {
			return err
		}

		row[0] = locus.FormatID(r.ID, prefix)
		row[1], err = r.Locus()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}

		err = w.Write(row)
		if err != nil {
			return err
		}
	}

	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
