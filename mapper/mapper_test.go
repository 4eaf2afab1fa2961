package mapper

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stripe/locusmap/index"
	"github.com/stripe/locusmap/locus"
	"github.com/stripe/locusmap/tsv"
)

const sourceTable = "rs100\t1:5000\nrs200\t2:6000\nrs300\tX:7000\n"

func buildTestIndex(t *testing.T) *index.Index {
	path := filepath.Join(t.TempDir(), "index.bin")
	src := tsv.NewReader(strings.NewReader(sourceTable), "source.tsv")

	count, err := index.Build(src, path, index.BuildOptions{IDPrefix: "rs"})
	require.NoError(t, err)
	require.Equal(t, uint64(3), count)

	idx, err := index.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func runMap(t *testing.T, loc Locator, input string, opts Options) (string, *Stats, error) {
	var out bytes.Buffer
	dst := tsv.NewWriter(&out, "output.tsv")
	src := tsv.NewReader(strings.NewReader(input), "input.tsv")

	stats, err := Map(loc, src, dst, opts)
	return out.String(), stats, err
}

func TestMap(t *testing.T) {
	idx := buildTestIndex(t)

	out, stats, err := runMap(t, idx, "rs200\tsampleA\tgenotypeAA\nrs300\nrs100\tsampleB\t\tlast\n", Options{IDPrefix: "rs"})
	require.NoError(t, err)

	assert.Equal(t, "2:6000\tsampleA\tgenotypeAA\nX:7000\n1:5000\tsampleB\t\tlast\n", out)
	assert.Equal(t, int64(3), stats.Rows)
	assert.Equal(t, int64(3), stats.Written)
	assert.Equal(t, int64(0), stats.Missing)
	assert.Equal(t, int64(3), stats.Latency.TotalCount())
}

func TestMapPayloadVerbatim(t *testing.T) {
	idx := buildTestIndex(t)

	out, _, err := runMap(t, idx, "rs200\t sample A\tgeno\"AA\"\t\"quoted\"\n", Options{IDPrefix: "rs"})
	require.NoError(t, err)
	assert.Equal(t, "2:6000\t sample A\tgeno\"AA\"\t\"quoted\"\n", out)
}

func TestMapMissing(t *testing.T) {
	idx := buildTestIndex(t)

	_, stats, err := runMap(t, idx, "rs200\tsampleA\tgenotypeAA\nrs999\tsampleB\tgenotypeBB\n", Options{IDPrefix: "rs"})
	assert.ErrorIs(t, err, index.ErrNotFound)
	assert.Contains(t, err.Error(), "rs999")
	assert.Contains(t, err.Error(), "line 2")
	assert.Equal(t, int64(1), stats.Missing)
}

func TestMapSkipMissing(t *testing.T) {
	idx := buildTestIndex(t)

	out, stats, err := runMap(t, idx, "rs999\tsampleB\nrs200\tsampleA\n", Options{IDPrefix: "rs", SkipMissing: true})
	require.NoError(t, err)

	assert.Equal(t, "2:6000\tsampleA\n", out)
	assert.Equal(t, int64(2), stats.Rows)
	assert.Equal(t, int64(1), stats.Written)
	assert.Equal(t, int64(1), stats.Missing)
}

func TestMapBadIdentifier(t *testing.T) {
	idx := buildTestIndex(t)

	// Skipping misses doesn't extend to rows that can't be parsed.
	_, _, err := runMap(t, idx, "rs200\tok\nid200\tbad\n", Options{IDPrefix: "rs", SkipMissing: true})
	assert.ErrorIs(t, err, locus.ErrInvalidID)
	assert.Contains(t, err.Error(), "line 2")
}

type brokenLocator struct{}

func (brokenLocator) Get(id uint32) (locus.Record, error) {
	if id == 1 {
		return locus.Record{ID: 1, Chrom: 99, Pos: 1}, nil
	}

	return locus.Record{}, errors.New("disk on fire")
}

func TestMapLocatorErrors(t *testing.T) {
	_, _, err := runMap(t, brokenLocator{}, "rs1\tx\n", Options{IDPrefix: "rs", SkipMissing: true})
	assert.ErrorIs(t, err, locus.ErrInvalidChromosome)

	_, _, err = runMap(t, brokenLocator{}, "rs2\tx\n", Options{IDPrefix: "rs", SkipMissing: true})
	assert.EqualError(t, err, "line 1: looking up rs2: disk on fire")
}
