package log

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyValue(t *testing.T) {
	kv := KeyValue{"records": 3, "index": "index.bin", "cmd": "index"}
	assert.Equal(t, `CANONICAL-LOCUSMAP-LINE: cmd="index" index="index.bin" records="3"`, kv.String())
}

func TestPrintf(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	Printf("mapped %d rows", 2)
	LogWithKVs(KeyValue{"rows": 2})

	assert.Equal(t, "CANONICAL-LOCUSMAP-LINE: msg=\"mapped 2 rows\"\nCANONICAL-LOCUSMAP-LINE: rows=\"2\"\n", buf.String())
}
