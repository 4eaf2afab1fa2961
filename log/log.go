// Package log writes canonical key=value log lines, so that each command's
// summary can be picked out of the output and parsed.
package log

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

const LOCUSMAP_LOG_LINE = "CANONICAL-LOCUSMAP-LINE"

type KeyValue map[string]interface{}

func (x KeyValue) String() string {
	keys := make([]string, 0, len(x))
	for k := range x {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := make([]string, 0, len(x))
	for _, k := range keys {
		s = append(s, fmt.Sprintf("%s=%q", k, fmt.Sprint(x[k])))
	}

	return fmt.Sprintf("%s: %s", LOCUSMAP_LOG_LINE, strings.Join(s, " "))
}

func Println(v ...interface{}) {
	log.Println(KeyValue{"msg": fmt.Sprint(v...)})
}

func Printf(format string, v ...interface{}) {
	Println(fmt.Sprintf(format, v...))
}

func Fatal(v ...interface{}) {
	Println(v...)
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	Printf(format, v...)
	os.Exit(1)
}

func LogWithKVs(data KeyValue) {
	log.Println(data)
}
