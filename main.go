package main

import (
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/stripe/locusmap/log"
)

var (
	locusmapVersion string
	idPrefixSet     bool

	configPath  = kingpin.Flag("config", "The config file to use. By default, either locusmap.conf in the local directory or /etc/locusmap.conf will be used, if they exist.").PlaceHolder("PATH").String()
	idPrefix    = kingpin.Flag("id-prefix", "The prefix stripped from identifiers. Overrides the config option of the same name.").PlaceHolder("PREFIX").Action(markIDPrefixSet).String()
	skipMissing = kingpin.Flag("skip-missing", "Drop rows whose identifier isn't in the index, instead of failing.").Bool()

	indexCommand = kingpin.Command("index", "Build an index from a table of identifiers and loci, sorted by identifier.")
	indexSource  = indexCommand.Arg("source", "The source table: a path, or an s3:// URI.").Required().String()
	indexPath    = indexCommand.Arg("index", "Where to write the index.").Required().String()

	mapCommand = kingpin.Command("map", "Rewrite a table, replacing the identifier in its first column with its locus.")
	mapInput   = mapCommand.Arg("input", "The table to rewrite: a path, or an s3:// URI.").Required().String()
	mapIndex   = mapCommand.Arg("index", "An index built with the index command.").Required().String()
	mapOutput  = mapCommand.Arg("output", "Where to write the rewritten table.").Required().String()
)

func main() {
	kingpin.Version("locusmap version " + locusmapVersion)
	command := kingpin.Parse()

	config, err := loadConfig(*configPath)
	if err == errNoConfig {
		// The defaults are fine, unless a specific file was asked for.
		if *configPath != "" {
			log.Fatal("No config file found at ", *configPath)
		}
	} else if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	config, err = validateConfig(applyFlags(config))
	if err != nil {
		log.Fatal("Invalid config: ", err)
	}

	s := newStats(config, command)
	switch command {
	case indexCommand.FullCommand():
		err = runIndex(config, s, *indexSource, *indexPath)
	case mapCommand.FullCommand():
		err = runMap(config, s, *mapInput, *mapIndex, *mapOutput)
	}

	s.close()
	if err != nil {
		log.Fatal(err)
	}
}

func markIDPrefixSet(*kingpin.ParseContext) error {
	idPrefixSet = true
	return nil
}

// applyFlags overrides config with any flags given on the command line.
func applyFlags(config locusmapConfig) locusmapConfig {
	// An empty prefix on the command line is still an override.
	if idPrefixSet {
		config.IDPrefix = *idPrefix
	}

	if *skipMissing {
		config.Map.SkipMissing = true
	}

	return config
}
