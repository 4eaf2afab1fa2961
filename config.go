package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultSearchPath = "locusmap.conf:/etc/locusmap.conf"

var errNoConfig = errors.New("no config file found")

type locusmapConfig struct {
	IDPrefix  string `toml:"id_prefix"`
	LockIndex bool   `toml:"lock_index"`

	Map     mapConfig     `toml:"map"`
	S3      s3Config      `toml:"s3"`
	Datadog datadogConfig `toml:"datadog"`
}

type mapConfig struct {
	SkipMissing bool `toml:"skip_missing"`
}

type s3Config struct {
	Region          string `toml:"region"`
	AccessKeyId     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	MaxRetries      int    `toml:"max_retries"`
}

type datadogConfig struct {
	Url string `toml:"url"`
}

func defaultConfig() locusmapConfig {
	return locusmapConfig{
		IDPrefix:  "rs",
		LockIndex: true,
		Map: mapConfig{
			SkipMissing: false,
		},
		S3: s3Config{
			Region:          "",
			AccessKeyId:     "",
			SecretAccessKey: "",
			MaxRetries:      3,
		},
		Datadog: datadogConfig{
			Url: "",
		},
	}
}

func loadConfig(searchPath string) (locusmapConfig, error) {
	if searchPath == "" {
		searchPath = defaultSearchPath
	}

	config := defaultConfig()
	paths := filepath.SplitList(searchPath)
	for _, path := range paths {
		md, err := toml.DecodeFile(path, &config)
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return config, err
		} else if len(md.Undecoded()) > 0 {
			return config, fmt.Errorf("found unrecognized properties: %v", md.Undecoded())
		}

		return config, nil
	}

	return config, errNoConfig
}

func validateConfig(config locusmapConfig) (locusmapConfig, error) {
	if strings.ContainsAny(config.IDPrefix, "0123456789\t") {
		return config, fmt.Errorf("id prefix can't contain digits or tabs: %q", config.IDPrefix)
	}

	if config.S3.MaxRetries < 0 {
		return config, fmt.Errorf("invalid s3 max_retries: %d", config.S3.MaxRetries)
	}

	if config.Datadog.Url != "" {
		if _, err := url.Parse("udp://" + config.Datadog.Url); err != nil {
			return config, fmt.Errorf("parsing datadog url: %s", err)
		}
	}

	return config, nil
}
