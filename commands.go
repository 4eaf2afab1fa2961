package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/stripe/locusmap/backend"
	"github.com/stripe/locusmap/index"
	"github.com/stripe/locusmap/log"
	"github.com/stripe/locusmap/mapper"
	"github.com/stripe/locusmap/tsv"
)

// runIndex builds an index at indexPath from the source table at sourceURI.
func runIndex(config locusmapConfig, s *stats, sourceURI, indexPath string) error {
	start := time.Now()

	src, err := openTable(config, sourceURI)
	if err != nil {
		return err
	}
	defer src.Close()

	count, err := index.Build(src, indexPath, index.BuildOptions{
		IDPrefix: config.IDPrefix,
		Lock:     config.LockIndex,
	})
	if err != nil {
		return fmt.Errorf("building index from %s: %w", sourceURI, err)
	}

	elapsed := time.Since(start)
	s.count("index.records", int64(count))
	s.duration("index.duration", elapsed)
	log.LogWithKVs(log.KeyValue{
		"cmd":      "index",
		"source":   sourceURI,
		"index":    indexPath,
		"records":  count,
		"duration": elapsed,
	})

	return nil
}

// runMap rewrites the table at inputURI to outputPath, resolving identifiers
// with the index at indexPath. A failed run removes its partial output.
func runMap(config locusmapConfig, s *stats, inputURI, indexPath, outputPath string) (err error) {
	start := time.Now()

	idx, err := index.Open(indexPath)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer idx.Close()

	src, err := openTable(config, inputURI)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := tsv.Create(outputPath)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}

		if err != nil {
			os.Remove(outputPath)
		}
	}()

	ms, err := mapper.Map(idx, src, dst, mapper.Options{
		IDPrefix:    config.IDPrefix,
		SkipMissing: config.Map.SkipMissing,
	})
	s.mapped(ms)
	if err != nil {
		return fmt.Errorf("mapping %s: %w", inputURI, err)
	}

	elapsed := time.Since(start)
	s.duration("map.duration", elapsed)
	log.LogWithKVs(log.KeyValue{
		"cmd":           "map",
		"input":         inputURI,
		"index":         indexPath,
		"output":        outputPath,
		"rows":          ms.Rows,
		"written":       ms.Written,
		"missing":       ms.Missing,
		"lookup_p50_us": ms.Latency.ValueAtQuantile(50),
		"lookup_p99_us": ms.Latency.ValueAtQuantile(99),
		"lookup_max_us": ms.Latency.Max(),
		"duration":      elapsed,
	})

	return nil
}

// openTable opens a table from a local path or an s3:// URI.
func openTable(config locusmapConfig, uri string) (*tsv.Reader, error) {
	source, err := backend.ParseSource(uri)
	if err != nil {
		return nil, err
	}

	var b backend.Backend
	if source.Scheme == "s3" {
		b, err = s3Setup(config, source.Bucket)
		if err != nil {
			return nil, err
		}
	} else {
		b = backend.NewLocalBackend("")
	}

	r, err := b.Open(source.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", b.DisplayPath(source.Path), err)
	}

	return tsv.NewReader(r, source.Path), nil
}

func s3Setup(config locusmapConfig, bucket string) (*backend.S3Backend, error) {
	awsConfig := aws.NewConfig()
	if config.S3.Region != "" {
		awsConfig.WithRegion(config.S3.Region)
	}

	if config.S3.AccessKeyId != "" {
		creds := credentials.NewStaticCredentials(config.S3.AccessKeyId, config.S3.SecretAccessKey, "")
		awsConfig.WithCredentials(creds)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}

	return backend.NewS3Backend(bucket, config.S3.MaxRetries, s3.New(sess)), nil
}
