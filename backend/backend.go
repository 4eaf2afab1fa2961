package backend

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// A Backend is somewhere source tables can be streamed from.
type Backend interface {
	Open(name string) (io.ReadCloser, error)
	DisplayPath(name string) string
}

// A basic backend for the local filesystem
type LocalBackend struct {
	path string
}

func NewLocalBackend(path string) *LocalBackend {
	return &LocalBackend{path}
}

func (lb *LocalBackend) Open(name string) (io.ReadCloser, error) {
	return os.Open(lb.DisplayPath(name))
}

func (lb *LocalBackend) DisplayPath(name string) string {
	return filepath.Join(lb.path, name)
}

// A Source is a parsed table location: either a local path, or an object in
// an S3 bucket.
type Source struct {
	Scheme string
	Bucket string
	Path   string
}

// ParseSource parses a path or a file:// or s3:// URI.
func ParseSource(uri string) (Source, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return Source{}, fmt.Errorf("parsing source %s: %w", uri, err)
	}

	switch parsed.Scheme {
	case "", "file":
		if parsed.Host != "" {
			return Source{}, fmt.Errorf("local source path is invalid (likely missing a '/'): %s", uri)
		}

		return Source{Scheme: "file", Path: parsed.Path}, nil
	case "s3":
		key := strings.TrimPrefix(parsed.Path, "/")
		if parsed.Host == "" || key == "" {
			return Source{}, fmt.Errorf("s3 source must name a bucket and a key: %s", uri)
		}

		return Source{Scheme: "s3", Bucket: parsed.Host, Path: key}, nil
	}

	return Source{}, fmt.Errorf("unsupported source scheme %q: %s", parsed.Scheme, uri)
}
