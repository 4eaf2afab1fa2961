package index

import (
	"encoding/json"
	"errors"
	"os"
)

const manifestVersion = 1

var ErrWrongVersion = errors.New("wrong manifest version")

// A manifest sits alongside an index and describes it. Readers don't need it,
// but use it to reject out-of-range identifiers without touching the index.
type manifest struct {
	Version int    `json:"version"`
	Count   uint64 `json:"count"`
	Size    int64  `json:"size"`
	MinID   uint32 `json:"min_id"`
	MaxID   uint32 `json:"max_id"`
}

// ManifestPath returns the path of the manifest for the index at path.
func ManifestPath(path string) string {
	return path + ".manifest"
}

func readManifest(path string) (manifest, error) {
	m := manifest{}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}

	err = json.Unmarshal(bytes, &m)
	if err != nil {
		return m, err
	}

	if m.Version != manifestVersion {
		return m, ErrWrongVersion
	}

	return m, nil
}

func writeManifest(path string, m manifest) error {
	bytes, err := json.Marshal(m)
	if err != nil {
		return err
	}

	writer, err := os.Create(path)
	if err != nil {
		return err
	}

	_, err = writer.Write(bytes)
	if cerr := writer.Close(); err == nil {
		err = cerr
	}

	return err
}
