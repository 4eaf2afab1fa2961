package index

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pborman/uuid"
)

// PrependFile rewrites the file at path so that it starts with header,
// followed by its original content.
//
// The new file is staged next to the original, so that the final rename stays
// on the same filesystem. The rename replaces path in one step on POSIX
// systems; on platforms where it isn't atomic, a crash during the rename can
// leave path missing, and the index has to be rebuilt.
func PrependFile(header []byte, path string) (err error) {
	dir, base := filepath.Split(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", base, uuid.New()))

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if tmp != nil {
				tmp.Close()
			}

			os.Remove(tmpPath)
		}
	}()

	_, err = tmp.Write(header)
	if err != nil {
		return fmt.Errorf("writing header to %s: %w", tmpPath, err)
	}

	_, err = io.Copy(tmp, src)
	if err != nil {
		return fmt.Errorf("copying %s: %w", path, err)
	}

	err = tmp.Sync()
	if err != nil {
		return err
	}

	err = tmp.Close()
	tmp = nil
	if err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
