package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileConfig is shared by the sinks that write a local file.
type FileConfig struct {
	Path string `json:"path"`
}

// writeFile creates path (and its directory) and passes it to fn. The file
// is removed again when fn fails.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return fn(f)
}
