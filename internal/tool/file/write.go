package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteRequest describes a write_file invocation.
type WriteRequest struct {
	Path      string
	Content   string
	MkdirAll  bool
	Overwrite bool
}

// Write stores content at req.Path atomically: the content goes to a
// uniquely named sibling temp file first and is then renamed into place,
// so an interruption mid-write never leaves a partially written target.
func Write(req WriteRequest) Result {
	if req.Path == "" {
		return refused("path is required")
	}

	if _, err := os.Stat(req.Path); err == nil {
		if !req.Overwrite {
			return refused("file already exists and overwrite is disabled: %s", req.Path)
		}
	} else if !os.IsNotExist(err) {
		return failed("stat %s: %v", req.Path, err)
	}

	dir := filepath.Dir(req.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if !req.MkdirAll {
			return refused("parent directory does not exist: %s", dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return failed("create parent directories for %s: %v", req.Path, err)
		}
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(req.Path), uuid.NewString()))
	if err := os.WriteFile(tmp, []byte(req.Content), 0o644); err != nil {
		return failed("write temp file for %s: %v", req.Path, err)
	}
	if err := os.Rename(tmp, req.Path); err != nil {
		os.Remove(tmp)
		return failed("rename into place %s: %v", req.Path, err)
	}

	return ok("wrote %d bytes to %s", len(req.Content), req.Path)
}
