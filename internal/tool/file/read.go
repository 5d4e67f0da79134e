package file

import (
	"fmt"
	"io"
	"os"
)

// DefaultMaxReadBytes bounds read_file output when the caller does not
// say otherwise.
const DefaultMaxReadBytes = 200000

// Read returns the file content at path, truncated to maxBytes with a
// notice when the file is larger. Missing or unreadable files are
// reported, not raised.
func Read(path string, maxBytes int) Result {
	if path == "" {
		return refused("path is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxReadBytes
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return missing("file does not exist: %s", path)
		}
		return failed("stat %s: %v", path, err)
	}
	if info.IsDir() {
		return refused("path is a directory: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return failed("open %s: %v", path, err)
	}
	defer f.Close()

	buf := make([]byte, maxBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return failed("read %s: %v", path, err)
	}

	content := string(buf[:n])
	if info.Size() > int64(maxBytes) {
		content += fmt.Sprintf("\n[truncated: showing first %d of %d bytes]", n, info.Size())
	}
	return Result{Kind: ResultOK, Message: content}
}
