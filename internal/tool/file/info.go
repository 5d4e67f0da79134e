package file

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultHeadBytes is how many leading bytes file_info reports by default.
const DefaultHeadBytes = 16

// InfoReport is the structured verification report for a path. A missing
// file still yields a report with Exists=false, never an error.
type InfoReport struct {
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	Size     int64  `json:"size,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Modified string `json:"modified,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
	Head     string `json:"head,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Info builds an existence/size/hash/leading-bytes report for path.
func Info(path string, headBytes int) Result {
	if path == "" {
		return refused("path is required")
	}
	if headBytes <= 0 {
		headBytes = DefaultHeadBytes
	}

	report := InfoReport{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			report.Note = fmt.Sprintf("stat failed: %v", err)
		}
		return renderReport(report)
	}

	report.Exists = true
	report.Size = info.Size()
	report.Mode = info.Mode().String()
	report.Modified = info.ModTime().UTC().Format(time.RFC3339)

	if info.IsDir() {
		report.Note = "path is a directory"
		return renderReport(report)
	}

	f, err := os.Open(path)
	if err != nil {
		report.Note = fmt.Sprintf("open failed: %v", err)
		return renderReport(report)
	}
	defer f.Close()

	head := make([]byte, headBytes)
	n, _ := io.ReadFull(f, head)
	report.Head = fmt.Sprintf("%q", head[:n])

	if _, err := f.Seek(0, io.SeekStart); err == nil {
		h := sha256.New()
		if _, err := io.Copy(h, f); err == nil {
			report.SHA256 = fmt.Sprintf("%x", h.Sum(nil))
		}
	}

	return renderReport(report)
}

func renderReport(report InfoReport) Result {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return failed("encode report for %s: %v", report.Path, err)
	}
	return Result{Kind: ResultOK, Message: string(b)}
}
