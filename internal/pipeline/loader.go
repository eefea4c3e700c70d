package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/model"
)

// StdinPath names standard input as a manifest source
const StdinPath = "-"

// Loader reads manifest files with a size limit
type Loader struct {
	maxBytes int64
	stdin    io.Reader
}

// NewLoader creates a new Loader; maxBytes <= 0 disables the limit
func NewLoader(maxBytes int64) *Loader {
	return &Loader{maxBytes: maxBytes, stdin: os.Stdin}
}

// Load reads the manifest at path, or standard input for "-".
// Failures are InvalidManifest diagnostics wrapping the I/O error.
func (l *Loader) Load(path string) ([]byte, error) {
	var r io.Reader
	if path == StdinPath {
		r = l.stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, l.fail(path, "cannot read manifest", err)
		}
		defer f.Close()
		r = f
	}

	if l.maxBytes > 0 {
		// Read one byte past the limit to detect oversized input
		r = io.LimitReader(r, l.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, l.fail(path, "cannot read manifest", err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, l.fail(path, fmt.Sprintf("manifest exceeds %d bytes", l.maxBytes), nil)
	}
	return data, nil
}

func (l *Loader) fail(path, msg string, err error) error {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &diag.Diagnostic{
		Pos:      model.Pos{File: path},
		Category: diag.InvalidManifest,
		Msg:      msg,
		Err:      err,
	}
}
