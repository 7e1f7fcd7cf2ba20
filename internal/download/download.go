package download

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// chunkSize is the streaming read granularity. The running byte
	// total is checked against the budget after every chunk.
	chunkSize = 8 * 1024

	// DefaultMaxSizeMB is the size budget applied when a request does
	// not set one.
	DefaultMaxSizeMB = 500

	// DefaultTimeout is the per-download timeout applied when a request
	// does not set one.
	DefaultTimeout = 60 * time.Second
)

// Request describes a single download. Requests are transient: built
// per call, discarded once the Result is returned.
type Request struct {
	// URL is the target. Must use an http or https scheme.
	URL string

	// Dir is the destination directory, created on demand with parents.
	// Empty means DefaultDir().
	Dir string

	// Filename optionally overrides name derivation from the URL. It is
	// sanitized, not trusted verbatim.
	Filename string

	// Timeout bounds the whole fetch including the probe. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// MaxBytes is the size budget. Zero means DefaultMaxSizeMB.
	MaxBytes int64
}

// Result reports the outcome of one attempted URL. Exactly one of
// {Success with FilePath+FileSize} or {!Success with Error} holds.
type Result struct {
	FilePath    string `json:"file_path"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type,omitempty"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`

	// Cause carries the classified failure for in-process callers;
	// errors.Is against the package sentinels works on it. Nil on
	// success. Not serialized.
	Cause error `json:"-"`
}

// Response aggregates a batch. Results are in request order and
// SuccessCount+FailedCount always equals len(Results).
type Response struct {
	Results      []Result `json:"results"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
}

// DefaultDir returns the fixed fallback destination under the user's
// home directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads", "fetchd"), nil
}

// failure builds a failed Result carrying the classified cause.
func failure(fileName string, cause error) Result {
	return Result{
		FileName: fileName,
		Success:  false,
		Error:    cause.Error(),
		Cause:    cause,
	}
}
