package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fetchd/fetchd/internal/log"
)

// URLValidator defines the outbound request policy the fetcher needs.
// This is a consumer-defined interface; internal/security provides the
// production implementation.
type URLValidator interface {
	// Validate rejects URLs that must not be fetched. Called before any
	// network activity.
	Validate(rawURL string) error

	// Client returns the HTTP client to fetch with. The client must
	// follow redirects.
	Client() *http.Client
}

// Fetcher performs size-capped streaming downloads.
//
// A single fetch walks Init -> Probing -> Streaming -> Completed or
// Aborted: validate the scheme, probe with an advisory HEAD, stream
// the body to disk in fixed-size chunks against a running byte total,
// then verify the file. Any non-success exit from streaming deletes
// the partial file.
type Fetcher struct {
	val       URLValidator
	client    *http.Client
	userAgent string
	logger    log.Logger
}

// NewFetcher creates a Fetcher. userAgent may be empty, in which case
// requests present no override and the caller's config default should
// be passed instead.
func NewFetcher(val URLValidator, userAgent string, logger log.Logger) (*Fetcher, error) {
	if val == nil {
		return nil, fmt.Errorf("url validator is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Fetcher{
		val:       val,
		client:    val.Client(),
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

// Fetch downloads one URL to one resolved path. It always returns a
// structured Result; failures of any kind are reported inside it,
// never raised past the call boundary.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Result {
	emitter := EmitterFromContext(ctx)
	if emitter != nil {
		emitter.OnStart(req.URL)
	}

	result := f.fetch(ctx, req)

	if emitter != nil {
		if result.Success {
			emitter.OnComplete(req.URL, result.FileSize)
		} else {
			emitter.OnError(req.URL, result.Cause)
		}
	}
	return result
}

func (f *Fetcher) fetch(ctx context.Context, req Request) Result {
	start := time.Now()

	// Init: fail fast on a bad URL, no network call made.
	if err := f.val.Validate(req.URL); err != nil {
		f.logger.Error("download rejected", "url", req.URL, "error", err)
		return failure(req.Filename, fmt.Errorf("%w: %v", ErrInvalidURL, err))
	}

	maxBytes := req.MaxBytes
	if maxBytes <= 0 {
		maxBytes = int64(DefaultMaxSizeMB) * 1024 * 1024
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dir := req.Dir
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return failure(req.Filename, fmt.Errorf("%w: resolving download directory: %v", ErrFilesystem, err))
		}
	}
	// Idempotent; safe under concurrent creation by sibling tasks.
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return failure(req.Filename, fmt.Errorf("%w: creating %s: %v", ErrFilesystem, dir, err))
	}

	var name string
	if req.Filename != "" {
		name = SanitizeFilename(req.Filename)
	} else {
		name = FilenameFromURL(req.URL)
	}
	filePath := UniquePath(filepath.Join(dir, name))
	finalName := filepath.Base(filePath)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Probing: advisory only. A failed probe (network error, method
	// not allowed) falls through to streaming; only a parseable
	// oversized Content-Length aborts before body transfer.
	if err := f.probe(ctx, req.URL, maxBytes); err != nil {
		f.logger.Info("download aborted by probe", "url", req.URL, "error", err)
		return failure(finalName, err)
	}

	result := f.stream(ctx, req.URL, filePath, finalName, maxBytes)
	if result.Success {
		f.logger.Info("download complete",
			"url", req.URL,
			"file", result.FilePath,
			"bytes", result.FileSize,
			"content_type", result.ContentType,
			"duration", time.Since(start))
	} else {
		f.logger.Error("download failed", "url", req.URL, "error", result.Error)
	}
	return result
}

// probe issues the header-only pre-flight. It returns a non-nil error
// only for the size-exceeded case; every other outcome is advisory.
func (f *Fetcher) probe(ctx context.Context, rawURL string, maxBytes int64) error {
	headReq, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil
	}
	f.setHeaders(headReq)

	resp, err := f.client.Do(headReq)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	cl := resp.Header.Get("Content-Length")
	if cl == "" {
		return nil
	}
	size, err := strconv.ParseInt(cl, 10, 64)
	if err != nil {
		return nil
	}
	if size > maxBytes {
		return fmt.Errorf("%w: content-length %.2f MB exceeds maximum %.2f MB",
			ErrSizeExceeded, mb(size), mb(maxBytes))
	}
	return nil
}

// stream transfers the body to filePath in fixed-size chunks, aborting
// once the running total exceeds maxBytes. The partial file is deleted
// on every non-success exit.
func (f *Fetcher) stream(ctx context.Context, rawURL, filePath, finalName string, maxBytes int64) Result {
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return failure(finalName, fmt.Errorf("%w: %v", ErrTransport, err))
	}
	f.setHeaders(getReq)

	resp, err := f.client.Do(getReq)
	if err != nil {
		return failure(finalName, fmt.Errorf("%w: %v", ErrTransport, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(finalName, fmt.Errorf("%w: unexpected status %s", ErrTransport, resp.Status))
	}

	contentType := resp.Header.Get("Content-Type")

	out, err := os.Create(filePath) // #nosec G304 -- path built by the name resolver above
	if err != nil {
		return failure(finalName, fmt.Errorf("%w: creating %s: %v", ErrFilesystem, filePath, err))
	}

	// discard closes and deletes the partial file, returning the
	// classified failure unchanged.
	discard := func(cause error) Result {
		_ = out.Close()
		_ = os.Remove(filePath)
		return failure(finalName, cause)
	}

	var downloaded int64
	buf := make([]byte, chunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			downloaded += int64(n)
			if downloaded > maxBytes {
				return discard(fmt.Errorf("%w: transfer reached %.2f MB, maximum is %.2f MB",
					ErrSizeExceeded, mb(downloaded), mb(maxBytes)))
			}
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return discard(fmt.Errorf("%w: writing %s: %v", ErrFilesystem, filePath, writeErr))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return discard(fmt.Errorf("%w: reading response: %v", ErrTransport, readErr))
		}
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(filePath)
		return failure(finalName, fmt.Errorf("%w: closing %s: %v", ErrFilesystem, filePath, err))
	}

	// Completed: verify the artifact and report its on-disk size.
	info, err := os.Stat(filePath)
	if err != nil {
		return failure(finalName, fmt.Errorf("%w: file was not created: %v", ErrFilesystem, err))
	}

	return Result{
		FilePath:    filePath,
		FileName:    finalName,
		FileSize:    info.Size(),
		ContentType: contentType,
		Success:     true,
	}
}

// setHeaders presents a realistic browser identity. Some servers
// reject default HTTP client identifiers outright, so this is a
// behavioral requirement rather than cosmetics.
func (f *Fetcher) setHeaders(req *http.Request) {
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
}

func mb(n int64) float64 {
	return float64(n) / (1024 * 1024)
}
