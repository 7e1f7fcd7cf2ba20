package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"golang.org/x/time/rate"

	"github.com/fetchd/fetchd/internal/download"
	"github.com/fetchd/fetchd/internal/log"
)

// Tool name constants.
const (
	ToolDownloadSingleFile = "download_single_file"
	ToolDownloadFiles      = "download_files"
)

// DownloadSingleFileInput defines input for the download_single_file tool.
type DownloadSingleFileInput struct {
	URL            string `json:"url" jsonschema_description:"URL of the file to download"`
	OutputDir      string `json:"output_dir,omitempty" jsonschema_description:"Directory to save the file (defaults to the configured download directory)"`
	Filename       string `json:"filename,omitempty" jsonschema_description:"Custom filename (if not provided, derived from the URL)"`
	TimeoutSeconds int    `json:"timeout,omitempty" jsonschema_description:"Download timeout in seconds (default: 60)"`
	MaxSizeMB      int    `json:"max_size_mb,omitempty" jsonschema_description:"Maximum file size in MB (default: 500)"`
}

// DownloadFilesInput defines input for the download_files tool.
// Filenames are always derived from the URLs in batch mode.
type DownloadFilesInput struct {
	URLs           []string `json:"urls" jsonschema_description:"List of URLs to download"`
	OutputDir      string   `json:"output_dir,omitempty" jsonschema_description:"Directory to save downloaded files (defaults to the configured download directory)"`
	TimeoutSeconds int      `json:"timeout,omitempty" jsonschema_description:"Per-file download timeout in seconds (default: 60)"`
	MaxSizeMB      int      `json:"max_size_mb,omitempty" jsonschema_description:"Maximum file size in MB per file (default: 500)"`
}

// DownloadConfig carries the operator defaults applied when a tool
// call leaves a knob unset.
type DownloadConfig struct {
	// Dir is the default destination directory. Empty falls back to
	// the engine's fixed location under the user's home directory.
	Dir string

	// Timeout is the default per-download timeout.
	Timeout time.Duration

	// MaxBytes is the default size budget per download.
	MaxBytes int64

	// Parallelism bounds concurrent transfers in a batch.
	Parallelism int

	// RateLimit throttles batch request starts per second. Zero
	// disables throttling.
	RateLimit float64
}

// DownloadTools provides the file download tools. It implements both
// tool surfaces: MCP handlers call the methods directly, Genkit gets
// them via RegisterDownload.
type DownloadTools struct {
	fetcher *download.Fetcher
	cfg     DownloadConfig
	limiter *rate.Limiter
	logger  log.Logger
}

// NewDownload creates the download toolset.
func NewDownload(fetcher *download.Fetcher, cfg DownloadConfig, logger log.Logger) (*DownloadTools, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &DownloadTools{
		fetcher: fetcher,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// DownloadSingleFile downloads one URL to the local filesystem. The
// outcome is always structured: failures of any kind come back inside
// the Result, never as a Go error.
func (dt *DownloadTools) DownloadSingleFile(ctx *ai.ToolContext, input DownloadSingleFileInput) (Result, error) {
	dt.logger.Info("DownloadSingleFile called", "url", input.URL)

	res := dt.fetcher.Fetch(toolContext(ctx), download.Request{
		URL:      input.URL,
		Dir:      dt.dir(input.OutputDir),
		Filename: input.Filename,
		Timeout:  dt.timeout(input.TimeoutSeconds),
		MaxBytes: dt.maxBytes(input.MaxSizeMB),
	})

	if !res.Success {
		return Result{
			Status:  StatusError,
			Message: "Download failed",
			Data:    res,
			Error: &Error{
				Code:    errCode(res.Cause),
				Message: res.Error,
			},
		}, nil
	}

	return Result{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Downloaded %s (%d bytes)", res.FileName, res.FileSize),
		Data:    res,
	}, nil
}

// DownloadFiles downloads a list of URLs concurrently and reports one
// aggregated outcome. Items fail independently; the call itself only
// reports StatusError when every item failed.
func (dt *DownloadTools) DownloadFiles(ctx *ai.ToolContext, input DownloadFilesInput) (Result, error) {
	dt.logger.Info("DownloadFiles called", "urls", len(input.URLs))

	resp := dt.fetcher.FetchAll(toolContext(ctx), input.URLs, download.BatchOptions{
		Dir:         dt.dir(input.OutputDir),
		Timeout:     dt.timeout(input.TimeoutSeconds),
		MaxBytes:    dt.maxBytes(input.MaxSizeMB),
		Parallelism: dt.cfg.Parallelism,
		Limiter:     dt.limiter,
	})

	message := fmt.Sprintf("Downloaded %d of %d files", resp.SuccessCount, len(resp.Results))
	if len(resp.Results) > 0 && resp.SuccessCount == 0 {
		return Result{
			Status:  StatusError,
			Message: message,
			Data:    resp,
			Error: &Error{
				Code:    ErrCodeNetwork,
				Message: fmt.Sprintf("all %d downloads failed", resp.FailedCount),
			},
		}, nil
	}

	return Result{
		Status:  StatusSuccess,
		Message: message,
		Data:    resp,
	}, nil
}

// dir resolves the destination directory for one call.
func (dt *DownloadTools) dir(override string) string {
	if override != "" {
		return override
	}
	return dt.cfg.Dir
}

// timeout resolves the per-download timeout for one call.
func (dt *DownloadTools) timeout(seconds int) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return dt.cfg.Timeout
}

// maxBytes resolves the size budget for one call.
func (dt *DownloadTools) maxBytes(maxSizeMB int) int64 {
	if maxSizeMB > 0 {
		return int64(maxSizeMB) * 1024 * 1024
	}
	return dt.cfg.MaxBytes
}

// toolContext unwraps the Genkit tool context, tolerating nil for
// direct invocation in tests.
func toolContext(ctx *ai.ToolContext) context.Context {
	if ctx != nil && ctx.Context != nil {
		return ctx.Context
	}
	return context.Background()
}

// errCode maps an engine failure onto the tool error taxonomy.
func errCode(cause error) string {
	switch {
	case errors.Is(cause, download.ErrInvalidURL):
		return ErrCodeValidation
	case errors.Is(cause, download.ErrSizeExceeded):
		return ErrCodeSizeLimit
	case errors.Is(cause, download.ErrFilesystem):
		return ErrCodeIO
	default:
		return ErrCodeNetwork
	}
}
