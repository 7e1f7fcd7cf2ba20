package cmd

import (
	"fmt"
	"time"

	"github.com/fetchd/fetchd/internal/config"
	"github.com/fetchd/fetchd/internal/download"
	"github.com/fetchd/fetchd/internal/log"
	"github.com/fetchd/fetchd/internal/security"
	"github.com/fetchd/fetchd/internal/tools"
)

// engine bundles the wired-up download stack a command needs.
type engine struct {
	cfg     *config.Config
	logger  log.Logger
	fetcher *download.Fetcher
	tools   *tools.DownloadTools
}

// setup loads configuration and builds the download engine. Every
// command goes through here so they all honor the same config file and
// FETCHD_* environment overrides.
func setup() (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	logger := log.New(log.Config{Level: level, JSON: cfg.Log.JSON})

	validator := security.NewURL(cfg.Security.BlockPrivateHosts)

	fetcher, err := download.NewFetcher(validator, cfg.Download.UserAgent, logger)
	if err != nil {
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}

	dt, err := tools.NewDownload(fetcher, tools.DownloadConfig{
		Dir:         cfg.Download.Dir,
		Timeout:     cfg.Timeout(),
		MaxBytes:    cfg.MaxBytes(),
		Parallelism: cfg.Download.Parallelism,
		RateLimit:   cfg.Download.RateLimit,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating download tools: %w", err)
	}

	return &engine{
		cfg:     cfg,
		logger:  logger,
		fetcher: fetcher,
		tools:   dt,
	}, nil
}

// overrideTimeout converts a --timeout flag value, keeping the
// configured default when the flag is unset.
func (e *engine) overrideTimeout(seconds int) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return e.cfg.Timeout()
}

// overrideMaxBytes converts a --max-size-mb flag value, keeping the
// configured default when the flag is unset.
func (e *engine) overrideMaxBytes(maxSizeMB int) int64 {
	if maxSizeMB > 0 {
		return int64(maxSizeMB) * 1024 * 1024
	}
	return e.cfg.MaxBytes()
}
