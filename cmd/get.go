package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fetchd/fetchd/internal/download"
)

var (
	getOutputDir string
	getFilename  string
	getTimeout   int
	getMaxSizeMB int
)

var getCmd = &cobra.Command{
	Use:   "get URL [URL...]",
	Short: "Download one or more URLs",
	Long: `Download files to the local filesystem.

With a single URL the filename can be overridden via --filename.
With multiple URLs the downloads run concurrently and filenames are
always derived from the URLs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet(args)
	},
}

func init() {
	getCmd.Flags().StringVarP(&getOutputDir, "output-dir", "o", "", "destination directory (default: configured download dir)")
	getCmd.Flags().StringVar(&getFilename, "filename", "", "custom filename (single URL only)")
	getCmd.Flags().IntVar(&getTimeout, "timeout", 0, "per-download timeout in seconds")
	getCmd.Flags().IntVar(&getMaxSizeMB, "max-size-mb", 0, "maximum file size in MB")
	rootCmd.AddCommand(getCmd)
}

// progressPrinter reports download lifecycle events on stderr, keeping
// stdout clean for the per-file result lines.
type progressPrinter struct{}

func (progressPrinter) OnStart(url string) {
	fmt.Fprintf(os.Stderr, "downloading %s\n", url)
}

func (progressPrinter) OnComplete(url string, size int64) {
	fmt.Fprintf(os.Stderr, "finished %s (%d bytes)\n", url, size)
}

func (progressPrinter) OnError(url string, err error) {
	fmt.Fprintf(os.Stderr, "failed %s: %v\n", url, err)
}

func runGet(urls []string) error {
	if getFilename != "" && len(urls) > 1 {
		return fmt.Errorf("--filename only applies to a single URL")
	}

	e, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = download.ContextWithEmitter(ctx, progressPrinter{})

	dir := e.cfg.Download.Dir
	if getOutputDir != "" {
		dir = getOutputDir
	}

	if len(urls) == 1 {
		res := e.fetcher.Fetch(ctx, download.Request{
			URL:      urls[0],
			Dir:      dir,
			Filename: getFilename,
			Timeout:  e.overrideTimeout(getTimeout),
			MaxBytes: e.overrideMaxBytes(getMaxSizeMB),
		})
		printResult(res)
		if !res.Success {
			return fmt.Errorf("download failed")
		}
		return nil
	}

	resp := e.fetcher.FetchAll(ctx, urls, download.BatchOptions{
		Dir:         dir,
		Timeout:     e.overrideTimeout(getTimeout),
		MaxBytes:    e.overrideMaxBytes(getMaxSizeMB),
		Parallelism: e.cfg.Download.Parallelism,
	})

	for _, res := range resp.Results {
		printResult(res)
	}
	fmt.Printf("%d succeeded, %d failed\n", resp.SuccessCount, resp.FailedCount)

	if resp.SuccessCount == 0 {
		return fmt.Errorf("all %d downloads failed", resp.FailedCount)
	}
	return nil
}

// printResult writes one per-file outcome line to stdout.
func printResult(res download.Result) {
	if res.Success {
		fmt.Printf("ok   %s (%d bytes)\n", res.FilePath, res.FileSize)
		return
	}
	fmt.Printf("fail %s: %s\n", res.FileName, res.Error)
}
