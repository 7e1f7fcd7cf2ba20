package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// RegisterDownload defines the download tools on a Genkit instance and
// returns the tool references for prompt binding.
func RegisterDownload(g *genkit.Genkit, dt *DownloadTools) ([]ai.Tool, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if dt == nil {
		return nil, fmt.Errorf("DownloadTools is required")
	}

	return []ai.Tool{
		genkit.DefineTool(g, ToolDownloadSingleFile,
			"Download a single file from a URL to the local filesystem. "+
				"Returns: saved file path, final filename, size in bytes, and content type. "+
				"Filenames are derived from the URL when not given, sanitized for the filesystem, "+
				"and suffixed with _1, _2, ... instead of overwriting existing files. "+
				"Use this to: fetch documents, archives, images, or any single resource. "+
				"Limits: downloads exceeding the size budget are aborted and the partial file is removed.",
			WithEvents(ToolDownloadSingleFile, dt.DownloadSingleFile)),
		genkit.DefineTool(g, ToolDownloadFiles,
			"Download multiple files from a list of URLs concurrently. "+
				"Returns: a per-URL result list in input order plus success and failure counts. "+
				"Each URL fails independently; one bad URL never aborts the rest. "+
				"Filenames are always derived from the URLs in batch mode. "+
				"Use this to: fetch a set of related resources in one call.",
			WithEvents(ToolDownloadFiles, dt.DownloadFiles)),
	}, nil
}
