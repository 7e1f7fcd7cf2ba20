package download

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// placeholderName is used when nothing usable can be derived.
const placeholderName = "downloaded_file"

// maxFilenameLen is the common filesystem limit for a single name.
const maxFilenameLen = 255

// illegalChars matches characters that are unsafe in filenames on at
// least one supported filesystem, plus control characters.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename makes a candidate name safe to create on disk:
// illegal characters become underscores, leading/trailing dots and
// spaces are stripped, empty results fall back to a placeholder, and
// overlong names are truncated at the stem so the extension survives.
func SanitizeFilename(name string) string {
	sanitized := illegalChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, ". ")

	if sanitized == "" {
		sanitized = placeholderName
	}

	if len(sanitized) > maxFilenameLen {
		ext := filepath.Ext(sanitized)
		stem := strings.TrimSuffix(sanitized, ext)
		maxStem := maxFilenameLen - len(ext)
		if maxStem < 0 {
			maxStem = 0
		}
		if len(stem) > maxStem {
			stem = stem[:maxStem]
		}
		sanitized = stem + ext
	}

	return sanitized
}

// FilenameFromURL derives a download filename from a URL.
//
// Priority: the percent-decoded last path segment; then the query
// parameters "file", "filename", "name" (in that order); then the
// generic placeholder. Names without an extension get ".bin". The
// function never fails; a URL that cannot be parsed yields the
// placeholder.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return placeholderName + ".bin"
	}

	// u.Path is already percent-decoded by url.Parse.
	filename := path.Base(u.Path)
	if filename == "." || filename == "/" {
		filename = ""
	}

	if filename == "" {
		query := u.Query()
		for _, key := range []string{"file", "filename", "name"} {
			if v := query.Get(key); v != "" {
				filename = v
				break
			}
		}
	}

	if filename == "" {
		filename = placeholderName
	}

	if !strings.Contains(filename, ".") {
		filename += ".bin"
	}

	return SanitizeFilename(filename)
}

// UniquePath returns a path in the same directory that no existing
// file occupies, appending _1, _2, ... before the extension as needed.
//
// The check-then-use sequence is not atomic against writers outside
// this process; sibling batch tasks resolving the same base name at
// the same instant share the same narrow window. Accepted limitation.
func UniquePath(p string) string {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return p
	}

	dir := filepath.Dir(p)
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(filepath.Base(p), ext)

	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
