package download

import "errors"

// Failure classes for a download. Results carry the human-readable
// message on the wire; these sentinels let in-process callers and
// tests classify outcomes with errors.Is.
var (
	// ErrInvalidURL marks a malformed or non-http(s) URL. Surfaced
	// before any network activity.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrSizeExceeded marks a download aborted by the size budget,
	// either at the pre-flight probe or mid-stream. The wrapped message
	// always includes the offending size.
	ErrSizeExceeded = errors.New("size limit exceeded")

	// ErrTransport marks connection failures, timeouts, and
	// non-success HTTP statuses after redirects.
	ErrTransport = errors.New("transfer failed")

	// ErrFilesystem marks an unwritable destination or a file missing
	// after a nominally successful stream.
	ErrFilesystem = errors.New("filesystem error")
)
