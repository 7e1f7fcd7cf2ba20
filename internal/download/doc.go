// Package download implements fetchd's file download engine: fetching
// one or many URLs to local storage under a hard size budget, with
// collision-safe naming and aggregated batch results.
//
// The engine has three parts, leaf first:
//
//   - name resolver (name.go): derives a filesystem-safe, unique
//     destination path from a URL or caller-supplied name
//   - streaming fetcher (fetcher.go): one HTTP GET with an advisory
//     size probe and a hard byte cutoff while streaming to disk
//   - batch orchestrator (batch.go): bounded concurrent fan-out of
//     independent fetches, aggregated into one ordered response
//
// Downloads are single-pass and best-effort: no resume, no checksums,
// no retries. A failed item is reported once inside its result; errors
// never escape a per-item boundary.
package download
