// Package fetcher orchestrates the fetch pipeline: release resolution,
// idempotent download, archive extraction and link convergence. It also
// backs the listing and removal commands.
package fetcher
