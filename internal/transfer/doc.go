// Package transfer downloads release assets with size-based idempotence and
// per-chunk progress reporting.
package transfer
