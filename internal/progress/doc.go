// Package progress defines the progress reporting contract consumed by the
// download and extraction stages, with console and discard implementations.
package progress
