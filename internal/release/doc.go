// Package release resolves a fork and an optional explicit tag to a concrete
// downloadable asset, trying structured metadata before page scraping.
package release
