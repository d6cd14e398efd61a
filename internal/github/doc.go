// Package github implements the release host client: structured release
// metadata through the REST API plus the web surface used for the
// latest-release redirect probe, page scraping and asset downloads.
package github
