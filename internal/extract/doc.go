// Package extract unpacks release archives (gzip or xz compressed tarballs)
// with traversal-safe paths and staged, all-or-nothing commits.
package extract
