// Package links reconciles the three stable symlinks of a fork against the
// build directories found under the extraction root.
//
// The filesystem is the only durable state: every pass rescans the root,
// deduplicates directories by parsed version, selects the three newest and
// mutates only the links whose targets are wrong.
package links
