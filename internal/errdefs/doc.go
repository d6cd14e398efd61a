// Package errdefs defines the failure taxonomy shared by all components.
//
// Errors are classified into network, extraction and link management kinds.
// Callers wrap causes with the tagging helpers and the CLI maps any tagged
// error to a non-zero exit status.
package errdefs
