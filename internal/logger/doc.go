// Package logger provides a thin zap-based logging layer with context
// propagation.
//
// A global sugared logger backs the package-level helpers; callers may scope
// a named or field-carrying logger into a context and every helper resolves
// the logger from there.
package logger
