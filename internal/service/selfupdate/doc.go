// Package selfupdate replaces the running protonfetch binary with the
// newest published release.
package selfupdate
