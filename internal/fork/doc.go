// Package fork defines the supported Proton product lines and their version
// tag grammars.
//
// Each fork knows its repository coordinate, archive container format, asset
// naming rule and the names of the three stable links it maintains. Version
// tags parse into totally ordered keys used for top-3 selection.
package fork
