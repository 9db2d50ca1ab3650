// Package conv provides checked integer conversions for values written to
// or read from data file headers.
package conv
