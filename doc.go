// Package wordfilter scans word lists for words that fit a set of
// constraints: an exact length, a fixed-position pattern with '_' wildcards,
// characters that must not appear and characters that must appear.
//
// The constraints themselves live in package constraints; this package
// drives a LineSource through a Matcher and hands accepted lines to a
// Reporter.
package wordfilter
