// Package wordcount implements the counting and formatting pipeline:
// a line-oriented text stream is split on a fixed set of ASCII delimiters,
// each fragment is lowercased and trimmed, and the resulting frequency
// table is serialised as one "word: count" line per entry.
//
// Nothing in this package keeps state between calls, so Count and
// Formatter.Format are safe to use from concurrent requests as long as
// each call works on its own reader and its own Counts value.
package wordcount
