// Package timestamp provides the file modification time value used by tango
// to decide which side of a source/literate pair is newer.
//
// A Timestamp is seconds plus nanoseconds since the Unix epoch. Ordering is
// total at full precision. Because many filesystems round modification times
// to whole milliseconds (or coarser), callers that compare times taken from
// different files should use LowPrecisionEqual rather than Equal to decide
// that two files are "the same age".
package timestamp
