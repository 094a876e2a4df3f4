// Package logs reads the daemon log file for `minutes daemon logs`.
//
// Last returns the trailing lines of a file with bounded memory, Since reads
// everything appended after a byte offset, and Follow polls Since until the
// context ends. A file that shrinks below the saved offset is treated as
// rotated and re-read from the start.
package logs
