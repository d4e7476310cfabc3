// Package progress turns byte-level transfer events into human readable
// progress: percentage math that tolerates unknown sizes, a structured log
// reporter, a terminal progress bar and an io.Writer adapter that feeds them.
package progress
