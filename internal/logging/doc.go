// Package logging configures the interlog tool's own slog output.
//
// Stderr gets a text handler when it is a terminal and JSON otherwise.
// With --debug, JSON logs are also written to a size-rotated file under
// ~/.interlog/logs/.
package logging
