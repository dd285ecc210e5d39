// Package logtail reads and formats roster's structured log file.
//
// # Overview
//
// roster writes slog JSON records to a file because the TUI owns the
// terminal. The `roster logs` command uses this package to print the tail of
// that file in a compact, human-readable form.
//
// # Reading Log Files
//
// Read extracts the last maxLines lines with a ring buffer, so memory stays
// O(maxLines) regardless of file size and the file is scanned once. A missing
// file is not an error: Read returns nil, nil. A non-positive maxLines returns
// the whole file.
//
//	lines, err := logtail.Read(cfg.LogFile, 50)
//
// # Formatting
//
// FormatLine turns a JSON record into
//
//	14:32:15 INFO  query.fetch.success generation=4 kind=poll query=users
//
// Levels are colour-coded with lipgloss when color is true. Attributes are
// printed sorted by key; string values containing whitespace are quoted and
// nested values are re-encoded as compact JSON. Lines that are not JSON
// objects are passed through unchanged.
package logtail
