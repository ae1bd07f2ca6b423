// Package filesystem adapts a local directory tree as an ingestion content
// source. Relative file paths are stable source IDs, modification times act
// as version markers, and only UTF-8 text files are parsed.
package filesystem
