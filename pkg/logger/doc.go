// Package logger provides structured logging for the scraper.
//
// It wraps zerolog behind a small Logger interface with support for
// leveled logging, contextual fields, console and optional file output,
// and a global instance for convenience. Log output is the only
// diagnostic surface of a run: every skipped keyword, disqualified post
// and retry attempt is reported here.
package logger
