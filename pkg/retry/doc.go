// Package retry provides retry logic with configurable backoff strategies
// for the rate-limited Reddit transport. Failed queries are retried with a
// delay that grows as an attempt-indexed multiple of a base delay, switching
// to an extended exponential backoff when the remote service reports rate
// limiting. Exhausting the attempt cap surfaces the last error to the caller.
package retry
