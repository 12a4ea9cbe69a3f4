// Package ratelimit provides rate limiting for outbound Reddit requests.
//
// FixedInterval enforces the mandatory per-request delay of the sequential
// scraper; TokenBucket offers a request-budget mode for callers that prefer
// an N-per-period limit instead.
package ratelimit
