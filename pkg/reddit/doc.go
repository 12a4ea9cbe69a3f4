// Package reddit implements the read-only Reddit API transport.
//
// The client authenticates with application-only OAuth2 credentials,
// paces every outbound request through a rate limiter, and exposes three
// operations: subreddit search (newest first, paginated), comment-tree
// expansion (flattened, "load more" placeholders discarded) and a cheap
// reachability check. Rate-limit responses surface as typed errors so the
// retry layer can apply extended backoff.
package reddit
