package reddit

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// DefaultAuthURL hosts the OAuth2 token endpoint
	DefaultAuthURL = "https://www.reddit.com"
	// DefaultAPIURL hosts the authenticated API
	DefaultAPIURL = "https://oauth.reddit.com"

	// pageSize is the maximum number of results Reddit returns per page
	pageSize = 100
)

// tokenURL builds the application-only token grant endpoint
func tokenURL(base string) string {
	return base + "/api/v1/access_token"
}

// searchURL builds a subreddit-restricted search query, newest first,
// with no time restriction.
func searchURL(base, subreddit, query string, limit int, after string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("sort", "new")
	params.Set("t", "all")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	if after != "" {
		params.Set("after", after)
	}
	return fmt.Sprintf("%s/r/%s/search?%s", base, url.PathEscape(subreddit), params.Encode())
}

// commentsURL builds the comment-tree endpoint for a post
func commentsURL(base, subreddit, postID string) string {
	params := url.Values{}
	params.Set("raw_json", "1")
	params.Set("sort", "confidence")
	return fmt.Sprintf("%s/r/%s/comments/%s?%s",
		base, url.PathEscape(subreddit), url.PathEscape(postID), params.Encode())
}

// aboutURL builds the subreddit metadata endpoint used for verification
func aboutURL(base, subreddit string) string {
	return fmt.Sprintf("%s/r/%s/about?raw_json=1", base, url.PathEscape(subreddit))
}
