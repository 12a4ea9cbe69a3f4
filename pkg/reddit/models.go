package reddit

import "encoding/json"

// thing is the generic Reddit API envelope: a kind tag plus payload.
// Kinds seen here: "Listing", "t1" (comment), "t3" (post), "more".
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// listing is the paginated container Reddit wraps results in
type listing struct {
	After    string  `json:"after"`
	Children []thing `json:"children"`
}

// listingEnvelope is a Listing-kinded thing with its data decoded
type listingEnvelope struct {
	Kind string  `json:"kind"`
	Data listing `json:"data"`
}

// Post is a submission as returned by the search endpoint (kind "t3")
type Post struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	Author        string  `json:"author"`
	Score         int     `json:"score"`
	CreatedUTC    float64 `json:"created_utc"`
	Subreddit     string  `json:"subreddit"`
	Permalink     string  `json:"permalink"`
	LinkFlairText string  `json:"link_flair_text"`
	NumComments   int     `json:"num_comments"`
}

// Comment is a single comment as returned by the comments endpoint
// (kind "t1"). Replies holds either an empty string or a nested Listing;
// it is decoded lazily during tree flattening.
type Comment struct {
	Author     string          `json:"author"`
	Body       string          `json:"body"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

// tokenResponse is the OAuth2 application-only token grant response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// aboutResponse is the subset of /r/{subreddit}/about used for verification
type aboutResponse struct {
	Kind string `json:"kind"`
	Data struct {
		DisplayName string `json:"display_name"`
	} `json:"data"`
}
