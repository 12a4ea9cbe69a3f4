package reddit

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	errs "redscraper/pkg/errors"
	"redscraper/pkg/logger"
	"redscraper/pkg/ratelimit"
)

// Credentials holds the application-only OAuth2 client credentials
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// Client is a read-only Reddit API client. Every outbound request first
// waits on the rate limiter, so callers never need to pace themselves.
type Client struct {
	httpClient *http.Client
	authURL    string
	apiURL     string
	creds      Credentials
	limiter    ratelimit.Limiter
	logger     logger.Logger

	token       string
	tokenExpiry time.Time
}

// NewClient creates a new Reddit API client
func NewClient(creds Credentials, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.NewFixedInterval(0)
	}
	if creds.UserAgent == "" {
		creds.UserAgent = "redscraper/1.0"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		authURL:    DefaultAuthURL,
		apiURL:     DefaultAPIURL,
		creds:      creds,
		limiter:    limiter,
		logger:     log,
	}
}

// SetBaseURLs overrides the auth and API hosts, primarily for tests
func (c *Client) SetBaseURLs(authURL, apiURL string) {
	c.authURL = authURL
	c.apiURL = apiURL
}

// authenticate obtains an application-only bearer token
func (c *Client) authenticate() error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequest(http.MethodPost, tokenURL(c.authURL), strings.NewReader(form.Encode()))
	if err != nil {
		return errs.Newf(errs.ErrorTypeUnknown, 0, "failed to create token request: %v", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.FromStatusCode(resp.StatusCode, "token request failed")
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return errs.Newf(errs.ErrorTypeParsing, resp.StatusCode, "failed to decode token response: %v", err)
	}
	if token.AccessToken == "" {
		return errs.New(errs.ErrorTypeAuth, resp.StatusCode, "empty access token, check client credentials")
	}

	c.token = token.AccessToken
	// Refresh one minute early to avoid using a token at the edge of expiry
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)

	c.logger.DebugWithFields("obtained access token", map[string]interface{}{
		"expires_in": token.ExpiresIn,
	})

	return nil
}

// ensureToken authenticates when no valid token is held
func (c *Client) ensureToken() error {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}
	return c.authenticate()
}

// doRequest performs a single HTTP request after waiting on the rate limiter
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	c.limiter.Wait()

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Newf(errs.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// getJSON performs an authenticated GET and decodes the JSON response
func (c *Client) getJSON(rawURL string, target interface{}) error {
	if err := c.ensureToken(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return errs.Newf(errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Newf(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Rate-limit conditions must stay distinguishable for the retry layer
		message := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		if preview := bodyPreview(body); preview != "" {
			message = fmt.Sprintf("%s: %s", message, preview)
		}
		return errs.FromStatusCode(resp.StatusCode, message)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errs.Newf(errs.ErrorTypeParsing, resp.StatusCode, "failed to decode response: %v", err)
	}

	return nil
}

// bodyPreview returns a short single-line excerpt of an error body
func bodyPreview(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// Verify checks that the API is reachable and the credentials work by
// requesting metadata for a well-known subreddit.
func (c *Client) Verify() error {
	var about aboutResponse
	if err := c.getJSON(aboutURL(c.apiURL, "all"), &about); err != nil {
		return fmt.Errorf("reddit api verification failed: %w", err)
	}
	return nil
}

// Search queries a subreddit for posts matching the query, newest first,
// following pagination until limit results are collected or the listing
// is exhausted.
func (c *Client) Search(subreddit, query string, limit int) ([]Post, error) {
	var posts []Post
	after := ""

	for len(posts) < limit {
		size := limit - len(posts)
		if size > pageSize {
			size = pageSize
		}

		var envelope listingEnvelope
		if err := c.getJSON(searchURL(c.apiURL, subreddit, query, size, after), &envelope); err != nil {
			return nil, err
		}

		for _, child := range envelope.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			var post Post
			if err := json.Unmarshal(child.Data, &post); err != nil {
				return nil, errs.Newf(errs.ErrorTypeParsing, 0, "failed to decode post: %v", err)
			}
			posts = append(posts, post)
		}

		after = envelope.Data.After
		if after == "" || len(envelope.Data.Children) == 0 {
			break
		}
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// FetchComments retrieves the comment tree of a post and flattens it
// breadth-first (top-level comments before nested replies), discarding
// "load more" placeholders rather than following them.
func (c *Client) FetchComments(subreddit, postID string) ([]Comment, error) {
	var envelopes []listingEnvelope
	if err := c.getJSON(commentsURL(c.apiURL, subreddit, postID), &envelopes); err != nil {
		return nil, err
	}

	// The endpoint returns [post listing, comment listing]
	if len(envelopes) < 2 {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "unexpected comments response shape")
	}

	return flattenComments(envelopes[1].Data.Children), nil
}

// flattenComments walks a comment forest level by level, skipping
// "more" placeholders.
func flattenComments(children []thing) []Comment {
	var comments []Comment
	queue := children

	for len(queue) > 0 {
		child := queue[0]
		queue = queue[1:]

		if child.Kind != "t1" {
			continue
		}

		var comment Comment
		if err := json.Unmarshal(child.Data, &comment); err != nil {
			continue
		}

		// Replies is either an empty string or a nested listing
		if len(comment.Replies) > 0 && comment.Replies[0] == '{' {
			var nested listingEnvelope
			if err := json.Unmarshal(comment.Replies, &nested); err == nil {
				queue = append(queue, nested.Data.Children...)
			}
		}
		comment.Replies = nil

		comments = append(comments, comment)
	}

	return comments
}
