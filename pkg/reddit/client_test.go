package reddit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "redscraper/pkg/errors"
	"redscraper/pkg/logger"
	"redscraper/pkg/ratelimit"
)

// mockRedditServer mimics the Reddit OAuth and API endpoints
type mockRedditServer struct {
	server      *httptest.Server
	tokenCalls  int32
	searchCalls int32
	failSearch  bool
	rateLimited bool
}

func newMockRedditServer() *mockRedditServer {
	m := &mockRedditServer{}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.tokenCalls, 1)

		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-id" || pass != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "test-token",
			TokenType:   "bearer",
			ExpiresIn:   3600,
		})
	})

	mux.HandleFunc("/r/testsub/search", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.searchCalls, 1)

		if m.rateLimited {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"message": "Too Many Requests", "error": 429}`)
			return
		}
		if m.failSearch {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		after := r.URL.Query().Get("after")

		w.Header().Set("Content-Type", "application/json")
		if after == "" {
			fmt.Fprint(w, `{
				"kind": "Listing",
				"data": {
					"after": "t3_page2",
					"children": [
						{"kind": "t3", "data": {"id": "post1", "title": "First case opening story", "selftext": "body one", "author": "alice", "score": 42, "created_utc": 1731100000.0, "subreddit": "testsub", "permalink": "/r/testsub/comments/post1/first/", "link_flair_text": "Discussion", "num_comments": 3}},
						{"kind": "t3", "data": {"id": "post2", "title": "Second", "selftext": "", "author": "bob", "score": 7, "created_utc": 1731200000.0, "subreddit": "testsub", "permalink": "/r/testsub/comments/post2/second/", "num_comments": 0}}
					]
				}
			}`)
			return
		}
		fmt.Fprint(w, `{
			"kind": "Listing",
			"data": {
				"after": "",
				"children": [
					{"kind": "t3", "data": {"id": "post3", "title": "Third", "selftext": "", "author": "carol", "score": 1, "created_utc": 1731300000.0, "subreddit": "testsub", "permalink": "/r/testsub/comments/post3/third/", "num_comments": 0}}
				]
			}
		}`)
	})

	mux.HandleFunc("/r/testsub/comments/post1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"id": "post1"}}]}},
			{"kind": "Listing", "data": {"children": [
				{"kind": "t1", "data": {"author": "dave", "body": "top level one", "score": 5, "created_utc": 1731100100.0, "replies": {"kind": "Listing", "data": {"children": [
					{"kind": "t1", "data": {"author": "erin", "body": "nested reply", "score": 2, "created_utc": 1731100200.0, "replies": ""}}
				]}}}},
				{"kind": "t1", "data": {"author": "frank", "body": "top level two", "score": 3, "created_utc": 1731100300.0, "replies": ""}},
				{"kind": "more", "data": {"count": 12}}
			]}}
		]`)
	})

	mux.HandleFunc("/r/all/about", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"kind": "t5", "data": {"display_name": "all"}}`)
	})

	m.server = httptest.NewServer(mux)
	return m
}

func newTestClient(t *testing.T, m *mockRedditServer) *Client {
	t.Helper()
	client := NewClient(Credentials{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		UserAgent:    "redscraper-test/1.0",
	}, 5*time.Second, ratelimit.NewFixedInterval(0), logger.NewTestLogger())
	client.SetBaseURLs(m.server.URL, m.server.URL)
	return client
}

func TestClientVerify(t *testing.T) {
	m := newMockRedditServer()
	defer m.server.Close()

	client := newTestClient(t, m)
	require.NoError(t, client.Verify())
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.tokenCalls))
}

func TestClientVerifyBadCredentials(t *testing.T) {
	m := newMockRedditServer()
	defer m.server.Close()

	client := NewClient(Credentials{
		ClientID:     "wrong",
		ClientSecret: "wrong",
	}, 5*time.Second, ratelimit.NewFixedInterval(0), logger.NewTestLogger())
	client.SetBaseURLs(m.server.URL, m.server.URL)

	err := client.Verify()
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeAuth, errs.TypeOf(err))
}

func TestClientSearchPaginates(t *testing.T) {
	m := newMockRedditServer()
	defer m.server.Close()

	client := newTestClient(t, m)
	posts, err := client.Search("testsub", "case opening", 1000)
	require.NoError(t, err)

	require.Len(t, posts, 3)
	assert.Equal(t, "post1", posts[0].ID)
	assert.Equal(t, "First case opening story", posts[0].Title)
	assert.Equal(t, 42, posts[0].Score)
	assert.Equal(t, "Discussion", posts[0].LinkFlairText)
	assert.Equal(t, "post3", posts[2].ID)
	// Token is fetched once and reused across pages
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.tokenCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&m.searchCalls))
}

func TestClientSearchRespectsLimit(t *testing.T) {
	m := newMockRedditServer()
	defer m.server.Close()

	client := newTestClient(t, m)
	posts, err := client.Search("testsub", "case opening", 2)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.searchCalls))
}

func TestClientSearchRateLimited(t *testing.T) {
	m := newMockRedditServer()
	defer m.server.Close()
	m.rateLimited = true

	client := newTestClient(t, m)
	_, err := client.Search("testsub", "case opening", 10)
	require.Error(t, err)
	assert.True(t, errs.IsRateLimit(err), "rate limit must be distinguishable: %v", err)
}

func TestClientSearchServerError(t *testing.T) {
	m := newMockRedditServer()
	defer m.server.Close()
	m.failSearch = true

	client := newTestClient(t, m)
	_, err := client.Search("testsub", "case opening", 10)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeServerError, errs.TypeOf(err))
}

func TestClientFetchCommentsFlattens(t *testing.T) {
	m := newMockRedditServer()
	defer m.server.Close()

	client := newTestClient(t, m)
	comments, err := client.FetchComments("testsub", "post1")
	require.NoError(t, err)

	// Breadth-first: top-level comments precede nested replies, and the
	// "more" placeholder is dropped.
	require.Len(t, comments, 3)
	assert.Equal(t, "top level one", comments[0].Body)
	assert.Equal(t, "top level two", comments[1].Body)
	assert.Equal(t, "nested reply", comments[2].Body)
	assert.Equal(t, "erin", comments[2].Author)
}
