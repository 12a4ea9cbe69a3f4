package scraper

import (
	"redscraper/pkg/models"
	"redscraper/pkg/reddit"
)

// RedditClient defines the transport operations the scraper depends on
type RedditClient interface {
	Verify() error
	Search(subreddit, query string, limit int) ([]reddit.Post, error)
	FetchComments(subreddit, postID string) ([]reddit.Comment, error)
}

// Persister writes a run's records to the dataset, merging with any prior
// output. It reports how many genuinely new rows were added.
type Persister interface {
	Save(records []models.Record) (int, error)
}
