package scraper

import (
	"fmt"

	"redscraper/pkg/config"
	"redscraper/pkg/logger"
	"redscraper/pkg/models"
	"redscraper/pkg/reddit"
	"redscraper/pkg/retry"
)

// Scraper orchestrates the sequential collection run: one subreddit at a
// time, one keyword at a time, each query issued synchronously through the
// rate-limited transport.
type Scraper struct {
	client    RedditClient
	persister Persister
	config    *config.Config
	filter    *Filter
	extractor *Extractor
	logger    logger.Logger
}

// New creates a Scraper with an explicit transport handle; there is no
// package-level client state.
func New(cfg *config.Config, client RedditClient, persister Persister, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	start, end, err := cfg.DateWindow()
	if err != nil {
		return nil, fmt.Errorf("invalid date window: %w", err)
	}

	filter := &Filter{
		Keywords:   cfg.Search.Keywords,
		StartDate:  start,
		EndDate:    end,
		MinUpvotes: cfg.Search.MinUpvotes,
	}

	return &Scraper{
		client:    client,
		persister: persister,
		config:    cfg,
		filter:    filter,
		extractor: NewExtractor(filter, log),
		logger:    log,
	}, nil
}

// Run executes a full collection run: verify the transport, search every
// subreddit, dedupe across groups and persist. A setup or persistence
// failure is returned; everything in between is contained and logged.
func (s *Scraper) Run() error {
	if err := s.client.Verify(); err != nil {
		s.logger.WithError(err).Error("Reddit API is not accessible")
		return fmt.Errorf("reddit api not accessible: %w", err)
	}

	s.logger.InfoWithFields("starting collection run", map[string]interface{}{
		"subreddits":  s.config.Search.Subreddits,
		"keywords":    s.config.Search.Keywords,
		"start_date":  s.config.Search.StartDate,
		"end_date":    s.config.Search.EndDate,
		"min_upvotes": s.config.Search.MinUpvotes,
		"output":      s.config.Output.File,
	})

	var collected []models.Record
	for _, subreddit := range s.config.Search.Subreddits {
		collected = append(collected, s.SearchSubreddit(subreddit)...)
	}

	unique := DedupeRecords(collected)
	s.logger.InfoWithFields("collection finished", map[string]interface{}{
		"total_matched": len(collected),
		"total_unique":  len(unique),
	})

	if len(unique) == 0 {
		s.logger.Warn("no posts found matching the criteria")
		return nil
	}

	added, err := s.persister.Save(unique)
	if err != nil {
		// A failed write would silently lose the run's findings
		s.logger.WithError(err).Error("failed to persist records")
		return fmt.Errorf("failed to persist records: %w", err)
	}

	if added == 0 {
		s.logger.Info("no new data, dataset unchanged")
	} else {
		s.logger.WithField("new_rows", added).Info("dataset updated")
	}

	return nil
}

// SearchSubreddit runs one query per configured keyword against a single
// subreddit and extracts qualifying records. A candidate surfacing under
// two keywords is extracted twice; extraction is pure, so the duplicate
// records are identical and removed later by DedupeRecords. A failed
// keyword query is logged and skipped without aborting the rest.
func (s *Scraper) SearchSubreddit(subreddit string) []models.Record {
	log := s.logger.WithField("subreddit", subreddit)
	log.Info("searching subreddit")

	// Coverage accounting only: tracks how many distinct candidates any
	// keyword surfaced, not whether they were already extracted.
	seen := make(map[string]struct{})
	var records []models.Record

	for _, keyword := range s.config.Search.Keywords {
		kwLog := log.WithField("keyword", keyword)
		kwLog.Debug("issuing search query")

		posts, err := retry.DoWithResult(func() ([]reddit.Post, error) {
			return s.client.Search(subreddit, keyword, s.config.Search.ResultLimit)
		}, retry.TransportConfig(s.config.RateLimit.MaxRetries, s.config.RateLimit.RetryDelay, kwLog))
		if err != nil {
			kwLog.WithError(err).Warn("search failed, skipping keyword")
			continue
		}

		matched := 0
		for _, post := range posts {
			seen[post.ID] = struct{}{}

			if record := s.extractor.Extract(s.toCandidate(subreddit, post)); record != nil {
				records = append(records, *record)
				matched++
			}
		}

		kwLog.InfoWithFields("keyword query finished", map[string]interface{}{
			"results": len(posts),
			"matched": matched,
		})
	}

	log.InfoWithFields("subreddit finished", map[string]interface{}{
		"candidates": len(seen),
		"matched":    len(records),
	})

	return records
}

// toCandidate maps a transport post onto the extractor's narrow contract,
// wiring the lazy reply accessor to the comment endpoint.
func (s *Scraper) toCandidate(subreddit string, post reddit.Post) models.Candidate {
	return models.Candidate{
		ID:           post.ID,
		Title:        post.Title,
		Body:         post.Selftext,
		Author:       post.Author,
		Score:        post.Score,
		CreatedUTC:   int64(post.CreatedUTC),
		Subreddit:    post.Subreddit,
		Permalink:    post.Permalink,
		Flair:        post.LinkFlairText,
		CommentCount: post.NumComments,
		FetchReplies: func() ([]models.Reply, error) {
			comments, err := s.client.FetchComments(subreddit, post.ID)
			if err != nil {
				return nil, err
			}
			replies := make([]models.Reply, 0, len(comments))
			for _, comment := range comments {
				replies = append(replies, models.Reply{
					Author:     comment.Author,
					Body:       comment.Body,
					Score:      comment.Score,
					CreatedUTC: int64(comment.CreatedUTC),
				})
			}
			return replies, nil
		},
	}
}
