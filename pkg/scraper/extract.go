package scraper

import (
	"encoding/json"
	"time"

	"redscraper/pkg/logger"
	"redscraper/pkg/models"
)

const (
	// maxContentChars caps the persisted post body
	maxContentChars = 2000
	// maxReplies caps how many qualifying replies are kept per post
	maxReplies = 5
	// maxReplyChars caps each kept reply body
	maxReplyChars = 500
	// dateFormat is the human-readable UTC date column format
	dateFormat = "2006-01-02 15:04:05"
)

// replySummary is the serialized form of a kept reply
type replySummary struct {
	Author     string `json:"author"`
	Body       string `json:"body"`
	Score      int    `json:"score"`
	CreatedUTC int64  `json:"created_utc"`
}

// Extractor turns filtered candidates into normalized records
type Extractor struct {
	filter *Filter
	logger logger.Logger
}

// NewExtractor creates an extractor for the given filter
func NewExtractor(filter *Filter, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{filter: filter, logger: log}
}

// Extract returns the normalized record for a candidate, or nil when the
// candidate is disqualified. Callers cannot distinguish disqualification
// from an internal failure; the reason is logged instead. Extraction is a
// pure function of the candidate and filter, so re-extracting the same
// candidate yields an identical record.
func (e *Extractor) Extract(c models.Candidate) *models.Record {
	if !e.filter.MeetsUpvoteThreshold(c.Score) {
		return nil
	}
	if !e.filter.InDateRange(c.CreatedUTC) {
		return nil
	}
	if !e.filter.MatchesKeywords(c.Title) && !e.filter.MatchesKeywords(c.Body) {
		return nil
	}

	replies := e.collectReplies(c)

	return &models.Record{
		PostID:       c.ID,
		Title:        c.Title,
		Author:       authorOrDeleted(c.Author),
		Content:      truncateRunes(c.Body, maxContentChars),
		Upvotes:      c.Score,
		Timestamp:    c.CreatedUTC,
		Date:         time.Unix(c.CreatedUTC, 0).UTC().Format(dateFormat),
		Subreddit:    c.Subreddit,
		URL:          "https://www.reddit.com" + c.Permalink,
		Flair:        c.Flair,
		CommentCount: c.CommentCount,
		TopComments:  replies,
	}
}

// collectReplies expands the candidate's replies and serializes the kept
// ones. A failed expansion is logged and treated as zero replies; it never
// disqualifies the candidate.
func (e *Extractor) collectReplies(c models.Candidate) string {
	if c.FetchReplies == nil {
		return ""
	}

	all, err := c.FetchReplies()
	if err != nil {
		e.logger.WarnWithFields("failed to expand replies", map[string]interface{}{
			"post_id": c.ID,
			"error":   err.Error(),
		})
		return ""
	}

	if len(all) > maxReplies {
		all = all[:maxReplies]
	}

	var kept []replySummary
	for _, reply := range all {
		if reply.Body == "" || reply.Body == models.DeletedAuthor {
			continue
		}
		if !e.filter.MatchesKeywords(reply.Body) {
			continue
		}
		kept = append(kept, replySummary{
			Author:     authorOrDeleted(reply.Author),
			Body:       truncateRunes(reply.Body, maxReplyChars),
			Score:      reply.Score,
			CreatedUTC: reply.CreatedUTC,
		})
	}

	// An empty keep list serializes to the empty string, not "[]"
	if len(kept) == 0 {
		return ""
	}

	data, err := json.Marshal(kept)
	if err != nil {
		e.logger.WarnWithFields("failed to serialize replies", map[string]interface{}{
			"post_id": c.ID,
			"error":   err.Error(),
		})
		return ""
	}
	return string(data)
}

// authorOrDeleted maps an absent author to the deleted sentinel
func authorOrDeleted(author string) string {
	if author == "" {
		return models.DeletedAuthor
	}
	return author
}

// truncateRunes truncates s to at most n characters, not word boundaries
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
