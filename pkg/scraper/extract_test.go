package scraper

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"redscraper/pkg/logger"
	"redscraper/pkg/models"
)

func testFilter() *Filter {
	return &Filter{
		Keywords:   []string{"gambling", "case opening"},
		StartDate:  1000,
		EndDate:    2000,
		MinUpvotes: 5,
	}
}

func qualifyingCandidate() models.Candidate {
	return models.Candidate{
		ID:           "abc123",
		Title:        "My case opening experience",
		Body:         "long story about gambling",
		Author:       "alice",
		Score:        10,
		CreatedUTC:   1500,
		Subreddit:    "testsub",
		Permalink:    "/r/testsub/comments/abc123/story/",
		Flair:        "Discussion",
		CommentCount: 2,
	}
}

func TestExtractQualifyingCandidate(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())

	record := e.Extract(qualifyingCandidate())
	if record == nil {
		t.Fatal("Extract() = nil, want record")
	}

	if record.PostID != "abc123" {
		t.Errorf("PostID = %q", record.PostID)
	}
	if record.Author != "alice" {
		t.Errorf("Author = %q", record.Author)
	}
	if record.URL != "https://www.reddit.com/r/testsub/comments/abc123/story/" {
		t.Errorf("URL = %q", record.URL)
	}
	if record.Date != "1970-01-01 00:25:00" {
		t.Errorf("Date = %q, want UTC formatting of timestamp 1500", record.Date)
	}
	if record.TopComments != "" {
		t.Errorf("TopComments = %q, want empty for nil reply accessor", record.TopComments)
	}
}

func TestExtractDisqualification(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Candidate)
	}{
		{
			name:   "below upvote threshold",
			mutate: func(c *models.Candidate) { c.Score = 3 },
		},
		{
			name:   "before date window",
			mutate: func(c *models.Candidate) { c.CreatedUTC = 999 },
		},
		{
			name:   "after date window",
			mutate: func(c *models.Candidate) { c.CreatedUTC = 2001 },
		},
		{
			name: "no keyword in title or body",
			mutate: func(c *models.Candidate) {
				c.Title = "unrelated"
				c.Body = "also unrelated"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(testFilter(), logger.NewTestLogger())
			c := qualifyingCandidate()
			tt.mutate(&c)
			if record := e.Extract(c); record != nil {
				t.Errorf("Extract() = %+v, want nil", record)
			}
		})
	}
}

func TestExtractTitleOrBodyMatch(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())

	// Keyword only in body, not title
	c := qualifyingCandidate()
	c.Title = "no match here"
	c.Body = "but gambling is mentioned"
	if e.Extract(c) == nil {
		t.Error("body-only match should qualify")
	}

	// Keyword only in title, empty body
	c = qualifyingCandidate()
	c.Title = "case opening rant"
	c.Body = ""
	if e.Extract(c) == nil {
		t.Error("title-only match should qualify")
	}
}

func TestExtractDeletedAuthorSentinel(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())
	c := qualifyingCandidate()
	c.Author = ""

	record := e.Extract(c)
	if record == nil {
		t.Fatal("Extract() = nil")
	}
	if record.Author != "[deleted]" {
		t.Errorf("Author = %q, want [deleted]", record.Author)
	}
}

func TestExtractContentTruncation(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())
	c := qualifyingCandidate()
	c.Title = "gambling"
	c.Body = strings.Repeat("x", 3000)

	record := e.Extract(c)
	if record == nil {
		t.Fatal("Extract() = nil")
	}
	if len([]rune(record.Content)) != 2000 {
		t.Errorf("content length = %d runes, want 2000", len([]rune(record.Content)))
	}
	if record.Content != strings.Repeat("x", 2000) {
		t.Error("content is not the first 2000 characters of the body")
	}
}

func TestExtractIsPure(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())
	c := qualifyingCandidate()

	first := e.Extract(c)
	second := e.Extract(c)

	if first == nil || second == nil {
		t.Fatal("Extract() = nil")
	}
	if !reflect.DeepEqual(*first, *second) {
		t.Errorf("re-extraction differs:\n%+v\n%+v", *first, *second)
	}
}

func TestExtractReplyCapAndTruncation(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())

	c := qualifyingCandidate()
	c.FetchReplies = func() ([]models.Reply, error) {
		replies := make([]models.Reply, 12)
		for i := range replies {
			replies[i] = models.Reply{
				Author:     "user",
				Body:       "gambling " + strings.Repeat("y", 600),
				Score:      i,
				CreatedUTC: 1500,
			}
		}
		return replies, nil
	}

	record := e.Extract(c)
	if record == nil {
		t.Fatal("Extract() = nil")
	}

	var kept []replySummary
	if err := json.Unmarshal([]byte(record.TopComments), &kept); err != nil {
		t.Fatalf("TopComments is not valid JSON: %v", err)
	}
	if len(kept) != 5 {
		t.Fatalf("kept %d replies, want at most 5", len(kept))
	}
	for i, reply := range kept {
		if n := len([]rune(reply.Body)); n > 500 {
			t.Errorf("reply %d body length = %d runes, want <= 500", i, n)
		}
	}
}

func TestExtractReplyFiltering(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())

	c := qualifyingCandidate()
	c.FetchReplies = func() ([]models.Reply, error) {
		return []models.Reply{
			{Author: "a", Body: "", Score: 1, CreatedUTC: 1500},
			{Author: "b", Body: "[deleted]", Score: 2, CreatedUTC: 1500},
			{Author: "c", Body: "nothing relevant", Score: 3, CreatedUTC: 1500},
			{Author: "", Body: "gambling talk", Score: 4, CreatedUTC: 1501},
		}, nil
	}

	record := e.Extract(c)
	if record == nil {
		t.Fatal("Extract() = nil")
	}

	var kept []replySummary
	if err := json.Unmarshal([]byte(record.TopComments), &kept); err != nil {
		t.Fatalf("TopComments is not valid JSON: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("kept %d replies, want 1: %+v", len(kept), kept)
	}
	if kept[0].Author != "[deleted]" {
		t.Errorf("reply author = %q, want [deleted] sentinel", kept[0].Author)
	}
	if kept[0].Body != "gambling talk" {
		t.Errorf("reply body = %q", kept[0].Body)
	}
}

func TestExtractReplyCapAppliesBeforeFiltering(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())

	// The cap takes the first 5 replies, then filters them; a qualifying
	// reply beyond the cap is never considered.
	c := qualifyingCandidate()
	c.FetchReplies = func() ([]models.Reply, error) {
		replies := make([]models.Reply, 6)
		for i := 0; i < 5; i++ {
			replies[i] = models.Reply{Author: "u", Body: "off topic", Score: i, CreatedUTC: 1500}
		}
		replies[5] = models.Reply{Author: "u", Body: "gambling", Score: 5, CreatedUTC: 1500}
		return replies, nil
	}

	record := e.Extract(c)
	if record == nil {
		t.Fatal("Extract() = nil")
	}
	if record.TopComments != "" {
		t.Errorf("TopComments = %q, want empty (qualifying reply is past the cap)", record.TopComments)
	}
}

func TestExtractEmptyKeptListSerializesToEmptyString(t *testing.T) {
	e := NewExtractor(testFilter(), logger.NewTestLogger())

	c := qualifyingCandidate()
	c.FetchReplies = func() ([]models.Reply, error) {
		return []models.Reply{{Author: "a", Body: "irrelevant", Score: 1, CreatedUTC: 1500}}, nil
	}

	record := e.Extract(c)
	if record == nil {
		t.Fatal("Extract() = nil")
	}
	if record.TopComments != "" {
		t.Errorf(`TopComments = %q, want "" (not "[]")`, record.TopComments)
	}
}

func TestExtractReplyExpansionFailureIsNotDisqualifying(t *testing.T) {
	tl := logger.NewTestLogger()
	e := NewExtractor(testFilter(), tl)

	c := qualifyingCandidate()
	c.FetchReplies = func() ([]models.Reply, error) {
		return nil, errors.New("comment fetch exploded")
	}

	record := e.Extract(c)
	if record == nil {
		t.Fatal("reply expansion failure must not disqualify the candidate")
	}
	if record.TopComments != "" {
		t.Errorf("TopComments = %q, want empty after failed expansion", record.TopComments)
	}
	if !tl.HasMessage("WARN", "failed to expand replies") {
		t.Error("expansion failure was not logged")
	}
}
