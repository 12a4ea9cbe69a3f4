package models

import "strconv"

// CSVHeader is the fixed column order of the persisted dataset. Existing
// files are always rewritten against this schema; columns a record cannot
// supply are emitted as empty cells.
func CSVHeader() []string {
	return []string{
		"post_id",
		"title",
		"author",
		"content",
		"upvotes",
		"timestamp",
		"date",
		"subreddit",
		"url",
		"flair",
		"comment_count",
		"top_comments",
	}
}

// CSVRow renders the record in CSVHeader order.
func (r *Record) CSVRow() []string {
	return []string{
		r.PostID,
		r.Title,
		r.Author,
		r.Content,
		strconv.Itoa(r.Upvotes),
		strconv.FormatInt(r.Timestamp, 10),
		r.Date,
		r.Subreddit,
		r.URL,
		r.Flair,
		strconv.Itoa(r.CommentCount),
		r.TopComments,
	}
}
