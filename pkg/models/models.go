package models

// DeletedAuthor is the sentinel used for posts and comments whose author
// is no longer available.
const DeletedAuthor = "[deleted]"

// Candidate is a raw fetched post before filtering. It carries exactly the
// fields the extractor reads, so the extractor depends on a narrow contract
// rather than the transport's full response surface.
type Candidate struct {
	ID           string
	Title        string
	Body         string
	Author       string // empty when the author was deleted
	Score        int
	CreatedUTC   int64 // seconds since epoch, UTC
	Subreddit    string
	Permalink    string
	Flair        string
	CommentCount int

	// FetchReplies lazily expands the candidate's comment tree, already
	// flattened and with "load more" placeholders discarded. May be nil
	// when the candidate is known to have no comments.
	FetchReplies func() ([]Reply, error)
}

// Reply is a nested comment-like response to a Candidate.
type Reply struct {
	Author     string // empty when the author was deleted
	Body       string
	Score      int
	CreatedUTC int64
}

// Record is the flattened, filtered, persisted representation of a
// qualifying post. It is created once at extraction time and never
// mutated afterwards; PostID is the merge and dedupe key.
type Record struct {
	PostID       string
	Title        string
	Author       string
	Content      string
	Upvotes      int
	Timestamp    int64
	Date         string // UTC, "YYYY-MM-DD HH:MM:SS"
	Subreddit    string
	URL          string
	Flair        string
	CommentCount int
	TopComments  string // serialized reply summaries, empty when none
}
