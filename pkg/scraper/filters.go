package scraper

import "strings"

// Filter holds the static criteria a candidate post must satisfy.
// All predicate methods are pure and total.
type Filter struct {
	Keywords   []string
	StartDate  int64 // inclusive, UTC epoch seconds
	EndDate    int64 // inclusive, UTC epoch seconds
	MinUpvotes int
}

// MatchesKeywords reports whether text contains any of the keywords,
// case-insensitively. There is no tokenization: "case" matches inside
// "showcase". Empty text never matches.
func MatchesKeywords(text string, keywords []string) bool {
	if text == "" {
		return false
	}

	textLower := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(textLower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// MatchesKeywords applies the filter's keyword list to text
func (f *Filter) MatchesKeywords(text string) bool {
	return MatchesKeywords(text, f.Keywords)
}

// InDateRange reports whether the timestamp falls inside the inclusive
// [StartDate, EndDate] window.
func (f *Filter) InDateRange(timestamp int64) bool {
	return f.StartDate <= timestamp && timestamp <= f.EndDate
}

// MeetsUpvoteThreshold reports whether the score reaches the minimum,
// inclusive.
func (f *Filter) MeetsUpvoteThreshold(score int) bool {
	return score >= f.MinUpvotes
}
