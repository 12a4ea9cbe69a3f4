// Package scraper implements the filter-and-dedupe pipeline.
//
// Pure predicate filters decide whether a candidate post qualifies, the
// extractor flattens qualifying posts (and up to five qualifying replies)
// into normalized records, the per-subreddit aggregator issues one search
// per keyword through the retrying transport, and DedupeRecords collapses
// the run's output to one record per post ID before persistence.
package scraper
