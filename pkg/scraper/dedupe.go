package scraper

import "redscraper/pkg/models"

// DedupeRecords merges record lists from all groups into a single globally
// unique list by post ID, keeping the first occurrence of each identity and
// preserving encounter order. This is the authoritative uniqueness boundary
// for a single run's output.
func DedupeRecords(records []models.Record) []models.Record {
	seen := make(map[string]struct{}, len(records))
	unique := make([]models.Record, 0, len(records))

	for _, record := range records {
		if _, ok := seen[record.PostID]; ok {
			continue
		}
		seen[record.PostID] = struct{}{}
		unique = append(unique, record)
	}

	return unique
}
