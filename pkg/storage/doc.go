// Package storage persists normalized records to a CSV dataset.
//
// The dataset is merged across runs: records whose post_id already exists
// are skipped, existing rows keep their position and content, and new rows
// are appended at the end. The file is UTF-8 with a byte-order marker and
// a fixed column order for spreadsheet compatibility.
package storage
