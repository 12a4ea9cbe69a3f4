package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"redscraper/pkg/logger"
	"redscraper/pkg/models"
)

// utf8BOM makes the CSV open cleanly in spreadsheet applications
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Manager handles the persisted dataset: a single CSV file merged
// across runs with post_id as the merge key.
type Manager struct {
	path   string
	logger logger.Logger
}

// NewManager creates a storage manager for the given output path
func NewManager(path string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return &Manager{path: path, logger: log}, nil
}

// Path returns the dataset location
func (m *Manager) Path() string {
	return m.path
}

// Save merges records into the dataset and reports how many new rows were
// added. Records already present by post_id are skipped; existing rows are
// never reordered or rewritten. When nothing new remains the file is left
// untouched. The rewrite goes through a temp file and an atomic rename so
// a crash mid-write cannot lose the previous dataset.
func (m *Manager) Save(records []models.Record) (int, error) {
	if len(records) == 0 {
		m.logger.Warn("no data to save")
		return 0, nil
	}

	header, existing, err := m.readExisting()
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.WithField("file", m.path).Info("creating new dataset")
			if err := m.write(nil, nil, records); err != nil {
				return 0, err
			}
			return len(records), nil
		}
		return 0, fmt.Errorf("failed to read existing dataset: %w", err)
	}

	// An empty file carries no rows to merge against
	if len(header) == 0 {
		if err := m.write(nil, nil, records); err != nil {
			return 0, err
		}
		return len(records), nil
	}

	idCol := -1
	for i, name := range header {
		if name == "post_id" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return 0, fmt.Errorf("existing dataset %s has no post_id column", m.path)
	}

	// Existing identities are compared as strings to normalize types
	existingIDs := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		if idCol < len(row) {
			existingIDs[row[idCol]] = struct{}{}
		}
	}

	newRecords := make([]models.Record, 0, len(records))
	for _, record := range records {
		if _, ok := existingIDs[record.PostID]; !ok {
			newRecords = append(newRecords, record)
		}
	}

	if len(newRecords) == 0 {
		m.logger.Info("no new posts to add (all duplicates)")
		return 0, nil
	}

	if err := m.write(header, existing, newRecords); err != nil {
		return 0, err
	}

	m.logger.InfoWithFields("appended new posts to dataset", map[string]interface{}{
		"file":       m.path,
		"new_rows":   len(newRecords),
		"total_rows": len(existing) + len(newRecords),
	})

	return len(newRecords), nil
}

// readExisting loads the current dataset, returning its header and rows
func (m *Manager) readExisting() ([]string, [][]string, error) {
	file, err := os.Open(m.path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse row: %w", err)
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

// write rewrites the dataset: existing rows first, in their original order
// and remapped onto the canonical schema, followed by the new records.
func (m *Manager) write(existingHeader []string, existing [][]string, records []models.Record) error {
	tempFile := m.path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	writeErr := func() error {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}

		writer := csv.NewWriter(out)
		canonical := models.CSVHeader()

		if err := writer.Write(canonical); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}

		// Any column missing from an older file is emitted as an empty
		// cell so the schema is always complete.
		colIndex := make(map[string]int, len(existingHeader))
		for i, name := range existingHeader {
			colIndex[name] = i
		}
		for _, row := range existing {
			mapped := make([]string, len(canonical))
			for i, name := range canonical {
				if j, ok := colIndex[name]; ok && j < len(row) {
					mapped[i] = row[j]
				}
			}
			if err := writer.Write(mapped); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}

		for i := range records {
			if err := writer.Write(records[i].CSVRow()); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}

		writer.Flush()
		return writer.Error()
	}()

	closeErr := out.Close()
	if writeErr != nil {
		os.Remove(tempFile)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, m.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
