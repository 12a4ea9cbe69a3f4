package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redscraper/pkg/logger"
	"redscraper/pkg/models"
)

func testRecord(id, title string) models.Record {
	return models.Record{
		PostID:       id,
		Title:        title,
		Author:       "alice",
		Content:      "body of " + id,
		Upvotes:      10,
		Timestamp:    1700000000,
		Date:         "2023-11-14 22:13:20",
		Subreddit:    "testsub",
		URL:          "https://www.reddit.com/r/testsub/comments/" + id + "/",
		CommentCount: 3,
	}
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out", "posts.csv")
	m, err := NewManager(path, logger.NewTestLogger())
	require.NoError(t, err)
	return m, path
}

func readCSV(t *testing.T, path string) ([]string, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM), "file must start with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	return rows[0], rows[1:]
}

func TestSaveCreatesFreshFile(t *testing.T) {
	m, path := newTestManager(t)

	added, err := m.Save([]models.Record{testRecord("x", "first"), testRecord("y", "second")})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	header, rows := readCSV(t, path)
	assert.Equal(t, models.CSVHeader(), header)
	require.Len(t, rows, 2)
	assert.Equal(t, "x", rows[0][0])
	assert.Equal(t, "y", rows[1][0])
}

func TestSaveIsIdempotent(t *testing.T) {
	m, path := newTestManager(t)
	records := []models.Record{testRecord("x", "first"), testRecord("y", "second")}

	_, err := m.Save(records)
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Second save of the same batch adds nothing and leaves the file alone
	added, err := m.Save(records)
	require.NoError(t, err)
	assert.Zero(t, added)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveMergesOnlyNewRows(t *testing.T) {
	m, path := newTestManager(t)

	_, err := m.Save([]models.Record{testRecord("x", "first"), testRecord("y", "second")})
	require.NoError(t, err)

	// Overlapping batch: y already exists, z is new
	changed := testRecord("y", "second CHANGED")
	added, err := m.Save([]models.Record{changed, testRecord("z", "third")})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	_, rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "x", rows[0][0])
	assert.Equal(t, "y", rows[1][0])
	assert.Equal(t, "z", rows[2][0])
	// The existing row for y keeps its original title
	assert.Equal(t, "second", rows[1][1])
}

func TestSaveEmptyBatchIsNoOp(t *testing.T) {
	m, path := newTestManager(t)

	added, err := m.Save(nil)
	require.NoError(t, err)
	assert.Zero(t, added)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSavePadsRowsFromOlderSchema(t *testing.T) {
	m, path := newTestManager(t)

	// Seed a file written before the flair and comment columns existed,
	// with its columns in a different order
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	legacy := append([]byte{}, utf8BOM...)
	legacy = append(legacy, []byte("title,post_id,upvotes\nold title,x,7\n")...)
	require.NoError(t, os.WriteFile(path, legacy, 0o644))

	added, err := m.Save([]models.Record{testRecord("y", "second")})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	header, rows := readCSV(t, path)
	assert.Equal(t, models.CSVHeader(), header)
	require.Len(t, rows, 2)

	// The legacy row is remapped onto the canonical columns
	assert.Equal(t, "x", rows[0][0])
	assert.Equal(t, "old title", rows[0][1])
	assert.Equal(t, "7", rows[0][4])
	assert.Equal(t, "", rows[0][2], "missing legacy column becomes an empty cell")
	assert.Equal(t, "y", rows[1][0])
}

func TestSaveOverEmptyFileWritesFresh(t *testing.T) {
	m, path := newTestManager(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	added, err := m.Save([]models.Record{testRecord("x", "first")})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	header, rows := readCSV(t, path)
	assert.Equal(t, models.CSVHeader(), header)
	assert.Len(t, rows, 1)
}

func TestSaveRejectsFileWithoutIDColumn(t *testing.T) {
	m, path := newTestManager(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("title,upvotes\nfoo,1\n"), 0o644))

	_, err := m.Save([]models.Record{testRecord("x", "first")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post_id")
}
