package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pressindex/pressindex/pkg/errors"
)

// Load reads the metadata CSV and the article file each row references.
// Rows with an unparsable id and rows whose article file is missing are
// skipped with a warning; the corpus is built from whatever remains.
// Load fails only when the CSV itself cannot be read or when zero documents
// survive.
func Load(metadataPath, articlesDir string) (*Corpus, error) {
	f, err := os.Open(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("opening metadata file %s: %w", metadataPath, err)
	}
	defer f.Close()

	logger := slog.Default().With("component", "corpus-loader")
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading metadata header: %w", err)
	}
	cols, err := columnIndexes(header)
	if err != nil {
		return nil, fmt.Errorf("metadata file %s: %w", metadataPath, err)
	}

	c := &Corpus{docs: make(map[int]Document)}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed metadata row", "line", line, "error", err)
			c.stats.MalformedRows++
			continue
		}
		doc, ok := parseRow(row, cols)
		if !ok {
			logger.Warn("skipping metadata row with unparsable id", "line", line)
			c.stats.MalformedRows++
			continue
		}

		path := filepath.Join(articlesDir, doc.Filename)
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping document with missing article file",
				"doc_id", doc.ID,
				"file", path,
				"error", err,
			)
			c.stats.MissingDocuments++
			continue
		}
		doc.Content = string(content)
		c.add(doc)
	}

	if c.Len() == 0 {
		return nil, fmt.Errorf("loading corpus from %s: %w", metadataPath, pkgerrors.ErrEmptyCorpus)
	}

	logger.Info("corpus loaded",
		"documents", c.Len(),
		"malformed_rows", c.stats.MalformedRows,
		"missing_documents", c.stats.MissingDocuments,
	)
	return c, nil
}

type columns struct {
	id, title, url, date, filename int
}

func columnIndexes(header []string) (columns, error) {
	cols := columns{id: -1, title: -1, url: -1, date: -1, filename: -1}
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "id":
			cols.id = i
		case "title":
			cols.title = i
		case "url":
			cols.url = i
		case "date":
			cols.date = i
		case "filename":
			cols.filename = i
		}
	}
	if cols.id < 0 || cols.filename < 0 {
		return cols, fmt.Errorf("header must contain id and filename columns, got %v", header)
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (Document, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	id, err := strconv.Atoi(field(cols.id))
	if err != nil {
		return Document{}, false
	}
	filename := field(cols.filename)
	if filename == "" {
		return Document{}, false
	}
	return Document{
		ID:       id,
		Title:    field(cols.title),
		URL:      field(cols.url),
		Date:     field(cols.date),
		Filename: filename,
	}, true
}
