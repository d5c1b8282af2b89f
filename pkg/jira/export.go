package jira

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/harrisonrobin/backlog/pkg/model"
)

// ReadFile reads a Jira CSV export. A missing file is not an error: it
// yields an empty snapshot so the run degrades to "nothing new".
func ReadFile(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: Jira export '%s' not found, using an empty snapshot", path)
			return model.NewTable(), nil
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ReadFiles reads several exports into one snapshot. When a key appears
// in more than one export, the first occurrence wins.
func ReadFiles(paths []string) (*model.Table, error) {
	all := model.NewTable()
	seen := make(map[string]struct{})
	for _, path := range paths {
		t, err := ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read Jira export '%s': %w", path, err)
		}
		for _, c := range t.Columns {
			all.EnsureColumn(c)
		}
		for _, r := range t.Rows {
			key := r[model.JiraKey]
			if _, dup := seen[key]; dup && key != "" {
				continue
			}
			seen[key] = struct{}{}
			all.Append(r)
		}
	}
	return all, nil
}

// Parse reads CSV rows with a header line. Repeated header names, which
// Jira uses for multi-valued fields such as Labels, are suffixed ".1",
// ".2" and so on.
func Parse(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return model.NewTable(), nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := uniqueColumns(header)

	t := model.NewTable(columns...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		row := make(model.Row, len(columns))
		for i, c := range columns {
			if i < len(record) {
				row[c] = strings.TrimSpace(record[i])
			}
		}
		t.Append(row)
	}
	return t, nil
}

func uniqueColumns(header []string) []string {
	counts := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		n := counts[h]
		counts[h] = n + 1
		if n > 0 {
			h = fmt.Sprintf("%s.%d", h, n)
		}
		out[i] = h
	}
	return out
}
