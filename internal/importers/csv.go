package importers

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// table is a fully parsed CSV document.
type table struct {
	headers []string
	rows    [][]string
	lines   []int // source line of each row
}

// PreviewHeaders returns the trimmed header row of a CSV document.
func PreviewHeaders(csvText string) ([]string, error) {
	reader := newReader(csvText)
	header, err := reader.Read()
	if err != nil {
		return nil, toParseError(err)
	}
	return trimAll(header), nil
}

// parseCSV reads the whole document. Any structural error aborts the parse.
func parseCSV(csvText string) (*table, error) {
	reader := newReader(csvText)

	header, err := reader.Read()
	if err != nil {
		return nil, toParseError(err)
	}

	t := &table{headers: trimAll(header)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, toParseError(err)
		}
		line, _ := reader.FieldPos(0)
		t.rows = append(t.rows, record)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

// columnIndex resolves header names to column positions. An exact match on
// the trimmed header wins; otherwise a case-insensitive match is used.
func (t *table) columnIndex(header string) (int, bool) {
	header = strings.TrimSpace(header)
	for i, h := range t.headers {
		if h == header {
			return i, true
		}
	}
	for i, h := range t.headers {
		if strings.EqualFold(h, header) {
			return i, true
		}
	}
	return 0, false
}

func newReader(csvText string) *csv.Reader {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(csvText, utf8BOM)))
	reader.FieldsPerRecord = -1 // Allow ragged rows
	return reader
}

func toParseError(err error) error {
	if err == io.EOF {
		return &ParseError{Err: errors.New("missing header row")}
	}
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
