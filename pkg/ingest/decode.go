package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format selects the decoder for a source
type Format int

const (
	FormatAuto Format = iota
	FormatSheet
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatSheet:
		return "xlsx"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// ParseFormat accepts "auto", "xlsx"/"sheet" and "json"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "xlsx", "xlsm", "sheet", "excel":
		return FormatSheet, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatAuto, fmt.Errorf("unknown source format %q", s)
}

var (
	errEmptyDocument = errors.New("empty document")
	errUnknownFormat = errors.New("cannot detect source format")
	errTrailingData  = errors.New("unexpected data after JSON array")
	zipMagic         = []byte("PK\x03\x04")
)

// Row is one raw record keyed by header or JSON field name. Line is the 1-based
// sheet row (the header is line 1) or JSON array position.
type Row struct {
	Line   int
	Values map[string]any
}

// DetectFormat guesses the format from the source name, then from content
func DetectFormat(name string, data []byte) (Format, error) {
	if u, err := url.Parse(name); err == nil && u.Path != "" {
		name = u.Path
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatSheet, nil
	case ".json":
		return FormatJSON, nil
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatSheet, nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		return FormatJSON, nil
	}
	return FormatAuto, errUnknownFormat
}

// DecodeSheet reads the named sheet, or the first one when sheet is empty.
// The header row provides the keys; missing cells become "" and blank rows
// are skipped.
func DecodeSheet(r io.Reader, sheet string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return []Row{}, nil
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(cells)-1)
	for i, line := range cells[1:] {
		if isBlank(line) {
			continue
		}
		values := make(map[string]any, len(header))
		for col, key := range header {
			if key == "" {
				continue
			}
			cell := ""
			if col < len(line) {
				cell = line[col]
			}
			values[key] = cell
		}
		rows = append(rows, Row{Line: i + 2, Values: values})
	}
	return rows, nil
}

// DecodeJSON reads a top-level array of objects and nothing after it. Numbers
// are kept as json.Number so identifiers do not lose digits.
func DecodeJSON(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyDocument
		}
		return nil, fmt.Errorf("failed to decode JSON array: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	rows := make([]Row, 0, len(raw))
	for i, values := range raw {
		if values == nil {
			return nil, fmt.Errorf("element %d is not an object", i)
		}
		rows = append(rows, Row{Line: i + 1, Values: values})
	}
	return rows, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
