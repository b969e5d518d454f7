package core

// reader.go turns raw uploaded bytes into a header row plus ordered data
// rows. It tolerates the messy reality of exported spreadsheets:
//   - UTF-8 BOM and invalid byte sequences
//   - Blank leading rows before the header
//   - Ragged rows (too few or too many cells)
//
// Structural repairs never abort the parse; each one produces a warning
// so the preview stays maximally informative.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"
)

// utf8BOM is the byte order mark some spreadsheet exports prepend.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table holds one parsed CSV file: a header and the data rows below it,
// every row padded or truncated to the header width.
type table struct {
	Header   []string
	Rows     [][]string
	Warnings []string
}

// readTable parses raw CSV bytes into a table.
//
// The first row with at least one non-empty cell is the header; rows
// above it are skipped. Short rows are padded with empty cells and long
// rows truncated, each repair recorded as a warning. Returns
// ErrMalformedCSV when the data has no parseable header row.
func readTable(data []byte) (*table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	records, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	headerIdx := -1
	for i, row := range records {
		if !isEmptyRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedCSV)
	}

	t := &table{Header: trimCells(records[headerIdx])}
	width := len(t.Header)

	for i, row := range records[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		lineNum := headerIdx + i + 2 // 1-indexed source line

		switch {
		case len(row) < width:
			t.Warnings = append(t.Warnings,
				fmt.Sprintf("row %d: padded %d missing cells", lineNum, width-len(row)))
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		case len(row) > width:
			t.Warnings = append(t.Warnings,
				fmt.Sprintf("row %d: truncated %d extra cells", lineNum, len(row)-width))
			row = row[:width]
		}

		t.Rows = append(t.Rows, trimCells(row))
	}

	return t, nil
}

// columnIndex returns the position of the first header whose lowercased
// trimmed form equals name, or -1.
func (t *table) columnIndex(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode
// replacement character. Valid input is returned unchanged.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
