// Package parser turns pasted spreadsheet text and CSV files into dataset cells.
// Non-numeric tokens are skipped rather than treated as errors, because pasted ranges
// routinely carry headers, blanks and currency decoration.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParsedCell is one numeric value extracted from the input together with the label
// that identifies its origin. The label becomes the cell's opaque Ref.
type ParsedCell struct {
	Ref   string
	Value float64
}

// ParsePasted extracts numbers from pasted text. Values may be separated by commas,
// tabs, spaces or newlines; anything that does not parse as a number is ignored.
// Refs are 1-based token positions ("r1", "r2", ...), which keeps them stable for a
// given paste.
func ParsePasted(text string) []ParsedCell {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ',', '\t', '\n', '\r', ' ', ';':
			return true
		}
		return false
	})

	var cells []ParsedCell
	pos := 0
	for _, field := range fields {
		v, err := strconv.ParseFloat(cleanToken(field), 64)
		if err != nil {
			continue
		}
		pos++
		cells = append(cells, ParsedCell{Ref: fmt.Sprintf("r%d", pos), Value: v})
	}
	return cells
}

// ParseCSV extracts one column of a CSV stream. column is the 1-based column index;
// rows whose cell in that column is not numeric (headers, blanks) are skipped. Refs
// are "<row>:<column>" using 1-based CSV coordinates, so a value maps back to its
// source line even when rows were skipped.
func ParseCSV(r io.Reader, column int) ([]ParsedCell, error) {
	if column < 1 {
		return nil, fmt.Errorf("column must be 1-based, got %d", column)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var cells []ParsedCell
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		row++

		if column > len(record) {
			continue
		}
		v, err := strconv.ParseFloat(cleanToken(record[column-1]), 64)
		if err != nil {
			continue
		}
		cells = append(cells, ParsedCell{Ref: fmt.Sprintf("%d:%d", row, column), Value: v})
	}

	return cells, nil
}

// cleanToken strips decoration commonly found in spreadsheet exports: surrounding
// quotes, currency symbols and thousands separators. "(1,234.50)" is accounting
// notation for a negative value.
func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.TrimLeft(s, "$€£ ")
	s = strings.ReplaceAll(s, ",", "")

	if negative {
		s = "-" + s
	}
	return s
}
