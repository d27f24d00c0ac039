package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadCSV parses CSV with a header row into a table. Each column's dtype is
// inferred: int64 if every non-empty cell parses as an integer, float64 if
// every one parses as a number, bool for true/false, string otherwise.
// Empty cells are null.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	cells := make([][]string, len(headers))
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		for i := range headers {
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			cells[i] = append(cells[i], v)
		}
	}

	columns := make([]*Series, len(headers))
	for i, name := range headers {
		columns[i] = parseColumn(name, cells[i])
	}
	return NewTable(columns...)
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func parseColumn(name string, raw []string) *Series {
	ints, floats, bools := true, true, true
	for _, v := range raw {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			ints = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			floats = false
		}
		if _, err := strconv.ParseBool(strings.ToLower(v)); err != nil || isDigits(v) {
			bools = false
		}
	}

	values := make([]any, len(raw))
	for i, v := range raw {
		if v == "" {
			continue
		}
		switch {
		case ints:
			n, _ := strconv.ParseInt(v, 10, 64)
			values[i] = n
		case floats:
			f, _ := strconv.ParseFloat(v, 64)
			values[i] = f
		case bools:
			b, _ := strconv.ParseBool(strings.ToLower(v))
			values[i] = b
		default:
			values[i] = v
		}
	}

	s := NewSeries(name, values...)
	if s.NonNull() == 0 {
		s.dtype = String
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
